package main

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/spf13/cobra"

	"github.com/gnana997/tsxify/pkg/mcp"
)

// agent describes one MCP client that can launch `tsxify serve`.
type agent struct {
	name string
	// binary is set for clients configured through their own CLI
	// ("<binary> mcp add").
	binary string
	// markers are project directories whose presence reveals a
	// file-configured client.
	markers    []string
	configPath func() string
	serversKey string
	extra      map[string]any
}

type detectedAgent struct {
	agent
	path       string
	configured bool
}

// Replaced in tests.
var (
	lookPath   = exec.LookPath
	statPath   = os.Stat
	runCommand = func(name string, args ...string) error {
		cmd := exec.Command(name, args...)
		cmd.Stdout = os.Stdout
		cmd.Stderr = os.Stderr
		return cmd.Run()
	}
)

var agents = []agent{
	{name: "Claude Code", binary: "claude"},
	{name: "OpenAI Codex", binary: "codex"},
	{
		name:       "VS Code",
		markers:    []string{".vscode"},
		configPath: func() string { return filepath.Join(".vscode", "mcp.json") },
		serversKey: "servers",
		extra:      map[string]any{"type": "stdio"},
	},
	{
		name:       "Cursor",
		markers:    []string{".cursor"},
		configPath: func() string { return filepath.Join(".cursor", "mcp.json") },
		serversKey: "mcpServers",
	},
	{name: "Claude Desktop", configPath: desktopConfigPath, serversKey: "mcpServers"},
}

func desktopConfigPath() string {
	home, _ := os.UserHomeDir()
	switch runtime.GOOS {
	case "darwin":
		return filepath.Join(home, "Library", "Application Support", "Claude", "claude_desktop_config.json")
	case "windows":
		return filepath.Join(os.Getenv("APPDATA"), "Claude", "claude_desktop_config.json")
	default:
		return filepath.Join(home, ".config", "Claude", "claude_desktop_config.json")
	}
}

func newSetupCmd() *cobra.Command {
	var (
		auto     bool
		logCalls bool
	)

	cmd := &cobra.Command{
		Use:   "setup",
		Short: "Register the tsxify MCP server with installed coding agents",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			serveArgs := []string{"serve"}
			if logCalls {
				serveArgs = append(serveArgs, "--log-calls")
			}
			runSetup(cmd.InOrStdin(), cmd.OutOrStdout(), detectAgents(), serveArgs, auto)
			return nil
		},
	}
	cmd.Flags().BoolVar(&auto, "auto", false, "configure every detected agent without prompting")
	cmd.Flags().BoolVar(&logCalls, "log-calls", false, "have the server log every tool call")
	return cmd
}

func detectAgents() []detectedAgent {
	var found []detectedAgent
	for _, ag := range agents {
		if ag.binary != "" {
			if _, err := lookPath(ag.binary); err == nil {
				found = append(found, detectedAgent{agent: ag, configured: registeredIn(".mcp.json", "mcpServers")})
			}
			continue
		}

		path := ag.configPath()
		present := false
		for _, m := range ag.markers {
			if _, err := statPath(m); err == nil {
				present = true
				break
			}
		}
		if len(ag.markers) == 0 {
			_, err := statPath(filepath.Dir(path))
			present = err == nil
		}
		if present {
			found = append(found, detectedAgent{agent: ag, path: path, configured: registeredIn(path, ag.serversKey)})
		}
	}
	return found
}

// registeredIn reports whether the JSON file at path already has a server
// entry for tsxify under key.
func registeredIn(path, key string) bool {
	data, err := os.ReadFile(path)
	if err != nil {
		return false
	}
	var doc map[string]any
	if json.Unmarshal(data, &doc) != nil {
		return false
	}
	servers, _ := doc[key].(map[string]any)
	_, ok := servers[mcp.ServerName]
	return ok
}

// addServerEntry adds the tsxify entry under key to a JSON client
// configuration. It returns nil when the entry already exists.
func addServerEntry(existing []byte, key string, serveArgs []string, extra map[string]any) ([]byte, error) {
	doc := make(map[string]any)
	if len(existing) > 0 {
		if err := json.Unmarshal(existing, &doc); err != nil {
			return nil, fmt.Errorf("invalid JSON: %w", err)
		}
	}
	servers, ok := doc[key].(map[string]any)
	if !ok {
		servers = make(map[string]any)
	}
	if _, exists := servers[mcp.ServerName]; exists {
		return nil, nil
	}

	args := make([]any, len(serveArgs))
	for i, arg := range serveArgs {
		args[i] = arg
	}
	entry := map[string]any{"command": "tsxify", "args": args}
	for k, v := range extra {
		entry[k] = v
	}
	servers[mcp.ServerName] = entry
	doc[key] = servers

	out, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, err
	}
	return append(out, '\n'), nil
}

func configureFile(d detectedAgent, serveArgs []string) error {
	if err := os.MkdirAll(filepath.Dir(d.path), 0755); err != nil {
		return fmt.Errorf("create directory: %w", err)
	}
	existing, _ := os.ReadFile(d.path)
	merged, err := addServerEntry(existing, d.serversKey, serveArgs, d.extra)
	if err != nil || merged == nil {
		return err
	}
	return os.WriteFile(d.path, merged, 0644)
}

func configureCLI(d detectedAgent, scope string, serveArgs []string) error {
	args := []string{"mcp", "add"}
	if scope != "" {
		args = append(args, "--scope", scope)
	}
	args = append(args, mcp.ServerName, "--", "tsxify")
	return runCommand(d.binary, append(args, serveArgs...)...)
}

func runSetup(r io.Reader, w io.Writer, found []detectedAgent, serveArgs []string, auto bool) {
	if len(found) == 0 {
		fmt.Fprintln(w, "No supported agents detected.")
		return
	}

	in := bufio.NewScanner(r)
	fmt.Fprintln(w, "Detected agents:")
	for _, d := range found {
		suffix := ""
		if d.configured {
			suffix = " (already configured)"
		}
		fmt.Fprintf(w, "  * %s%s\n", d.name, suffix)
	}
	if !auto && !confirm(in, w, "\nConfigure them? [Y/n]") {
		return
	}

	for _, d := range found {
		if d.configured {
			continue
		}
		var err error
		if d.binary != "" {
			scope := "project"
			if !auto {
				if scope = chooseScope(in, w, d.name); scope == "" {
					fmt.Fprintln(w, "  skipped")
					continue
				}
			}
			err = configureCLI(d, scope, serveArgs)
		} else {
			if !auto && !confirm(in, w, fmt.Sprintf("\n%s: add to %s? [Y/n]", d.name, d.path)) {
				fmt.Fprintln(w, "  skipped")
				continue
			}
			err = configureFile(d, serveArgs)
		}
		if err != nil {
			fmt.Fprintf(w, "  ! %s: %v\n", d.name, err)
			continue
		}
		fmt.Fprintf(w, "  + %s configured\n", d.name)
	}
}

// confirm asks a yes/no question; an empty answer or EOF means yes.
func confirm(in *bufio.Scanner, w io.Writer, question string) bool {
	fmt.Fprintf(w, "%s ", question)
	if !in.Scan() {
		return true
	}
	switch strings.ToLower(strings.TrimSpace(in.Text())) {
	case "", "y", "yes":
		return true
	}
	return false
}

// chooseScope returns "project", "user" or "" to skip.
func chooseScope(in *bufio.Scanner, w io.Writer, name string) string {
	fmt.Fprintf(w, "\n%s: register tsxify for [1] this project, [2] your user, [3] skip > ", name)
	if !in.Scan() {
		return "project"
	}
	switch strings.TrimSpace(in.Text()) {
	case "", "1":
		return "project"
	case "2":
		return "user"
	}
	return ""
}
