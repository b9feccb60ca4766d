package mcp

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gnana997/tsxify/pkg/config"
	"github.com/gnana997/tsxify/pkg/converter"
	"github.com/gnana997/tsxify/pkg/mcplog"
	"github.com/gnana997/tsxify/pkg/util"
)

// --- helpers ---

const badgeSource = "export const Badge = ({ label = \"new\", onClick }) => <span onClick={() => onClick()}>{label}</span>;\n"

func testServer(t *testing.T, callLog *mcplog.Logger) *Server {
	t.Helper()
	logger := util.NewDiscardLogger()
	conv := converter.New(converter.Options{Logger: logger})
	t.Cleanup(func() { conv.Close() })
	return NewServer(conv, Options{Defaults: config.Default(), CallLog: callLog, Logger: logger})
}

func callTool(t *testing.T, s *Server, name string, args map[string]any) *mcp.CallToolResult {
	t.Helper()
	var handler func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error)
	switch name {
	case toolConvertCode:
		handler = s.handleConvertCode
	case toolConvertBatch:
		handler = s.handleConvertBatch
	case toolInspectCode:
		handler = s.handleInspectCode
	default:
		t.Fatalf("unknown tool: %s", name)
	}

	req := mcp.CallToolRequest{}
	req.Params.Name = name
	if args != nil {
		req.Params.Arguments = args
	}
	result, err := handler(context.Background(), req)
	require.NoError(t, err)
	require.NotNil(t, result)
	return result
}

func resultText(t *testing.T, result *mcp.CallToolResult) string {
	t.Helper()
	require.NotEmpty(t, result.Content)
	text, ok := result.Content[0].(mcp.TextContent)
	require.True(t, ok, "expected TextContent, got %T", result.Content[0])
	return text.Text
}

// --- convert_code ---

func TestConvertCode(t *testing.T) {
	s := testServer(t, nil)
	result := callTool(t, s, toolConvertCode, map[string]any{
		"code":     badgeSource,
		"filename": "Badge.jsx",
	})
	assert.False(t, result.IsError)

	var got converter.Result
	require.NoError(t, json.Unmarshal([]byte(resultText(t, result)), &got))
	assert.Equal(t, "Badge.tsx", got.OutputName)
	assert.Equal(t, 1, got.Components)
	assert.Contains(t, got.Code, "interface BadgeProps {")
	assert.Contains(t, got.Code, "label?: string;")
	assert.Contains(t, got.Code, "onClick: (...args: any[]) => any;")
	assert.Contains(t, got.Code, "}: BadgeProps) =>")
}

func TestConvertCodeAcceptsConvertedOutput(t *testing.T) {
	s := testServer(t, nil)
	first := callTool(t, s, toolConvertCode, map[string]any{"code": badgeSource})
	require.False(t, first.IsError)

	var got converter.Result
	require.NoError(t, json.Unmarshal([]byte(resultText(t, first)), &got))

	second := callTool(t, s, toolConvertCode, map[string]any{"code": got.Code})
	require.False(t, second.IsError, resultText(t, second))

	var again converter.Result
	require.NoError(t, json.Unmarshal([]byte(resultText(t, second)), &again))
	assert.Equal(t, got.Code, again.Code)
	assert.Empty(t, again.Diagnostics)
}

func TestConvertCodeOverrides(t *testing.T) {
	s := testServer(t, nil)
	result := callTool(t, s, toolConvertCode, map[string]any{
		"code":                      badgeSource,
		"custom_declaration_naming": true,
		"declaration_prefix":        "I",
		"declaration_suffix":        "Shape",
		"conversion_level":          "basic",
	})
	assert.False(t, result.IsError)

	var got converter.Result
	require.NoError(t, json.Unmarshal([]byte(resultText(t, result)), &got))
	assert.Equal(t, "Component.tsx", got.OutputName)
	assert.Contains(t, got.Code, "interface IBadgeShape {")
	// Basic level ignores the call site.
	assert.Contains(t, got.Code, "onClick: any;")
}

func TestConvertCodeErrors(t *testing.T) {
	s := testServer(t, nil)

	tests := []struct {
		name string
		args map[string]any
	}{
		{name: "missing code", args: map[string]any{"filename": "A.jsx"}},
		{name: "unknown level", args: map[string]any{"code": badgeSource, "conversion_level": "extreme"}},
		{name: "invalid suffix", args: map[string]any{
			"code": badgeSource, "custom_declaration_naming": true, "declaration_suffix": "no-dash",
		}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.True(t, callTool(t, s, toolConvertCode, tc.args).IsError)
		})
	}
}

func TestConvertCodeParseFailure(t *testing.T) {
	s := testServer(t, nil)
	result := callTool(t, s, toolConvertCode, map[string]any{
		"code":     "export function Broken( { return <div>; }",
		"filename": "Broken.jsx",
	})
	// A malformed unit is a diagnostic, not a tool error.
	assert.False(t, result.IsError)

	var got converter.Result
	require.NoError(t, json.Unmarshal([]byte(resultText(t, result)), &got))
	assert.Empty(t, got.Code)
	require.Len(t, got.Diagnostics, 1)
	assert.Equal(t, "parse-error", string(got.Diagnostics[0].Code))
}

// --- convert_batch ---

func TestConvertBatch(t *testing.T) {
	s := testServer(t, nil)
	result := callTool(t, s, toolConvertBatch, map[string]any{
		"files": []any{
			map[string]any{"name": "Badge.jsx", "content": badgeSource},
			map[string]any{"name": "Broken.jsx", "content": "export function Broken( { return <div>; }"},
			map[string]any{"name": "Tag.jsx", "content": "export const Tag = ({ text }) => <b>{text.trim()}</b>;\n"},
		},
	})
	assert.False(t, result.IsError)

	var got struct {
		Converted     []map[string]any `json:"convertedFiles"`
		Failed        []map[string]any `json:"errors"`
		ArchiveName   string           `json:"archive_name"`
		ArchiveBase64 string           `json:"archive_base64"`
	}
	require.NoError(t, json.Unmarshal([]byte(resultText(t, result)), &got))
	require.Len(t, got.Converted, 2)
	assert.Equal(t, "Badge.tsx", got.Converted[0]["output_name"])
	assert.Equal(t, "Tag.tsx", got.Converted[1]["output_name"])
	require.Len(t, got.Failed, 1)
	assert.Equal(t, "Broken.jsx", got.Failed[0]["name"])

	assert.Equal(t, "converted.zip", got.ArchiveName)
	data, err := base64.StdEncoding.DecodeString(got.ArchiveBase64)
	require.NoError(t, err)
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	require.NoError(t, err)
	var names []string
	for _, f := range zr.File {
		names = append(names, f.Name)
	}
	assert.Equal(t, []string{"Badge.tsx", "Tag.tsx"}, names)
}

func TestConvertBatchWithoutArchive(t *testing.T) {
	s := testServer(t, nil)
	result := callTool(t, s, toolConvertBatch, map[string]any{
		"files": []any{
			map[string]any{"name": "A.jsx", "content": badgeSource},
			map[string]any{"name": "B.jsx", "content": badgeSource},
		},
		"include_archive": false,
	})
	assert.False(t, result.IsError)
	assert.NotContains(t, resultText(t, result), "archive_base64")
}

func TestConvertBatchInvalidFiles(t *testing.T) {
	s := testServer(t, nil)

	tests := []struct {
		name  string
		files any
	}{
		{name: "missing", files: nil},
		{name: "not an array", files: "A.jsx"},
		{name: "empty", files: []any{}},
		{name: "missing name", files: []any{map[string]any{"content": "x"}}},
		{name: "non-string content", files: []any{map[string]any{"name": "A.jsx", "content": 3}}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.True(t, callTool(t, s, toolConvertBatch, map[string]any{"files": tc.files}).IsError)
		})
	}
}

// --- inspect_code ---

func TestInspectCode(t *testing.T) {
	s := testServer(t, nil)
	result := callTool(t, s, toolInspectCode, map[string]any{
		"code": "import { Button } from \"./button\";\nexport const Bar = () => <div><Button kind=\"x\" /></div>;\n",
	})
	assert.False(t, result.IsError)

	var got map[string]any
	require.NoError(t, json.Unmarshal([]byte(resultText(t, result)), &got))
	assert.Equal(t, float64(2), got["elements"])
	assert.Equal(t, []any{"./button"}, got["imports"])
	comps := got["components"].([]any)
	require.Len(t, comps, 1)
	assert.Equal(t, "Button", comps[0].(map[string]any)["name"])
}

// --- registration and logging ---

func TestToolDefinitions(t *testing.T) {
	tools := []mcp.Tool{convertCodeTool(), convertBatchTool(), inspectCodeTool()}
	require.Len(t, tools, len(ToolNames()))
	for i, name := range ToolNames() {
		assert.Equal(t, name, tools[i].Name)
		assert.NotEmpty(t, tools[i].Description)
	}
	assert.Contains(t, convertCodeTool().InputSchema.Required, "code")
	assert.Contains(t, convertBatchTool().InputSchema.Required, "files")
	assert.Contains(t, convertCodeTool().InputSchema.Properties, "conversion_level")
}

func TestCallLogMiddleware(t *testing.T) {
	path := filepath.Join(t.TempDir(), "calls.jsonl")
	callLog, err := mcplog.NewLogger(path)
	require.NoError(t, err)

	s := testServer(t, callLog)
	handler := s.loggingMiddleware()(s.handleConvertCode)

	req := mcp.CallToolRequest{}
	req.Params.Name = toolConvertCode
	req.Params.Arguments = map[string]any{"code": badgeSource, "filename": "Badge.jsx"}
	_, err = handler(context.Background(), req)
	require.NoError(t, err)

	req.Params.Arguments = map[string]any{"filename": "Missing.jsx"}
	_, err = handler(context.Background(), req)
	require.NoError(t, err)
	require.NoError(t, callLog.Close())

	entries := readLog(t, path)
	require.Len(t, entries, 2)
	assert.Equal(t, toolConvertCode, entries[0].Tool)
	assert.Equal(t, float64(len(badgeSource)), entries[0].Params["code_len"])
	assert.NotContains(t, entries[0].Params, "code")
	assert.False(t, entries[0].IsError)
	assert.Greater(t, entries[0].ResponseBytes, 0)
	assert.True(t, entries[1].IsError)
}
