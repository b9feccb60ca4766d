package mcp

import (
	"bufio"
	"encoding/json"
	"os"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/gnana997/tsxify/pkg/mcplog"
)

func readLog(t *testing.T, path string) []mcplog.Entry {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	var out []mcplog.Entry
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		var e mcplog.Entry
		require.NoError(t, json.Unmarshal(sc.Bytes(), &e))
		out = append(out, e)
	}
	return out
}
