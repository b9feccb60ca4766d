package main

import (
	"archive/zip"
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gnana997/tsxify/pkg/config"
)

const (
	badgeJSX  = "export const Badge = ({ label = \"new\" }) => <span>{label}</span>;\n"
	tagJSX    = "export function Tag({ text, onRemove }) {\n  return <b onClick={() => onRemove()}>{text}</b>;\n}\n"
	brokenJSX = "export function Broken( { return <div>; }\n"
)

// run executes the CLI in dir and returns stdout, stderr and the error.
func run(t *testing.T, dir string, args ...string) (string, string, error) {
	t.Helper()
	t.Chdir(dir)

	var stdout, stderr bytes.Buffer
	root := newRootCmd()
	root.SetArgs(args)
	root.SetOut(&stdout)
	root.SetErr(&stderr)
	err := root.Execute()
	return stdout.String(), stderr.String(), err
}

func writeSource(t *testing.T, dir, name, content string) {
	t.Helper()
	path := filepath.Join(dir, filepath.FromSlash(name))
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestConvertToStdout(t *testing.T) {
	dir := t.TempDir()
	writeSource(t, dir, "Badge.jsx", badgeJSX)

	stdout, _, err := run(t, dir, "convert", "Badge.jsx")
	require.NoError(t, err)
	assert.Contains(t, stdout, "interface BadgeProps {\n  label?: string;\n}")
	assert.Contains(t, stdout, "}: BadgeProps) =>")
}

func TestConvertToDirectory(t *testing.T) {
	dir := t.TempDir()
	writeSource(t, dir, "Badge.jsx", badgeJSX)
	require.NoError(t, os.Mkdir(filepath.Join(dir, "out"), 0o755))

	stdout, stderr, err := run(t, dir, "convert", "Badge.jsx", "-o", "out")
	require.NoError(t, err)
	assert.Empty(t, stdout)
	assert.Contains(t, stderr, "wrote out/Badge.tsx")

	data, err := os.ReadFile(filepath.Join(dir, "out", "Badge.tsx"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "BadgeProps")
}

func TestConvertFlagsApply(t *testing.T) {
	dir := t.TempDir()
	writeSource(t, dir, "Badge.jsx", badgeJSX)

	stdout, _, err := run(t, dir, "convert", "Badge.jsx", "--custom-naming", "--prefix", "I", "--suffix", "Shape")
	require.NoError(t, err)
	assert.Contains(t, stdout, "interface IBadgeShape {")
}

func TestConvertParseFailure(t *testing.T) {
	dir := t.TempDir()
	writeSource(t, dir, "Broken.jsx", brokenJSX)

	stdout, stderr, err := run(t, dir, "convert", "Broken.jsx")
	require.Error(t, err)
	assert.Empty(t, stdout)
	assert.Contains(t, stderr, "Broken.jsx:")
	assert.Contains(t, stderr, "(parse-error)")
}

func TestBatchArchive(t *testing.T) {
	dir := t.TempDir()
	writeSource(t, dir, "src/Badge.jsx", badgeJSX)
	writeSource(t, dir, "src/Broken.jsx", brokenJSX)
	writeSource(t, dir, "src/widgets/Tag.jsx", tagJSX)
	writeSource(t, dir, "src/Badge.test.jsx", "test('badge')\n")

	_, stderr, err := run(t, dir, "batch", "src", "-o", "out/")
	require.NoError(t, err)
	assert.Contains(t, stderr, "converted 2, failed 1")

	zr, err := zip.OpenReader(filepath.Join(dir, "out", "converted.zip"))
	require.NoError(t, err)
	defer zr.Close()

	var names []string
	for _, f := range zr.File {
		names = append(names, f.Name)
	}
	assert.Equal(t, []string{"Badge.tsx", "widgets/Tag.tsx"}, names)
}

func TestBatchSingleFile(t *testing.T) {
	dir := t.TempDir()
	writeSource(t, dir, "Badge.jsx", badgeJSX)

	_, _, err := run(t, dir, "batch", "Badge.jsx")
	require.NoError(t, err)

	data, err := os.ReadFile(filepath.Join(dir, "Badge.tsx"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "interface BadgeProps")
}

func TestBatchNothingConverted(t *testing.T) {
	dir := t.TempDir()
	writeSource(t, dir, "Broken.jsx", brokenJSX)

	_, stderr, err := run(t, dir, "batch", ".")
	require.Error(t, err)
	assert.Contains(t, stderr, "converted 0, failed 1")
}

func TestInitWritesProjectConfig(t *testing.T) {
	dir := t.TempDir()

	_, _, err := run(t, dir, "init", "--level", "basic")
	require.NoError(t, err)

	file, err := config.Load(filepath.Join(dir, config.DefaultPath))
	require.NoError(t, err)
	require.NotNil(t, file)
	assert.Equal(t, config.LevelBasic, file.Conversion.Level)
	assert.Contains(t, file.Include, "**/*.jsx")

	_, _, err = run(t, dir, "init")
	assert.Error(t, err, "existing configuration must not be overwritten")
	_, _, err = run(t, dir, "init", "--force")
	assert.NoError(t, err)
}

func TestProjectConfigApplies(t *testing.T) {
	dir := t.TempDir()
	writeSource(t, dir, "Tag.jsx", tagJSX)
	writeSource(t, dir, ".tsxify/config.yaml", "conversion:\n  conversion_level: basic\n")

	stdout, _, err := run(t, dir, "convert", "Tag.jsx")
	require.NoError(t, err)
	// Basic level ignores the call site.
	assert.Contains(t, stdout, "onRemove: any;")

	stdout, _, err = run(t, dir, "convert", "Tag.jsx", "--level", "standard")
	require.NoError(t, err)
	assert.Contains(t, stdout, "onRemove: (...args: any[]) => any;")
}

func TestInspectJSON(t *testing.T) {
	dir := t.TempDir()
	writeSource(t, dir, "Tag.jsx", tagJSX)

	stdout, _, err := run(t, dir, "inspect", "Tag.jsx", "--json")
	require.NoError(t, err)

	var summary map[string]any
	require.NoError(t, json.Unmarshal([]byte(stdout), &summary))
	assert.Equal(t, "Tag.jsx", summary["file_path"])
	assert.Equal(t, float64(1), summary["elements"])
}

func TestInspectHuman(t *testing.T) {
	dir := t.TempDir()
	writeSource(t, dir, "Tag.jsx", tagJSX)

	stdout, _, err := run(t, dir, "inspect", "Tag.jsx")
	require.NoError(t, err)
	assert.Contains(t, stdout, "Tag.jsx  (4 lines, 1 elements)")
	assert.Contains(t, stdout, "Components  (none)")
}

func TestVersion(t *testing.T) {
	stdout, _, err := run(t, t.TempDir(), "version")
	require.NoError(t, err)
	assert.Equal(t, "tsxify "+version+"\n", stdout)
}
