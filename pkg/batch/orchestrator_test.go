package batch

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"testing"

	"github.com/klauspost/compress/zip"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gnana997/tsxify/pkg/config"
	"github.com/gnana997/tsxify/pkg/converter"
	"github.com/gnana997/tsxify/pkg/diagnostics"
)

var testLogger = slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))

func newTestOrchestrator(t *testing.T, limit int) *Orchestrator {
	t.Helper()
	conv := converter.New(converter.Options{Logger: testLogger})
	t.Cleanup(func() { conv.Close() })
	return NewOrchestrator(conv, limit, testLogger)
}

func component(name string) string {
	return fmt.Sprintf("export function %s({ label = \"\" }) {\n  return <span>{label}</span>;\n}\n", name)
}

func readArchive(t *testing.T, data []byte) ([]string, map[string]string) {
	t.Helper()
	r, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	require.NoError(t, err)

	var names []string
	contents := make(map[string]string)
	for _, f := range r.File {
		rc, err := f.Open()
		require.NoError(t, err)
		body, err := io.ReadAll(rc)
		require.NoError(t, err)
		rc.Close()

		names = append(names, f.Name)
		contents[f.Name] = string(body)
	}
	return names, contents
}

func TestConvertAllIsolatesFailures(t *testing.T) {
	o := newTestOrchestrator(t, 0)
	units := []converter.SourceUnit{
		{Name: "First.jsx", Text: component("First")},
		{Name: "Broken.jsx", Text: "function Broken() {\n  return <div>;\n}\n"},
		{Name: "Third.jsx", Text: component("Third")},
	}

	result, err := o.ConvertAll(context.Background(), units, config.Default())
	require.NoError(t, err)

	require.Len(t, result.Converted, 2)
	assert.Equal(t, "First.jsx", result.Converted[0].Name)
	assert.Equal(t, "First.tsx", result.Converted[0].OutputName)
	assert.Equal(t, "Third.jsx", result.Converted[1].Name)
	assert.Contains(t, result.Converted[1].Code, "interface ThirdProps {")

	require.Len(t, result.Failed, 1)
	assert.Equal(t, "Broken.jsx", result.Failed[0].Name)
	require.Len(t, result.Failed[0].Diagnostics, 1)
	assert.Equal(t, diagnostics.CodeParseError, result.Failed[0].Diagnostics[0].Code)
	assert.Equal(t, 2, result.Failed[0].Diagnostics[0].Line)

	require.NotNil(t, result.Archive)
	assert.Same(t, result.Archive, result.Artifact())
	assert.Equal(t, ArchiveName, result.Archive.Name)

	names, contents := readArchive(t, result.Archive.Data)
	assert.Equal(t, []string{"First.tsx", "Third.tsx"}, names)
	assert.Equal(t, result.Converted[0].Code, contents["First.tsx"])
	assert.Equal(t, result.Converted[1].Code, contents["Third.tsx"])
}

func TestConvertAllSingleFileIsRawText(t *testing.T) {
	o := newTestOrchestrator(t, 0)
	units := []converter.SourceUnit{{Name: "Only.jsx", Text: component("Only")}}

	result, err := o.ConvertAll(context.Background(), units, config.Default())
	require.NoError(t, err)

	require.Len(t, result.Converted, 1)
	assert.Nil(t, result.Archive)

	artifact := result.Artifact()
	require.NotNil(t, artifact)
	assert.Equal(t, "Only.tsx", artifact.Name)
	assert.Equal(t, result.Converted[0].Code, string(artifact.Data))
}

func TestConvertAllNothingConverted(t *testing.T) {
	o := newTestOrchestrator(t, 0)
	units := []converter.SourceUnit{{Name: "Broken.jsx", Text: "const = ;"}}

	result, err := o.ConvertAll(context.Background(), units, config.Default())
	require.NoError(t, err)
	assert.Empty(t, result.Converted)
	assert.Len(t, result.Failed, 1)
	assert.Nil(t, result.Artifact())
}

func TestConvertAllPreservesOrder(t *testing.T) {
	o := newTestOrchestrator(t, 3)

	var units []converter.SourceUnit
	for i := 0; i < 24; i++ {
		name := fmt.Sprintf("Item%02d", i)
		units = append(units, converter.SourceUnit{Name: name + ".jsx", Text: component(name)})
	}

	result, err := o.ConvertAll(context.Background(), units, config.Default())
	require.NoError(t, err)
	require.Len(t, result.Converted, len(units))
	for i, f := range result.Converted {
		assert.Equal(t, units[i].Name, f.Name)
	}

	names, _ := readArchive(t, result.Archive.Data)
	require.Len(t, names, len(units))
	assert.Equal(t, "Item00.tsx", names[0])
	assert.Equal(t, "Item23.tsx", names[23])
}

func TestConvertAllDeterministicArchive(t *testing.T) {
	o := newTestOrchestrator(t, 0)
	units := []converter.SourceUnit{
		{Name: "A.jsx", Text: component("A")},
		{Name: "B.jsx", Text: component("B")},
	}

	first, err := o.ConvertAll(context.Background(), units, config.Default())
	require.NoError(t, err)
	second, err := o.ConvertAll(context.Background(), units, config.Default())
	require.NoError(t, err)
	assert.Equal(t, first.Archive.Data, second.Archive.Data)
}

func TestConvertAllCancelled(t *testing.T) {
	o := newTestOrchestrator(t, 0)
	units := []converter.SourceUnit{
		{Name: "A.jsx", Text: component("A")},
		{Name: "B.jsx", Text: component("B")},
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result, err := o.ConvertAll(ctx, units, config.Default())
	require.ErrorIs(t, err, context.Canceled)
	require.NotNil(t, result)
	assert.Empty(t, result.Converted)
	require.Len(t, result.Failed, 2)
	for i, f := range result.Failed {
		assert.Equal(t, units[i].Name, f.Name)
		assert.Equal(t, diagnostics.CodeCancelled, f.Diagnostics[0].Code)
	}
}

func TestConvertAllInvalidConfig(t *testing.T) {
	o := newTestOrchestrator(t, 0)
	cfg := config.Default()
	cfg.Level = config.Level(9)

	_, err := o.ConvertAll(context.Background(), nil, cfg)
	assert.Error(t, err)
}

func TestArchiveEntryNames(t *testing.T) {
	files := []ConvertedFile{
		{OutputName: "src/Card.tsx", Code: "a"},
		{OutputName: "lib/../src/Card.tsx", Code: "b"},
		{OutputName: "/abs/Page.tsx", Code: "c"},
		{OutputName: "", Code: "d"},
	}
	artifact, err := buildArchive(files)
	require.NoError(t, err)

	names, contents := readArchive(t, artifact.Data)
	assert.Equal(t, []string{"src/Card.tsx", "src/Card_2.tsx", "abs/Page.tsx", "unnamed.tsx"}, names)
	assert.Equal(t, "b", contents["src/Card_2.tsx"])
}

func TestEngineFailureIsNotAParseError(t *testing.T) {
	failed := engineFailure("Card.jsx", fmt.Errorf("compile query: %w", io.ErrUnexpectedEOF))

	assert.Equal(t, "Card.jsx", failed.Name)
	require.Len(t, failed.Diagnostics, 1)
	d := failed.Diagnostics[0]
	assert.Equal(t, diagnostics.CodeInternal, d.Code)
	assert.NotEqual(t, diagnostics.CodeParseError, d.Code)
	assert.Equal(t, diagnostics.SeverityError, d.Severity)
	assert.Contains(t, d.Message, "compile query")
}
