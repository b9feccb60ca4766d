package batch

import (
	"bytes"
	"fmt"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/klauspost/compress/zip"
)

// archiveTime is stamped on every entry so equal batches produce equal
// archives.
var archiveTime = time.Date(1980, time.January, 1, 0, 0, 0, 0, time.UTC)

// buildArchive packages files in order. Entry names are the output names;
// repeated names get a numeric suffix.
func buildArchive(files []ConvertedFile) (*Artifact, error) {
	var buf bytes.Buffer
	w := zip.NewWriter(&buf)

	used := make(map[string]bool, len(files))
	for _, f := range files {
		name := uniqueEntryName(entryName(f.OutputName), used)

		entry, err := w.CreateHeader(&zip.FileHeader{
			Name:     name,
			Method:   zip.Deflate,
			Modified: archiveTime,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to add %s to archive: %w", name, err)
		}
		if _, err := entry.Write([]byte(f.Code)); err != nil {
			return nil, fmt.Errorf("failed to write %s to archive: %w", name, err)
		}
	}

	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("failed to finish archive: %w", err)
	}

	return &Artifact{
		Name:        ArchiveName,
		ContentType: "application/zip",
		Data:        buf.Bytes(),
	}, nil
}

// entryName turns an output name into a relative, slash-separated entry
// name.
func entryName(name string) string {
	name = path.Clean(filepath.ToSlash(name))
	name = strings.TrimLeft(name, "/")
	for strings.HasPrefix(name, "../") {
		name = strings.TrimPrefix(name, "../")
	}
	if name == "" || name == "." || name == ".." {
		return "unnamed.tsx"
	}
	return name
}

func uniqueEntryName(name string, used map[string]bool) string {
	candidate := name
	ext := path.Ext(name)
	base := strings.TrimSuffix(name, ext)
	for i := 2; used[candidate]; i++ {
		candidate = fmt.Sprintf("%s_%d%s", base, i, ext)
	}
	used[candidate] = true
	return candidate
}
