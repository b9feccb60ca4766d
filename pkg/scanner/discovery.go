package scanner

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	"github.com/bmatcuk/doublestar/v4"
)

// matcher applies validated include and exclude patterns.
type matcher struct {
	include []string
	exclude []string
}

func newMatcher(cfg ScanConfig) (*matcher, error) {
	for _, pattern := range cfg.Exclude {
		if !doublestar.ValidatePattern(pattern) {
			return nil, fmt.Errorf("invalid exclude pattern: %s", pattern)
		}
	}
	for _, pattern := range cfg.Include {
		if !doublestar.ValidatePattern(pattern) {
			return nil, fmt.Errorf("invalid include pattern: %s", pattern)
		}
	}
	return &matcher{include: cfg.Include, exclude: cfg.Exclude}, nil
}

func (m *matcher) excluded(rel string) bool {
	for _, pattern := range m.exclude {
		if ok, _ := doublestar.Match(pattern, rel); ok {
			return true
		}
	}
	return false
}

// included reports whether rel matches an include pattern; no patterns
// include everything.
func (m *matcher) included(rel string) bool {
	if len(m.include) == 0 {
		return true
	}
	for _, pattern := range m.include {
		if ok, _ := doublestar.Match(pattern, rel); ok {
			return true
		}
	}
	return false
}

// Matches reports whether a slash-separated relative path is selected by
// cfg. Invalid patterns never match.
func Matches(cfg ScanConfig, rel string) bool {
	m, err := newMatcher(cfg)
	if err != nil {
		return false
	}
	return !m.excluded(rel) && m.included(rel)
}

// Excluded reports whether a slash-separated relative path, file or
// directory, matches an exclude pattern of cfg.
func Excluded(cfg ScanConfig, rel string) bool {
	m, err := newMatcher(cfg)
	if err != nil {
		return false
	}
	return m.excluded(rel)
}

// DiscoverFiles walks rootDir applying include/exclude globs from cfg.
// Returns files sorted by relative path for deterministic output.
func DiscoverFiles(rootDir string, cfg ScanConfig) ([]SourceFile, error) {
	m, err := newMatcher(cfg)
	if err != nil {
		return nil, err
	}

	absRoot, err := filepath.Abs(rootDir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve root path: %w", err)
	}

	var files []SourceFile
	err = filepath.WalkDir(absRoot, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			// Unreadable entries are skipped.
			return nil
		}
		if path == absRoot {
			return nil
		}

		rel, err := filepath.Rel(absRoot, path)
		if err != nil {
			return nil
		}
		rel = filepath.ToSlash(rel)

		if m.excluded(rel) {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() || !d.Type().IsRegular() || !m.included(rel) {
			return nil
		}

		files = append(files, SourceFile{Path: path, Rel: rel})
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Slice(files, func(i, j int) bool { return files[i].Rel < files[j].Rel })
	return files, nil
}

// Discover resolves command-line paths: directories are walked with cfg,
// files are taken as given (named by their base name). Duplicates are
// dropped; the order follows the arguments.
func Discover(paths []string, cfg ScanConfig) ([]SourceFile, error) {
	var out []SourceFile
	seen := make(map[string]bool)

	for _, p := range paths {
		info, err := os.Stat(p)
		if err != nil {
			return nil, fmt.Errorf("cannot read %s: %w", p, err)
		}

		var found []SourceFile
		if info.IsDir() {
			if found, err = DiscoverFiles(p, cfg); err != nil {
				return nil, err
			}
		} else {
			abs, err := filepath.Abs(p)
			if err != nil {
				return nil, fmt.Errorf("failed to resolve %s: %w", p, err)
			}
			found = []SourceFile{{Path: abs, Rel: filepath.Base(abs)}}
		}

		for _, f := range found {
			if !seen[f.Path] {
				seen[f.Path] = true
				out = append(out, f)
			}
		}
	}
	return out, nil
}
