package scanner

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/gnana997/tsxify/pkg/converter"
	"github.com/gnana997/tsxify/pkg/util"
)

// Scanner discovers and loads source units.
type Scanner struct {
	files util.FileCache
	log   *slog.Logger
}

// NewScanner creates a scanner reading through files. Logger can be nil.
func NewScanner(files util.FileCache, logger *slog.Logger) *Scanner {
	if logger == nil {
		logger = slog.Default()
	}
	return &Scanner{files: files, log: logger}
}

// LoadError is a file that could not be read.
type LoadError struct {
	File SourceFile
	Err  error
}

func (e LoadError) Error() string {
	return fmt.Sprintf("%s: %v", e.File.Rel, e.Err)
}

// ScanStats describes one Collect run.
type ScanStats struct {
	FilesDiscovered int
	FilesLoaded     int
	FilesFailed     int
	DiscoveryTimeMs int64
	LoadTimeMs      int64
}

// Load reads files into source units named by their relative paths.
// Unreadable files are returned separately and do not stop the load.
func (s *Scanner) Load(files []SourceFile) ([]converter.SourceUnit, []LoadError) {
	units := make([]converter.SourceUnit, 0, len(files))
	var failed []LoadError
	for _, f := range files {
		text, err := s.files.ReadText(f.Path)
		if err != nil {
			s.log.Warn("failed to read source", "file", f.Path, "error", err)
			failed = append(failed, LoadError{File: f, Err: err})
			continue
		}
		units = append(units, converter.SourceUnit{Name: f.Rel, Text: text})
	}
	return units, failed
}

// LoadFile reads one file as a unit named by rel.
func (s *Scanner) LoadFile(path, rel string) (converter.SourceUnit, error) {
	text, err := s.files.ReadText(path)
	if err != nil {
		return converter.SourceUnit{}, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return converter.SourceUnit{Name: rel, Text: text}, nil
}

// Invalidate forgets cached content for path.
func (s *Scanner) Invalidate(path string) {
	s.files.Invalidate(path)
}

// Collect discovers paths with cfg and loads every selected file.
func (s *Scanner) Collect(paths []string, cfg ScanConfig) ([]converter.SourceUnit, []LoadError, ScanStats, error) {
	var stats ScanStats

	discoveryStart := time.Now()
	files, err := Discover(paths, cfg)
	if err != nil {
		return nil, nil, stats, fmt.Errorf("discovery failed: %w", err)
	}
	stats.FilesDiscovered = len(files)
	stats.DiscoveryTimeMs = time.Since(discoveryStart).Milliseconds()
	s.log.Info("discovery complete", "files", len(files), "ms", stats.DiscoveryTimeMs)

	loadStart := time.Now()
	units, failed := s.Load(files)
	stats.FilesLoaded = len(units)
	stats.FilesFailed = len(failed)
	stats.LoadTimeMs = time.Since(loadStart).Milliseconds()
	s.log.Info("load complete", "loaded", len(units), "failed", len(failed), "ms", stats.LoadTimeMs)

	return units, failed, stats, nil
}
