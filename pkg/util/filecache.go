package util

import (
	"fmt"
	"log/slog"
	"os"
	"sync"

	"github.com/edsrzf/mmap-go"
)

// FileCache reads source files through read-only memory maps.
//
// Batch and watch runs read the same files repeatedly (discovery, conversion,
// re-conversion after a change). A mapping is kept until Invalidate or Close
// so unchanged files are not re-read. Text handed to callers is always a copy,
// so it stays valid after the mapping goes away.
//
// Thread-safe: Multiple goroutines can call methods concurrently.
type FileCache interface {
	// ReadText returns the file content as a string.
	ReadText(filePath string) (string, error)

	// Invalidate drops the mapping for a path (e.g. after a write event).
	Invalidate(filePath string)

	// Size returns number of currently cached files.
	Size() int

	// Stats returns current cache metrics.
	Stats() FileCacheStats

	// Close unmaps all files and releases descriptors.
	Close() error
}

// FileCacheConfig controls FileCache behavior.
type FileCacheConfig struct {
	// MaxFiles is the maximum number of mapped files. 0 means unlimited.
	// When reached, older mappings are not evicted; reads fall back to
	// os.ReadFile without caching.
	MaxFiles int

	// Logger for warnings. If nil, uses slog.Default().
	Logger *slog.Logger
}

// DefaultFileCacheConfig returns limits suitable for a project tree.
func DefaultFileCacheConfig() *FileCacheConfig {
	return &FileCacheConfig{MaxFiles: 10000}
}

// FileCacheStats tracks cache performance metrics.
type FileCacheStats struct {
	FilesCached  int
	CacheHits    int64
	CacheMisses  int64
	MmapFailures int64
	MappedBytes  int64
}

type mappedFile struct {
	data mmap.MMap
	file *os.File
}

type fileCacheImpl struct {
	config *FileCacheConfig
	logger *slog.Logger

	mu    sync.RWMutex
	cache map[string]*mappedFile

	statsMu sync.Mutex
	stats   FileCacheStats
}

// NewFileCache creates a new FileCache. A nil config uses the defaults.
func NewFileCache(config *FileCacheConfig) FileCache {
	if config == nil {
		config = DefaultFileCacheConfig()
	}
	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &fileCacheImpl{
		config: config,
		logger: logger,
		cache:  make(map[string]*mappedFile),
	}
}

func (fc *fileCacheImpl) ReadText(filePath string) (string, error) {
	fc.mu.RLock()
	if mf, ok := fc.cache[filePath]; ok {
		text := string(mf.data)
		fc.mu.RUnlock()
		fc.record(func(s *FileCacheStats) { s.CacheHits++ })
		return text, nil
	}
	fc.mu.RUnlock()

	fc.mu.Lock()
	defer fc.mu.Unlock()

	if mf, ok := fc.cache[filePath]; ok {
		fc.record(func(s *FileCacheStats) { s.CacheHits++ })
		return string(mf.data), nil
	}
	fc.record(func(s *FileCacheStats) { s.CacheMisses++ })

	if fc.config.MaxFiles > 0 && len(fc.cache) >= fc.config.MaxFiles {
		return readFile(filePath)
	}

	file, err := os.Open(filePath)
	if err != nil {
		return "", fmt.Errorf("failed to open file %q: %w", filePath, err)
	}
	stat, err := file.Stat()
	if err != nil {
		file.Close()
		return "", fmt.Errorf("failed to stat file %q: %w", filePath, err)
	}
	// Zero-length files cannot be mapped.
	if stat.Size() == 0 {
		file.Close()
		return "", nil
	}

	data, err := mmap.Map(file, mmap.RDONLY, 0)
	if err != nil {
		file.Close()
		fc.record(func(s *FileCacheStats) { s.MmapFailures++ })
		fc.logger.Warn("mmap failed, using fallback",
			"file", filePath,
			"size", stat.Size(),
			"error", err)
		return readFile(filePath)
	}

	fc.cache[filePath] = &mappedFile{data: data, file: file}
	fc.record(func(s *FileCacheStats) { s.MappedBytes += int64(len(data)) })

	return string(data), nil
}

func readFile(filePath string) (string, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return "", fmt.Errorf("failed to read file %q: %w", filePath, err)
	}
	return string(data), nil
}

func (fc *fileCacheImpl) Invalidate(filePath string) {
	fc.mu.Lock()
	defer fc.mu.Unlock()

	mf, ok := fc.cache[filePath]
	if !ok {
		return
	}
	delete(fc.cache, filePath)
	fc.record(func(s *FileCacheStats) { s.MappedBytes -= int64(len(mf.data)) })
	if err := unmap(mf); err != nil {
		fc.logger.Warn("failed to unmap file", "file", filePath, "error", err)
	}
}

func (fc *fileCacheImpl) Size() int {
	fc.mu.RLock()
	defer fc.mu.RUnlock()
	return len(fc.cache)
}

func (fc *fileCacheImpl) Stats() FileCacheStats {
	fc.statsMu.Lock()
	stats := fc.stats
	fc.statsMu.Unlock()

	stats.FilesCached = fc.Size()
	return stats
}

func (fc *fileCacheImpl) Close() error {
	fc.mu.Lock()
	defer fc.mu.Unlock()

	var firstErr error
	for path, mf := range fc.cache {
		if err := unmap(mf); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("failed to unmap %q: %w", path, err)
		}
	}
	fc.cache = make(map[string]*mappedFile)

	fc.statsMu.Lock()
	fc.stats.MappedBytes = 0
	fc.statsMu.Unlock()

	return firstErr
}

func (fc *fileCacheImpl) record(update func(*FileCacheStats)) {
	fc.statsMu.Lock()
	update(&fc.stats)
	fc.statsMu.Unlock()
}

func unmap(mf *mappedFile) error {
	err := mf.data.Unmap()
	if cerr := mf.file.Close(); err == nil {
		err = cerr
	}
	return err
}
