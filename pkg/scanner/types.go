// Package scanner finds untyped markup sources on disk and loads them as
// source units for conversion.
package scanner

// ScanConfig selects the files a batch or watch run converts. Patterns are
// doublestar globs matched against slash-separated paths relative to the
// scanned root.
type ScanConfig struct {
	Include []string `yaml:"include,omitempty"`
	Exclude []string `yaml:"exclude,omitempty"`
}

// DefaultScanConfig returns the default configuration: every .jsx and .js
// file outside dependency, build and test directories.
func DefaultScanConfig() ScanConfig {
	return ScanConfig{
		Include: []string{
			"**/*.jsx",
			"**/*.js",
		},
		Exclude: []string{
			"node_modules/**",
			"**/node_modules/**",
			".git/**",
			"dist/**",
			"build/**",
			".next/**",
			"coverage/**",
			"out/**",
			".tsxify/**",
			"**/*.min.js",
			"**/*.config.js",
			"**/*.test.*",
			"**/*.spec.*",
			"**/*.stories.*",
			"**/*.story.*",
			"**/__tests__/**",
			"**/__mocks__/**",
		},
	}
}

// WithOverrides returns a copy of c whose include and exclude lists are
// replaced by the non-empty arguments.
func (c ScanConfig) WithOverrides(include, exclude []string) ScanConfig {
	if len(include) > 0 {
		c.Include = include
	}
	if len(exclude) > 0 {
		c.Exclude = exclude
	}
	return c
}

// SourceFile is a discovered file.
type SourceFile struct {
	// Path is absolute.
	Path string
	// Rel is the slash-separated path relative to the scanned root; it
	// becomes the unit name.
	Rel string
}
