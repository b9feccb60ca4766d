package parser

import (
	"path/filepath"
	"strings"
)

// Language identifies a tree-sitter grammar family.
type Language int

const (
	// LanguageJavaScript is the untyped markup dialect (.js, .jsx).
	LanguageJavaScript Language = iota
	// LanguageTypeScript is the typed dialect (.ts, .tsx).
	LanguageTypeScript
	// LanguageUnknown marks an unsupported grammar.
	LanguageUnknown
)

// String returns the string representation of the language.
func (l Language) String() string {
	switch l {
	case LanguageTypeScript:
		return "typescript"
	case LanguageJavaScript:
		return "javascript"
	default:
		return "unknown"
	}
}

// Grammar is the concrete grammar used to parse one source unit.
type Grammar struct {
	Language Language
	// TSX enables markup support in the typed grammar.
	TSX bool
}

// String returns a short grammar name such as "tsx" or "javascript".
func (g Grammar) String() string {
	if g.Language == LanguageTypeScript && g.TSX {
		return "tsx"
	}
	return g.Language.String()
}

var (
	// GrammarJSX parses the untyped markup dialect. The JavaScript grammar
	// includes markup, so no separate variant exists.
	GrammarJSX = Grammar{Language: LanguageJavaScript}
	// GrammarTSX parses the typed markup dialect.
	GrammarTSX = Grammar{Language: LanguageTypeScript, TSX: true}
	// GrammarTypeScript parses typed sources without markup.
	GrammarTypeScript = Grammar{Language: LanguageTypeScript}
)

// DetectGrammar picks the grammar for a unit name. Names without a known
// extension (including the empty name) are treated as untyped markup sources;
// ParseUnit falls back to GrammarTSX for those when they carry type syntax.
func DetectGrammar(name string) Grammar {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".tsx":
		return GrammarTSX
	case ".ts", ".mts", ".cts":
		return GrammarTypeScript
	default:
		return GrammarJSX
	}
}

// DetectLanguage detects the grammar family from a file path.
// Returns LanguageUnknown if the file extension is not recognized.
func DetectLanguage(filePath string) Language {
	switch strings.ToLower(filepath.Ext(filePath)) {
	case ".ts", ".mts", ".cts", ".tsx":
		return LanguageTypeScript
	case ".js", ".jsx", ".mjs", ".cjs":
		return LanguageJavaScript
	default:
		return LanguageUnknown
	}
}

// IsSourceFile reports whether a path names an untyped markup source that
// the converter accepts as input.
func IsSourceFile(filePath string) bool {
	switch strings.ToLower(filepath.Ext(filePath)) {
	case ".jsx", ".js":
		return true
	}
	return false
}

// TypedFileName maps a source file name to its typed counterpart:
// "Widget.jsx" becomes "Widget.tsx". Components authored in ".js" files
// also carry markup, so they map to ".tsx" as well. Other names are
// returned unchanged.
func TypedFileName(name string) string {
	ext := filepath.Ext(name)
	switch strings.ToLower(ext) {
	case ".jsx", ".js":
		return strings.TrimSuffix(name, ext) + ".tsx"
	}
	return name
}
