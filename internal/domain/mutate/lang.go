// Package mutate holds idempotent text mutators. Every Ensure function
// first checks whether its construct is already present and returns the
// input unchanged if so; otherwise it inserts the construct at a fixed
// anchor. A missing anchor is not an error: the input comes back unchanged
// and the caller decides how to report it.
package mutate

import (
	"path/filepath"
	"strings"
)

// Lang identifies the syntax of a source file.
type Lang int

const (
	LangUnknown Lang = iota
	LangJava
	LangKotlin
	LangKotlinScript
	LangGroovy
	LangDart
	LangJavaScript
	LangTypeScript
	LangXML
	LangJSON
	LangYAML
	LangProperties
)

var langNames = map[Lang]string{
	LangUnknown:      "unknown",
	LangJava:         "java",
	LangKotlin:       "kotlin",
	LangKotlinScript: "kotlin-script",
	LangGroovy:       "groovy",
	LangDart:         "dart",
	LangJavaScript:   "javascript",
	LangTypeScript:   "typescript",
	LangXML:          "xml",
	LangJSON:         "json",
	LangYAML:         "yaml",
	LangProperties:   "properties",
}

func (l Lang) String() string { return langNames[l] }

// LangForPath infers the language from a file extension.
func LangForPath(path string) Lang {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".java":
		return LangJava
	case ".kt":
		return LangKotlin
	case ".kts":
		return LangKotlinScript
	case ".gradle":
		return LangGroovy
	case ".dart":
		return LangDart
	case ".js", ".jsx", ".mjs":
		return LangJavaScript
	case ".ts", ".tsx":
		return LangTypeScript
	case ".xml":
		return LangXML
	case ".json":
		return LangJSON
	case ".yaml", ".yml":
		return LangYAML
	case ".properties":
		return LangProperties
	}
	return LangUnknown
}

// syntax describes the lexical features the brace scanner must skip.
type syntax struct {
	lineComment   string
	blockComments bool
	quotes        string
	tripleQuotes  bool
}

func (l Lang) syntax() syntax {
	switch l {
	case LangJava:
		return syntax{lineComment: "//", blockComments: true, quotes: `"'`}
	case LangKotlin, LangKotlinScript:
		return syntax{lineComment: "//", blockComments: true, quotes: `"'`, tripleQuotes: true}
	case LangGroovy, LangDart:
		return syntax{lineComment: "//", blockComments: true, quotes: `"'`, tripleQuotes: true}
	case LangJavaScript, LangTypeScript:
		return syntax{lineComment: "//", blockComments: true, quotes: "\"'`"}
	case LangYAML, LangProperties:
		return syntax{lineComment: "#"}
	}
	return syntax{}
}

// IsKotlin reports whether the language uses Kotlin syntax.
func (l Lang) IsKotlin() bool { return l == LangKotlin || l == LangKotlinScript }

// Terminator returns the statement terminator of the language.
func (l Lang) Terminator() string {
	if l.IsKotlin() {
		return ""
	}
	return ";"
}

// ImportLine renders an import of a fully qualified name, or of a package
// URI for Dart.
func (l Lang) ImportLine(name string) string {
	switch l {
	case LangJava:
		return "import " + name + ";"
	case LangKotlin, LangKotlinScript:
		return "import " + name
	case LangDart:
		return "import '" + name + "';"
	}
	return ""
}

// Statement renders a statement with the language terminator, leaving
// statements that already end in a terminator or brace alone.
func (l Lang) Statement(s string) string {
	s = strings.TrimRight(s, " \t")
	t := l.Terminator()
	if t == "" {
		return strings.TrimSuffix(s, ";")
	}
	if strings.HasSuffix(s, t) || strings.HasSuffix(s, "{") || strings.HasSuffix(s, "}") {
		return s
	}
	return s + t
}
