package mutate

import (
	"regexp"
	"strings"
)

var (
	packageLineRex = regexp.MustCompile(`(?m)^[ \t]*package[ \t]+[\w.]+[ \t]*;?[ \t]*$`)
	importLineRex  = regexp.MustCompile(`(?m)^[ \t]*import\s+[^\n]+$`)
)

// HasImport reports whether src imports name. A wildcard import of the
// enclosing package counts for Java and Kotlin.
func HasImport(src string, lang Lang, name string) bool {
	if lang == LangDart {
		rex := regexp.MustCompile(`(?m)^[ \t]*import\s+['"]` + regexp.QuoteMeta(name) + `['"]`)
		return rex.MatchString(src)
	}
	if regexp.MustCompile(`(?m)^[ \t]*import\s+` + regexp.QuoteMeta(name) + `[ \t]*;?[ \t]*$`).MatchString(src) {
		return true
	}
	if dot := strings.LastIndexByte(name, '.'); dot > 0 {
		wildcard := regexp.MustCompile(`(?m)^[ \t]*import\s+` + regexp.QuoteMeta(name[:dot]) + `\.\*[ \t]*;?[ \t]*$`)
		return wildcard.MatchString(src)
	}
	return false
}

// EnsureImport adds an import of name right after the first import, else
// after the package declaration, else at the top of the file.
func EnsureImport(src string, lang Lang, name string) string {
	line := lang.ImportLine(name)
	if line == "" || HasImport(src, lang, name) {
		return src
	}
	if loc := importLineRex.FindStringIndex(src); loc != nil {
		return insertAfterLine(src, loc[0], line+"\n")
	}
	if loc := packageLineRex.FindStringIndex(src); loc != nil {
		return insertAfterLine(src, loc[0], "\n"+line+"\n")
	}
	return line + "\n" + src
}

// EnsureImports applies EnsureImport for every name in order.
func EnsureImports(src string, lang Lang, names ...string) string {
	for _, n := range names {
		src = EnsureImport(src, lang, n)
	}
	return src
}

var (
	jsImportRex     = regexp.MustCompile(`(?ms)^import\s+['"]([^'"]+)['"];?|^import\s[^;]*?from\s+['"]([^'"]+)['"];?`)
	jsImportHeadRex = regexp.MustCompile(`(?s)^import\s+(.*?)\s+from\s`)
)

// JSImport describes an ES module import: a default binding, named
// bindings, or both.
type JSImport struct {
	Module  string
	Default string
	Named   []string
}

func (imp JSImport) render() string {
	var parts []string
	if imp.Default != "" {
		parts = append(parts, imp.Default)
	}
	if len(imp.Named) > 0 {
		parts = append(parts, "{ "+strings.Join(imp.Named, ", ")+" }")
	}
	if len(parts) == 0 {
		return "import '" + imp.Module + "';"
	}
	return "import " + strings.Join(parts, ", ") + " from '" + imp.Module + "';"
}

// EnsureJSImport makes src import the bindings of imp. An existing import
// of the same module is extended in place; otherwise a new import line is
// added after the last import.
func EnsureJSImport(src string, imp JSImport) string {
	locs := jsImportRex.FindAllStringSubmatchIndex(src, -1)
	for _, m := range locs {
		module := ""
		if m[2] >= 0 {
			module = src[m[2]:m[3]]
		} else if m[4] >= 0 {
			module = src[m[4]:m[5]]
		}
		if module != imp.Module {
			continue
		}
		stmt := src[m[0]:m[1]]
		updated := extendJSImport(stmt, imp)
		return src[:m[0]] + updated + src[m[1]:]
	}
	line := imp.render() + "\n"
	if len(locs) > 0 {
		return insertAfterLine(src, locs[len(locs)-1][1]-1, line)
	}
	return line + src
}

func extendJSImport(stmt string, imp JSImport) string {
	head := jsImportHeadRex.FindStringSubmatch(stmt)
	if head == nil {
		// side-effect import; replace with the full binding list
		return imp.render()
	}
	clause := head[1]
	def := ""
	named := ""
	if i := strings.IndexByte(clause, '{'); i >= 0 {
		def = strings.TrimSuffix(strings.TrimSpace(clause[:i]), ",")
		if j := strings.LastIndexByte(clause, '}'); j > i {
			named = clause[i+1 : j]
		}
	} else {
		def = clause
	}
	def = strings.TrimSpace(def)

	have := map[string]bool{}
	var names []string
	for _, n := range strings.Split(named, ",") {
		n = strings.TrimSpace(n)
		if n == "" {
			continue
		}
		names = append(names, n)
		have[strings.Fields(n)[0]] = true
	}
	changed := false
	for _, n := range imp.Named {
		if !have[n] {
			names = append(names, n)
			changed = true
		}
	}
	if def == "" && imp.Default != "" {
		def = imp.Default
		changed = true
	}
	if !changed {
		return stmt
	}
	quote := "'"
	if strings.Contains(stmt, `"`+imp.Module+`"`) {
		quote = `"`
	}
	parts := []string{}
	if def != "" {
		parts = append(parts, def)
	}
	if len(names) > 0 {
		parts = append(parts, "{ "+strings.Join(names, ", ")+" }")
	}
	out := "import " + strings.Join(parts, ", ") + " from " + quote + imp.Module + quote
	if strings.HasSuffix(stmt, ";") {
		out += ";"
	}
	return out
}
