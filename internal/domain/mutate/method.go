package mutate

import (
	"regexp"
	"strings"
)

// ParamPlaceholder in a statement is replaced by the name of the method's
// first parameter, e.g. the token argument of onNewToken.
const ParamPlaceholder = "{param}"

// Statement is one line to ensure inside a method body.
type Statement struct {
	Code string
	// Marker is the substring that proves the statement is present. It
	// defaults to Code.
	Marker string
}

func (s Statement) marker() string {
	if s.Marker != "" {
		return s.Marker
	}
	return s.Code
}

// Method names a method to augment and describes how to synthesize it.
type Method struct {
	Name string
	// Declaration is the header of a synthesized override, ending with
	// the opening brace, e.g. "@Override\npublic void onCreate() {".
	Declaration string
	// Super is the first statement of a synthesized override.
	Super string
	// Param is the first parameter name used by Declaration.
	Param string
	// Anchor, when found in the body, is the line new statements go
	// before, e.g. "runApp(" in a Dart main.
	Anchor string
}

// methodDecl locates a method declaration and its body.
type methodDecl struct {
	block
	Params string
}

func methodRex(lang Lang, name string) *regexp.Regexp {
	n := regexp.QuoteMeta(name)
	switch lang {
	case LangKotlin, LangKotlinScript:
		return regexp.MustCompile(`\bfun\s+(` + n + `)\s*\(([^)]*)\)[^;{}()=]*\{`)
	case LangDart:
		return regexp.MustCompile(`(?:^|[\w>?\]]\s+)(` + n + `)\s*\(([^)]*)\)[^;{}()=]*\{`)
	}
	return regexp.MustCompile(`[\w>\]]\s+(` + n + `)\s*\(([^)]*)\)[^;{}()=]*\{`)
}

func findMethod(src string, lang Lang, name string) (methodDecl, bool) {
	rex := methodRex(lang, name)
	mask := codeMask(src, lang)
	for _, m := range rex.FindAllStringSubmatchIndex(src, -1) {
		start, open := m[2], m[1]-1
		if !mask[start] || !mask[open] {
			continue
		}
		closeAt := matchBrace(src, mask, open)
		if closeAt < 0 {
			continue
		}
		return methodDecl{
			block:  block{Start: lineStart(src, start), Open: open, Close: closeAt},
			Params: src[m[4]:m[5]],
		}, true
	}
	return methodDecl{}, false
}

// HasMethod reports whether src declares a method called name.
func HasMethod(src string, lang Lang, name string) bool {
	_, ok := findMethod(src, lang, name)
	return ok
}

// firstParamName extracts the name of the first parameter from a
// parameter list in Java, Kotlin or Dart syntax.
func firstParamName(lang Lang, params string) string {
	first := strings.TrimSpace(strings.Split(params, ",")[0])
	if first == "" {
		return ""
	}
	if lang.IsKotlin() {
		if i := strings.IndexByte(first, ':'); i >= 0 {
			first = first[:i]
		}
		f := strings.Fields(first)
		if len(f) == 0 {
			return ""
		}
		return f[len(f)-1]
	}
	f := strings.Fields(strings.NewReplacer("{", " ", "}", " ", "[", " ", "]", " ").Replace(first))
	return f[len(f)-1]
}

func bind(code, param string) string {
	if param == "" {
		return code
	}
	return strings.ReplaceAll(code, ParamPlaceholder, param)
}

// missingStatements returns the statements not present in body.
func missingStatements(body, param string, stmts []Statement) []string {
	var out []string
	for _, s := range stmts {
		if !containsCode(body, bind(s.marker(), param)) {
			out = append(out, bind(s.Code, param))
		}
	}
	return out
}

// HasStatements reports whether method exists and contains every
// statement.
func HasStatements(src string, lang Lang, m Method, stmts []Statement) bool {
	d, ok := findMethod(src, lang, m.Name)
	if !ok {
		return false
	}
	param := firstParamName(lang, d.Params)
	return len(missingStatements(d.body(src), param, stmts)) == 0
}

// EnsureMethodStatements makes method m contain every statement. Missing
// statements go before m.Anchor, else right after the super call, else at
// the start of the body. A missing method is synthesized at the end of the
// first class in src; without a class src is returned unchanged.
func EnsureMethodStatements(src string, lang Lang, m Method, stmts []Statement) string {
	d, ok := findMethod(src, lang, m.Name)
	if !ok {
		return synthesizeMethod(src, lang, m, stmts)
	}
	body := d.body(src)
	param := firstParamName(lang, d.Params)
	missing := missingStatements(body, param, stmts)
	if len(missing) == 0 {
		return src
	}
	for i, s := range missing {
		missing[i] = lang.Statement(s)
	}
	text := strings.Join(missing, "\n")

	indent := bodyIndent(src, d.block)
	mask := codeMask(src, lang)
	if m.Anchor != "" {
		if at := indexInCode(src, mask, m.Anchor, d.Open+1, d.Close); at >= 0 {
			return insertBeforeLine(src, at, indentLines(text, indentAt(src, at)))
		}
	}
	if at := indexInCode(src, mask, "super."+m.Name+"(", d.Open+1, d.Close); at >= 0 {
		return insertAfterLine(src, statementEnd(src, mask, at, d.Close), indentLines(text, indentAt(src, at)))
	}
	if strings.TrimSpace(src[d.Open+1:lineEnd(src, d.Open)]) == "" {
		return insertAfterLine(src, d.Open, indentLines(text, indent))
	}
	// body shares the header line
	return src[:d.Open+1] + "\n" + indentLines(text, indent) + indentAt(src, d.Start) + strings.TrimLeft(src[d.Open+1:], " \t")
}

// bodyIndent returns the indentation of the first code line in the body,
// or the declaration's indentation plus one level.
func bodyIndent(src string, b block) string {
	for i := lineEnd(src, b.Open) + 1; i < b.Close; i = lineEnd(src, i) + 1 {
		line := src[i:lineEnd(src, i)]
		if strings.TrimSpace(line) != "" && i+len(line) <= b.Close {
			return indentAt(src, i)
		}
	}
	return indentAt(src, b.Start) + indentUnit(src)
}

// indexInCode finds needle within [from, to) outside comments and strings.
func indexInCode(src string, mask []bool, needle string, from, to int) int {
	for from < to {
		i := strings.Index(src[from:to], needle)
		if i < 0 {
			return -1
		}
		if mask[from+i] {
			return from + i
		}
		from += i + 1
	}
	return -1
}

// statementEnd returns an offset on the last line of the call starting at
// i, following its parentheses across lines.
func statementEnd(src string, mask []bool, i, limit int) int {
	depth := 0
	for j := i; j < limit; j++ {
		if !mask[j] {
			continue
		}
		switch src[j] {
		case '(':
			depth++
		case ')':
			depth--
			if depth == 0 {
				return j
			}
		}
	}
	return i
}

var classHeaderRex = regexp.MustCompile(`(?:^|\s)(class)\s+\w+[^;{]*\{`)

// firstClass finds the first top-level class body in src.
func firstClass(src string, lang Lang) (block, bool) {
	blocks := findBlocks(src, lang, classHeaderRex, 0)
	if len(blocks) == 0 {
		return block{}, false
	}
	return blocks[0], true
}

func synthesizeMethod(src string, lang Lang, m Method, stmts []Statement) string {
	if m.Declaration == "" {
		return src
	}
	cls, ok := firstClass(src, lang)
	if !ok {
		return src
	}
	unit := indentUnit(src)
	var lines []string
	if m.Super != "" {
		lines = append(lines, lang.Statement(bind(m.Super, m.Param)))
	}
	for _, s := range stmts {
		lines = append(lines, lang.Statement(bind(s.Code, m.Param)))
	}
	method := m.Declaration + "\n" + indentLines(strings.Join(lines, "\n"), unit) + "}"
	indent := indentAt(src, cls.Start) + unit
	text := indentLines(method, indent)

	closeLine := lineStart(src, cls.Close)
	if strings.TrimSpace(src[closeLine:cls.Close]) != "" {
		return src[:cls.Close] + "\n\n" + text + indentAt(src, cls.Start) + src[cls.Close:]
	}
	prefix := "\n"
	if prev := strings.TrimRight(src[:closeLine], " \t\n"); strings.HasSuffix(prev, "{") {
		prefix = ""
	}
	return src[:closeLine] + prefix + text + src[closeLine:]
}
