package lexer

import "sort"

// symbolCollector accumulates provided and referenced identifiers during a
// scan. Extraction is heuristic: an identifier counts as provided when it
// sits in a lexical declaration position (after a declaration keyword, as a
// typedef name, as a macro name, or as a top-level definition); every other
// non-keyword identifier counts as referenced.
type symbolCollector struct {
	provides map[string]bool
	macros   map[string]bool
	refs     map[string]bool
}

func (sc *symbolCollector) provide(name string) {
	if name != "" && !keywords[name] {
		sc.provides[name] = true
	}
}

func (sc *symbolCollector) refer(name string) {
	if name != "" && !keywords[name] {
		sc.refs[name] = true
	}
}

// collectDirective handles non-include preprocessor lines: #define yields a
// provided macro name, conditional directives yield references.
func (sc *symbolCollector) collectDirective(text string) {
	if body, ok := directiveBody(text, "define"); ok {
		name, rest := firstIdent(body)
		if name == "" {
			return
		}
		sc.provides[name] = true
		sc.macros[name] = true
		// Identifiers in the replacement list are genuine uses.
		sc.referAll(rest)
		return
	}
	for _, cond := range []string{"ifdef", "ifndef", "undef", "if", "elif"} {
		if body, ok := directiveBody(text, cond); ok {
			sc.referAll(body)
			return
		}
	}
}

func (sc *symbolCollector) referAll(s string) {
	for _, tok := range identTokens([]byte(s)) {
		if tok.text == "defined" {
			continue
		}
		sc.refer(tok.text)
	}
}

// collectCode walks the stripped token stream and applies the declaration
// heuristics at top-level depth. Namespace and extern-linkage braces are
// transparent: declarations inside them are still top level. Class, struct,
// function and initializer braces are opaque: only the outer name is a
// provider, member and local identifiers are references.
func (sc *symbolCollector) collectCode(stripped []byte) {
	toks := tokenize(stripped)

	depth := 0
	transparent := make([]bool, 0, 8) // one entry per open brace

	for i := 0; i < len(toks); i++ {
		t := toks[i]
		switch t.text {
		case "{":
			trans := bracePrecededByTransparent(toks, i)
			transparent = append(transparent, trans)
			if !trans {
				depth++
			}
			continue
		case "}":
			if n := len(transparent); n > 0 {
				if !transparent[n-1] {
					depth--
				}
				transparent = transparent[:n-1]
			}
			continue
		}

		if !t.ident {
			continue
		}
		if depth == 0 {
			if name := declarationAt(toks, i); name != "" {
				sc.provide(name)
			}
		}
		sc.refer(t.text)
	}

	// A file does not reference what it provides.
	for name := range sc.provides {
		delete(sc.refs, name)
	}
}

// declarationAt decides whether the token at index i opens a declaration
// and returns the declared name, or "".
func declarationAt(toks []token, i int) string {
	t := toks[i]

	switch t.text {
	case "typedef":
		// The typedef name is the last identifier before the closing
		// semicolon: `typedef struct {...} name;`.
		return typedefName(toks, i+1)
	case "struct", "class", "union", "enum":
		j := i + 1
		if j < len(toks) && toks[j].text == "class" { // enum class
			j++
		}
		if j < len(toks) && toks[j].ident && !keywords[toks[j].text] {
			// A tag mention like `struct stat st;` is a reference,
			// not a declaration; only tags introducing a body, a
			// base-clause, or standing alone (`struct x;`) provide.
			if j+1 < len(toks) {
				switch toks[j+1].text {
				case "{", ";", ":", "final":
					return toks[j].text
				}
			}
		}
		return ""
	case "using":
		// `using name = ...` declares an alias; `using namespace x`
		// and `using std::x` only reference.
		if i+2 < len(toks) && toks[i+1].ident && toks[i+2].text == "=" {
			return toks[i+1].text
		}
		return ""
	}

	if keywords[t.text] {
		return ""
	}

	// Definition position: `type name(...)`, `type name;`, `type name =`,
	// `type name[`. The preceding token must look like a type.
	if i == 0 || !typeish(toks[i-1]) {
		return ""
	}
	if i+1 < len(toks) {
		switch toks[i+1].text {
		case "(", ";", "=", "[":
			return t.text
		}
	}
	return ""
}

// typedefName scans forward to the terminating semicolon of a typedef,
// skipping nested braces, and returns the last identifier seen at depth 0.
func typedefName(toks []token, from int) string {
	depth := 0
	last := ""
	for j := from; j < len(toks); j++ {
		switch toks[j].text {
		case "{":
			depth++
		case "}":
			depth--
		case ";":
			if depth <= 0 {
				return last
			}
		default:
			if depth == 0 && toks[j].ident && !keywords[toks[j].text] {
				last = toks[j].text
			}
		}
	}
	return ""
}

// typeish reports whether a token can plausibly end a type expression.
func typeish(t token) bool {
	if t.ident {
		switch t.text {
		case "return", "case", "goto", "new", "delete", "throw", "else", "do", "typedef", "sizeof":
			return false
		}
		return true
	}
	switch t.text {
	case "*", "&", ">", "]":
		return true
	}
	return false
}

// bracePrecededByTransparent looks back from an opening brace for a
// namespace or extern-linkage introducer.
func bracePrecededByTransparent(toks []token, brace int) bool {
	for j := brace - 1; j >= 0 && j >= brace-3; j-- {
		switch toks[j].text {
		case "namespace", "extern":
			return true
		}
		if !toks[j].ident {
			return false
		}
	}
	return false
}

type token struct {
	text  string
	ident bool
}

// tokenize splits stripped source into identifier and punctuation tokens.
// Numbers are dropped: they can never name a provider.
func tokenize(stripped []byte) []token {
	var toks []token
	for i := 0; i < len(stripped); i++ {
		c := stripped[i]
		switch {
		case isIdentStart(c):
			j := i + 1
			for j < len(stripped) && isIdentPart(stripped[j]) {
				j++
			}
			toks = append(toks, token{text: string(stripped[i:j]), ident: true})
			i = j - 1
		case c >= '0' && c <= '9':
			j := i + 1
			for j < len(stripped) && (isIdentPart(stripped[j]) || stripped[j] == '.') {
				j++
			}
			i = j - 1
		case c == ' ' || c == '\t' || c == '\n' || c == '\r' || c == 0:
			// separator
		default:
			toks = append(toks, token{text: string(c)})
		}
	}
	return toks
}

func identTokens(b []byte) []token {
	var out []token
	for _, t := range tokenize(b) {
		if t.ident {
			out = append(out, t)
		}
	}
	return out
}

func firstIdent(s string) (string, string) {
	for i := 0; i < len(s); i++ {
		if isIdentStart(s[i]) {
			j := i + 1
			for j < len(s) && isIdentPart(s[j]) {
				j++
			}
			return s[i:j], s[j:]
		}
		if s[i] != ' ' && s[i] != '\t' {
			return "", s
		}
	}
	return "", ""
}

func isIdentStart(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isIdentPart(c byte) bool {
	return isIdentStart(c) || (c >= '0' && c <= '9')
}

func (sc *symbolCollector) sortedProvides() []string { return sortedKeys(sc.provides) }
func (sc *symbolCollector) sortedMacros() []string   { return sortedKeys(sc.macros) }
func (sc *symbolCollector) sortedRefs() []string     { return sortedKeys(sc.refs) }

func sortedKeys(m map[string]bool) []string {
	if len(m) == 0 {
		return nil
	}
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// keywords are identifiers that can never be providers or references.
var keywords = map[string]bool{
	"alignas": true, "alignof": true, "auto": true, "bool": true, "break": true,
	"case": true, "catch": true, "char": true, "char8_t": true, "char16_t": true,
	"char32_t": true, "class": true, "const": true, "consteval": true,
	"constexpr": true, "constinit": true, "const_cast": true, "continue": true,
	"decltype": true, "default": true, "delete": true, "do": true, "double": true,
	"dynamic_cast": true, "else": true, "enum": true, "explicit": true,
	"extern": true, "false": true, "final": true, "float": true, "for": true,
	"friend": true, "goto": true, "if": true, "inline": true, "int": true,
	"long": true, "mutable": true, "namespace": true, "new": true,
	"noexcept": true, "nullptr": true, "operator": true, "override": true,
	"private": true, "protected": true, "public": true, "register": true,
	"reinterpret_cast": true, "restrict": true, "return": true, "short": true,
	"signed": true, "sizeof": true, "static": true, "static_assert": true,
	"static_cast": true, "struct": true, "switch": true, "template": true,
	"this": true, "throw": true, "true": true, "try": true, "typedef": true,
	"typeid": true, "typename": true, "union": true, "unsigned": true,
	"using": true, "virtual": true, "void": true, "volatile": true,
	"wchar_t": true, "while": true,
}
