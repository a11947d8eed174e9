// Package lexer performs the lexical scan of a single C/C++ source file:
// comment and literal stripping, include-directive extraction with exact
// line numbers, and provided/referenced identifier extraction.
//
// The scan is purely lexical. There is no macro expansion and no template
// awareness; that is a documented limitation of the engine, communicated
// downstream through confidence scores rather than papered over here.
package lexer

// Directive is one include directive occurrence.
type Directive struct {
	Line   int    // 1-based line number
	Raw    string // directive text as written, trimmed
	Path   string // header name between the delimiters
	Quoted bool   // `"..."` form; false for `<...>`
}

// Result holds everything the scan extracts from one file.
type Result struct {
	Directives []Directive
	Provides   []string
	Macros     []string // object-like and function-like macro names, subset of Provides
	References []string
}

// Scan lexes content and returns directives and identifier sets.
// It never fails: unparseable constructs degrade to fewer extracted
// symbols, not errors.
func Scan(content []byte) *Result {
	stripped, directives := strip(content)

	sc := &symbolCollector{
		provides: make(map[string]bool),
		macros:   make(map[string]bool),
		refs:     make(map[string]bool),
	}

	var out []Directive
	for _, d := range directives {
		if inc, ok := parseInclude(d.text); ok {
			inc.Line = d.line
			out = append(out, inc)
			continue
		}
		sc.collectDirective(d.text)
	}

	sc.collectCode(stripped)

	return &Result{
		Directives: out,
		Provides:   sc.sortedProvides(),
		Macros:     sc.sortedMacros(),
		References: sc.sortedRefs(),
	}
}

type rawDirective struct {
	line int
	text string
}

// strip returns a copy of content with comments, string literals, char
// literals, and preprocessor lines replaced by spaces. Newlines are kept so
// byte offsets still map to the original line numbers. Directive lines are
// returned separately with their text intact, since the header name in
// `#include "x.h"` is a header-name token, not a string literal.
func strip(content []byte) ([]byte, []rawDirective) {
	out := make([]byte, len(content))
	var directives []rawDirective

	const (
		stCode = iota
		stLineComment
		stBlockComment
		stString
		stChar
		stDirective
	)

	state := stCode
	line := 1
	atLineStart := true
	var dirStart, dirLine int

	flushDirective := func(end int) {
		text := trimSpaces(string(content[dirStart:end]))
		if text != "" {
			directives = append(directives, rawDirective{line: dirLine, text: text})
		}
	}

	for i := 0; i < len(content); i++ {
		c := content[i]
		out[i] = ' '
		if c == '\n' {
			out[i] = '\n'
		}

		switch state {
		case stCode:
			switch {
			case c == '/' && i+1 < len(content) && content[i+1] == '/':
				state = stLineComment
			case c == '/' && i+1 < len(content) && content[i+1] == '*':
				state = stBlockComment
				i++ // consume '*' so "/*/" does not self-close
			case c == '"':
				state = stString
			case c == '\'':
				state = stChar
			case c == '#' && atLineStart:
				state = stDirective
				dirStart = i
				dirLine = line
			default:
				if c != '\n' {
					out[i] = c
				}
			}

		case stLineComment:
			if c == '\n' {
				state = stCode
			}

		case stBlockComment:
			if c == '*' && i+1 < len(content) && content[i+1] == '/' {
				state = stCode
				i++
			}

		case stString:
			switch c {
			case '\\':
				i++ // escaped char, even if it is a quote
				if i < len(content) && content[i] == '\n' {
					out[i] = '\n'
					line++
				}
			case '"', '\n':
				// Unterminated literals end at the newline; real
				// compilers diagnose that, we just resynchronize.
				state = stCode
			}

		case stChar:
			switch c {
			case '\\':
				i++
				if i < len(content) && content[i] == '\n' {
					out[i] = '\n'
					line++
				}
			case '\'', '\n':
				state = stCode
			}

		case stDirective:
			switch {
			case c == '\\' && i+1 < len(content) && content[i+1] == '\n':
				i++ // line continuation stays in the directive
				out[i] = '\n'
				line++
			case c == '/' && i+1 < len(content) && content[i+1] == '/':
				flushDirective(i)
				state = stLineComment
			case c == '\n':
				flushDirective(i)
				state = stCode
			}
		}

		if c == '\n' {
			line++
		}
		atLineStart = c == '\n' || (atLineStart && (c == ' ' || c == '\t'))
	}
	if state == stDirective {
		flushDirective(len(content))
	}

	return out, directives
}

// parseInclude parses a directive line of the form `#include "path"` or
// `#include <path>`. Unclosed or macro-argument includes are rejected; a
// macro include cannot be resolved lexically.
func parseInclude(text string) (Directive, bool) {
	rest, ok := directiveBody(text, "include")
	if !ok {
		return Directive{}, false
	}
	if rest == "" {
		return Directive{}, false
	}

	var close byte
	var quoted bool
	switch rest[0] {
	case '"':
		close, quoted = '"', true
	case '<':
		close, quoted = '>', false
	default:
		return Directive{}, false
	}
	end := indexByteFrom(rest, close, 1)
	if end <= 1 {
		return Directive{}, false
	}
	return Directive{
		Raw:    text,
		Path:   rest[1:end],
		Quoted: quoted,
	}, true
}

// directiveBody matches `#   name` and returns the trimmed remainder.
func directiveBody(text, name string) (string, bool) {
	if len(text) == 0 || text[0] != '#' {
		return "", false
	}
	rest := trimSpaces(text[1:])
	if len(rest) < len(name) || rest[:len(name)] != name {
		return "", false
	}
	rest = rest[len(name):]
	if rest != "" && rest[0] != ' ' && rest[0] != '\t' && rest[0] != '"' && rest[0] != '<' {
		return "", false
	}
	return trimSpaces(rest), true
}

func trimSpaces(s string) string {
	start := 0
	for start < len(s) && (s[start] == ' ' || s[start] == '\t' || s[start] == '\r') {
		start++
	}
	end := len(s)
	for end > start && (s[end-1] == ' ' || s[end-1] == '\t' || s[end-1] == '\r') {
		end--
	}
	return s[start:end]
}

func indexByteFrom(s string, c byte, from int) int {
	for i := from; i < len(s); i++ {
		if s[i] == c {
			return i
		}
	}
	return -1
}
