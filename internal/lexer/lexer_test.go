package lexer

import (
	"reflect"
	"testing"
)

func TestScanIncludes(t *testing.T) {
	src := []byte(`#include "util.h"
#include <vector>
#  include   "deep/nested.h"
`)
	res := Scan(src)
	if len(res.Directives) != 3 {
		t.Fatalf("got %d directives, want 3", len(res.Directives))
	}

	d := res.Directives[0]
	if d.Path != "util.h" || !d.Quoted || d.Line != 1 {
		t.Errorf("directive 0 = %+v", d)
	}
	d = res.Directives[1]
	if d.Path != "vector" || d.Quoted || d.Line != 2 {
		t.Errorf("directive 1 = %+v", d)
	}
	d = res.Directives[2]
	if d.Path != "deep/nested.h" || !d.Quoted || d.Line != 3 {
		t.Errorf("directive 2 = %+v", d)
	}
}

func TestScanIgnoresIncludesInCommentsAndStrings(t *testing.T) {
	src := []byte(`// #include "comment.h"
/* #include "block.h" */
const char *s = "#include \"string.h\"";
#include "real.h"
`)
	res := Scan(src)
	if len(res.Directives) != 1 {
		t.Fatalf("got %d directives, want 1: %+v", len(res.Directives), res.Directives)
	}
	if res.Directives[0].Path != "real.h" || res.Directives[0].Line != 4 {
		t.Errorf("directive = %+v", res.Directives[0])
	}
}

func TestScanLineNumbersAfterBlockComment(t *testing.T) {
	src := []byte("/* line one\nline two\nline three */\n#include \"after.h\"\n")
	res := Scan(src)
	if len(res.Directives) != 1 || res.Directives[0].Line != 4 {
		t.Fatalf("directives = %+v, want one at line 4", res.Directives)
	}
}

func TestScanDirectiveContinuation(t *testing.T) {
	src := []byte("#define LONG_MACRO(x) \\\n    do_thing(x)\n#include \"next.h\"\n")
	res := Scan(src)
	if len(res.Directives) != 1 {
		t.Fatalf("got %d directives, want 1", len(res.Directives))
	}
	if res.Directives[0].Line != 3 {
		t.Errorf("line = %d, want 3", res.Directives[0].Line)
	}
	if !contains(res.Macros, "LONG_MACRO") {
		t.Errorf("macros = %v, want LONG_MACRO", res.Macros)
	}
	if !contains(res.References, "do_thing") {
		t.Errorf("references = %v, want do_thing", res.References)
	}
}

func TestScanRejectsMacroInclude(t *testing.T) {
	res := Scan([]byte("#include HEADER_MACRO\n"))
	if len(res.Directives) != 0 {
		t.Errorf("macro include should not produce a directive: %+v", res.Directives)
	}
}

func TestScanProvides(t *testing.T) {
	src := []byte(`struct Point { int x; int y; };
class Widget final {};
enum class Color { Red };
typedef unsigned long size_type;
using Callback = void (*)(int);
int add(int a, int b);
static const int kLimit = 10;
`)
	res := Scan(src)
	for _, want := range []string{"Point", "Widget", "Color", "size_type", "Callback", "add", "kLimit"} {
		if !contains(res.Provides, want) {
			t.Errorf("provides = %v, missing %q", res.Provides, want)
		}
	}
}

func TestScanTagMentionIsReferenceNotProvide(t *testing.T) {
	res := Scan([]byte("void f() { struct stat st; }\n"))
	if contains(res.Provides, "stat") {
		t.Errorf("provides = %v, `struct stat st;` must not provide stat", res.Provides)
	}
	if !contains(res.References, "stat") {
		t.Errorf("references = %v, want stat", res.References)
	}
}

func TestScanConditionalDirectiveReferences(t *testing.T) {
	src := []byte(`#ifdef FEATURE_X
#endif
#if defined(FEATURE_Y) && LEVEL > 2
#endif
#undef OLD_NAME
`)
	res := Scan(src)
	for _, want := range []string{"FEATURE_X", "FEATURE_Y", "LEVEL", "OLD_NAME"} {
		if !contains(res.References, want) {
			t.Errorf("references = %v, missing %q", res.References, want)
		}
	}
	if contains(res.References, "defined") {
		t.Errorf("references = %v, defined is an operator", res.References)
	}
}

func TestScanProvidedNamesAreNotReferences(t *testing.T) {
	src := []byte(`int counter = 0;
int bump() { return counter + 1; }
`)
	res := Scan(src)
	if contains(res.References, "counter") {
		t.Errorf("references = %v, counter is provided here", res.References)
	}
	if !contains(res.Provides, "counter") || !contains(res.Provides, "bump") {
		t.Errorf("provides = %v", res.Provides)
	}
}

func TestScanNamespaceIsTransparent(t *testing.T) {
	src := []byte(`namespace util {
int helper();
}
`)
	res := Scan(src)
	if !contains(res.Provides, "helper") {
		t.Errorf("provides = %v, namespace braces must stay transparent", res.Provides)
	}
}

func TestScanMacrosAreSubsetOfProvides(t *testing.T) {
	src := []byte("#define MAX(a, b) ((a) > (b) ? (a) : (b))\n#define VERSION 3\n")
	res := Scan(src)
	want := []string{"MAX", "VERSION"}
	if !reflect.DeepEqual(res.Macros, want) {
		t.Errorf("macros = %v, want %v", res.Macros, want)
	}
	for _, m := range res.Macros {
		if !contains(res.Provides, m) {
			t.Errorf("macro %q missing from provides %v", m, res.Provides)
		}
	}
}

func TestScanEmptyAndBinaryLikeInput(t *testing.T) {
	if res := Scan(nil); len(res.Directives) != 0 || len(res.Provides) != 0 {
		t.Errorf("empty input produced %+v", res)
	}
	// Garbage degrades to nothing useful, never panics.
	Scan([]byte{0x00, 0xff, '{', '\'', '\\'})
}

func contains(list []string, want string) bool {
	for _, s := range list {
		if s == want {
			return true
		}
	}
	return false
}
