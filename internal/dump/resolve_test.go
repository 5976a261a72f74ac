package dump

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"mustuse/internal/annot"
	"mustuse/internal/hier"
	"mustuse/internal/source"
	"mustuse/internal/usage"
)

const fixtureTOML = `
schema = 1

[[file]]
path = "app/base.ex"
text = """
class Base
  fn remove(x: int) -> bool
end
"""

[[file]]
path = "app/main.ex"
newlines = [30, 61]

[[class]]
name = "app.Base"

[[class]]
name = "app.D3"
extends = ["app.Base"]

[[method]]
class = "app.Base"
name = "remove"
params = ["int"]
returns = "bool"
file = "app/base.ex"
span = [16, 22]

[[method]]
class = "app.D3"
name = "remove"
params = ["int"]
returns = "bool"
mark = "must_use"
file = "app/base.ex"
span = [16, 22]
overrides = ["app.Base.remove(int)"]

[[call]]
callee = "app.Base.remove(int)"
file = "app/main.ex"
span = [35, 49]
usage = "discarded"

[[call]]
callee = "app.D3.remove(int)"
file = "app/main.ex"
span = [62, 76]
usage = "consumed"
`

func decodeFixture(t *testing.T) (*source.FileSet, *hier.Graph, []usage.CallSite) {
	t.Helper()
	doc, err := DecodeTOML(strings.NewReader(fixtureTOML))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}

	fs := source.NewFileSet()
	b := hier.NewBuilder(nil)
	sites, err := Resolve([]*Document{doc}, fs, b)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	g, err := b.Build()
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	return fs, g, sites
}

func TestResolveTOMLFixture(t *testing.T) {
	fs, g, sites := decodeFixture(t)

	if fs.Len() != 2 {
		t.Fatalf("files = %d, want 2", fs.Len())
	}
	if g.NumClasses() != 2 || g.NumMethods() != 2 {
		t.Fatalf("classes/methods = %d/%d", g.NumClasses(), g.NumMethods())
	}
	if g.NumFamilies() != 1 {
		t.Fatalf("families = %d, want 1 (override merged)", g.NumFamilies())
	}
	if len(sites) != 2 {
		t.Fatalf("sites = %d, want 2", len(sites))
	}
	if sites[0].Usage != usage.Discarded || sites[1].Usage != usage.Consumed {
		t.Fatalf("usage tags = %v, %v", sites[0].Usage, sites[1].Usage)
	}

	// Пометка на D3 должна дать strict всему семейству.
	table, _, err := annot.Propagate(context.Background(), g, annot.Options{})
	if err != nil {
		t.Fatalf("propagate: %v", err)
	}
	if got := table.ForMethod(g, sites[0].Callee); got != annot.ClassStrict {
		t.Fatalf("classification through Base = %v, want strict", got)
	}
}

func TestBinaryRoundTrip(t *testing.T) {
	doc, err := DecodeTOML(strings.NewReader(fixtureTOML))
	if err != nil {
		t.Fatalf("decode toml: %v", err)
	}

	var buf bytes.Buffer
	if err := EncodeBinary(&buf, doc); err != nil {
		t.Fatalf("encode: %v", err)
	}
	decoded, err := DecodeBinary(&buf)
	if err != nil {
		t.Fatalf("decode binary: %v", err)
	}
	if len(decoded.Methods) != len(doc.Methods) || len(decoded.Calls) != len(doc.Calls) {
		t.Fatalf("binary roundtrip lost entries")
	}
}

func TestDecodeRejectsUnknownSchema(t *testing.T) {
	_, err := DecodeTOML(strings.NewReader("schema = 99\n"))
	if !errors.Is(err, ErrUnsupportedSchema) {
		t.Fatalf("err = %v, want ErrUnsupportedSchema", err)
	}
}

func TestResolveDanglingOverride(t *testing.T) {
	doc := &Document{
		Schema:  1,
		Files:   []File{{Path: "a.ex", Text: "x\n"}},
		Classes: []Class{{Name: "app.A"}},
		Methods: []Method{{
			Class: "app.A", Name: "remove", Params: []string{"int"},
			File: "a.ex", Span: []uint32{0, 1},
			Overrides: []string{"app.Missing.remove(int)"},
		}},
	}

	_, err := Resolve([]*Document{doc}, source.NewFileSet(), hier.NewBuilder(nil))
	if !errors.Is(err, ErrDanglingRef) {
		t.Fatalf("err = %v, want ErrDanglingRef", err)
	}
}

func TestResolveDanglingCallee(t *testing.T) {
	doc := &Document{
		Schema: 1,
		Files:  []File{{Path: "a.ex", Text: "x\n"}},
		Calls:  []Call{{Callee: "app.A.remove(int)", File: "a.ex", Span: []uint32{0, 1}, Usage: "discarded"}},
	}

	_, err := Resolve([]*Document{doc}, source.NewFileSet(), hier.NewBuilder(nil))
	if !errors.Is(err, ErrDanglingRef) {
		t.Fatalf("err = %v, want ErrDanglingRef", err)
	}
}

func TestKeyNormalizesUnicode(t *testing.T) {
	// "é" как одна кодовая точка и как "e" + комбинируемый акцент.
	composed := "caf\u00e9.App"
	decomposed := "cafe\u0301.App"
	if Key(composed, "run", nil) != Key(decomposed, "run", nil) {
		t.Fatalf("NFC normalization must unify method keys")
	}
}

func TestCrossDocumentOverride(t *testing.T) {
	lib := &Document{
		Schema:  1,
		Files:   []File{{Path: "lib/abs.ex", Newlines: []uint32{12}}},
		Classes: []Class{{Name: "lib.AbsPaths"}},
		Methods: []Method{{
			Class: "lib.AbsPaths", Name: "remove", Params: []string{"path"},
			File: "lib/abs.ex", Span: []uint32{0, 6},
		}},
	}
	app := &Document{
		Schema:  1,
		Files:   []File{{Path: "app/remedy.ex", Text: "class Remedy\n"}},
		Classes: []Class{{Name: "app.Remedy", Extends: []string{"lib.AbsPaths"}}},
		Methods: []Method{{
			Class: "app.Remedy", Name: "remove", Params: []string{"path"},
			Mark: "must_use_legacy",
			File: "app/remedy.ex", Span: []uint32{0, 6},
			Overrides: []string{"lib.AbsPaths.remove(path)"},
		}},
		Calls: []Call{{
			Callee: "lib.AbsPaths.remove(path)",
			File:   "lib/abs.ex", Span: []uint32{0, 6}, Usage: "discarded",
		}},
	}

	fs := source.NewFileSet()
	b := hier.NewBuilder(nil)
	sites, err := Resolve([]*Document{lib, app}, fs, b)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	g, err := b.Build()
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if g.NumFamilies() != 1 {
		t.Fatalf("cross-document override not merged: %d families", g.NumFamilies())
	}

	table, _, err := annot.Propagate(context.Background(), g, annot.Options{})
	if err != nil {
		t.Fatalf("propagate: %v", err)
	}
	// Аннотация в пользовательском юните распространяется на вызовы через
	// библиотечный тип.
	if got := table.ForMethod(g, sites[0].Callee); got != annot.ClassLegacy {
		t.Fatalf("classification = %v, want legacy", got)
	}
}
