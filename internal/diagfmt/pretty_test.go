package diagfmt

import (
	"strings"
	"testing"

	"mustuse/internal/diag"
	"mustuse/internal/source"
)

func testBag(fs *source.FileSet) *diag.Bag {
	id := fs.AddVirtual("app/main.ex", []byte("x\nrem.remove(p)\ny\n"))

	bag := diag.NewBag(10)
	bag.Add(diag.Diagnostic{
		Severity: diag.SevError,
		Code:     diag.UsageViolationStrict,
		Message:  "result of app.D3.remove(int) must be used",
		Primary:  source.Span{File: id, Start: 2, End: 15},
		Notes: []diag.Note{
			{Span: source.Span{File: id, Start: 16, End: 17}, Msg: "required to be used by app.D3.remove(int) (must_use)"},
		},
	})
	bag.Sort()
	return bag
}

func TestPrettyOutput(t *testing.T) {
	fs := source.NewFileSet()
	bag := testBag(fs)

	var b strings.Builder
	Pretty(&b, bag, fs, PrettyOpts{ShowNotes: true})
	out := b.String()

	if !strings.Contains(out, "app/main.ex:2:1: ERROR USE3001: result of app.D3.remove(int) must be used") {
		t.Fatalf("missing header:\n%s", out)
	}
	if !strings.Contains(out, "rem.remove(p)") {
		t.Fatalf("missing context line:\n%s", out)
	}
	if !strings.Contains(out, "^~~~~~~~~~~~") {
		t.Fatalf("missing underline:\n%s", out)
	}
	if !strings.Contains(out, "note: required to be used by") {
		t.Fatalf("missing origin note:\n%s", out)
	}
}

func TestPrettySkipsContextForStubFiles(t *testing.T) {
	fs := source.NewFileSet()
	id := fs.AddStub("lib/abs.ex", []uint32{10})

	bag := diag.NewBag(10)
	bag.Add(diag.Diagnostic{
		Severity: diag.SevWarning,
		Code:     diag.UsageViolationLegacy,
		Message:  "result of lib.AbsPaths.remove(path) must be used",
		Primary:  source.Span{File: id, Start: 2, End: 8},
	})

	var b strings.Builder
	Pretty(&b, bag, fs, PrettyOpts{})
	out := b.String()

	if !strings.Contains(out, "lib/abs.ex:1:3: WARNING USE3002") {
		t.Fatalf("missing header:\n%s", out)
	}
	if strings.Contains(out, "^") {
		t.Fatalf("stub file must not render context:\n%s", out)
	}
}

func TestJSONOutput(t *testing.T) {
	fs := source.NewFileSet()
	bag := testBag(fs)

	var b strings.Builder
	if err := JSON(&b, bag, fs, JSONOpts{IncludePositions: true, IncludeNotes: true}); err != nil {
		t.Fatalf("json: %v", err)
	}
	out := b.String()

	for _, want := range []string{
		`"code": "USE3001"`,
		`"severity": "ERROR"`,
		`"file": "app/main.ex"`,
		`"start_line": 2`,
		`"count": 1`,
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("json output missing %s:\n%s", want, out)
		}
	}
}
