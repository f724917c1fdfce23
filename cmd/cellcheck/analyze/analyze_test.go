package analyze

import (
	"strings"
	"testing"
)

const fileHeader = `package demo

import "github.com/pie-flavor/rc-cell/cell"

var c = cell.New(0)

`

// src wraps a function body in a minimal file that imports the cell
// package, so the checks do not skip it.
func src(body string) string {
	return fileHeader + "func demo() {\n" + body + "\n}\n"
}

func TestFileFindings(t *testing.T) {
	tests := []struct {
		name string
		src  string
		opts Options
		want []string // substrings expected in diagnostics, in order
	}{
		{
			name: "deferred release is clean",
			src: src(`	g := c.Borrow()
	defer g.Release()
	_ = g.Value()`),
			opts: DefaultOptions(),
		},
		{
			name: "inline release is clean by default",
			src: src(`	g := c.BorrowMut()
	*g.Value() = 1
	g.Release()`),
			opts: DefaultOptions(),
		},
		{
			name: "discarded guard as statement",
			src:  src(`	c.Borrow()`),
			opts: DefaultOptions(),
			want: []string{"result of Borrow() discarded"},
		},
		{
			name: "guard assigned to blank",
			src:  src(`	_ = c.BorrowMut()`),
			opts: DefaultOptions(),
			want: []string{"result of BorrowMut() discarded"},
		},
		{
			name: "never released",
			src: src(`	g := c.Borrow()
	_ = g.Value()`),
			opts: DefaultOptions(),
			want: []string{`borrow guard "g" is never released`},
		},
		{
			name: "try variant never released",
			src: src(`	g, err := c.TryBorrowMut()
	if err != nil {
		return
	}
	_ = g`),
			opts: DefaultOptions(),
			want: []string{`borrow guard "g" is never released`},
		},
		{
			name: "returned guard escapes",
			src: fileHeader + `func demo() any {
	g := c.Borrow()
	return g
}
`,
			opts: DefaultOptions(),
			want: []string{`borrow guard "g" escapes the function`},
		},
		{
			name: "guard stored in struct field escapes",
			src: fileHeader + `type holder struct{ g any }

func demo(h *holder) {
	g := c.BorrowMut()
	h.g = g
}
`,
			opts: DefaultOptions(),
			want: []string{`borrow guard "g" escapes the function`},
		},
		{
			name: "escape check can be disabled",
			src: fileHeader + `func demo() any {
	g := c.Borrow()
	return g
}
`,
			opts: Options{},
			// Without the escape check the guard still counts as
			// never released.
			want: []string{`borrow guard "g" is never released`},
		},
		{
			name: "require defer flags inline release",
			src: src(`	g := c.Borrow()
	_ = g.Value()
	g.Release()`),
			opts: Options{RequireDefer: true},
			want: []string{`borrow guard "g" is released without defer`},
		},
		{
			name: "two guards, one leaked",
			src: src(`	a := c.Borrow()
	defer a.Release()
	b := c.Borrow()
	_ = b`),
			opts: DefaultOptions(),
			want: []string{`borrow guard "b" is never released`},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := File("demo.go", tt.src, tt.opts)
			if err != nil {
				t.Fatalf("File failed: %v", err)
			}
			if len(res.Diagnostics) != len(tt.want) {
				for _, d := range res.Diagnostics {
					t.Logf("diagnostic: %s", d.Error())
				}
				t.Fatalf("got %d diagnostics, want %d", len(res.Diagnostics), len(tt.want))
			}
			for i, want := range tt.want {
				if !strings.Contains(res.Diagnostics[i].Message, want) {
					t.Errorf("diagnostic %d = %q, want substring %q", i, res.Diagnostics[i].Message, want)
				}
			}
		})
	}
}

func TestFileSkipsWithoutImport(t *testing.T) {
	src := `package demo

func demo() {
	g := c.Borrow()
	_ = g
}
`
	res, err := File("demo.go", src, DefaultOptions())
	if err != nil {
		t.Fatalf("File failed: %v", err)
	}
	if !res.Stats.Skipped {
		t.Error("file without the cell import was not skipped")
	}
	if len(res.Diagnostics) != 0 {
		t.Errorf("got %d diagnostics from a skipped file", len(res.Diagnostics))
	}
}

func TestFileParseError(t *testing.T) {
	if _, err := File("bad.go", "not go at all", DefaultOptions()); err == nil {
		t.Error("expected a parse error")
	}
}

func TestDiagnosticError(t *testing.T) {
	d := &Diagnostic{File: "x.go", Line: 3, Column: 7, Message: "m", Suggestion: "s"}
	got := d.Error()
	if !strings.HasPrefix(got, "x.go:3:7: m") {
		t.Errorf("Error() = %q", got)
	}
	if !strings.Contains(got, "suggestion: s") {
		t.Errorf("Error() missing suggestion: %q", got)
	}
}

func TestStats(t *testing.T) {
	res, err := File("demo.go", src(`	g := c.Borrow()
	defer g.Release()`), DefaultOptions())
	if err != nil {
		t.Fatalf("File failed: %v", err)
	}
	if res.Stats.FuncsChecked != 1 {
		t.Errorf("FuncsChecked = %d, want 1", res.Stats.FuncsChecked)
	}
	if res.Stats.GuardsSeen != 1 {
		t.Errorf("GuardsSeen = %d, want 1", res.Stats.GuardsSeen)
	}
}
