package collect

import (
	"errors"
	"testing"

	"typewatch/internal/task"
)

const sampleOutput = `{
  "file": {"mode": "run"},
  "definitions": [
    {"type": "suite", "name": "math", "mode": "run", "start": 0, "end": 120, "parent": -1},
    {"type": "test", "name": "adds", "mode": "run", "start": 20, "end": 60, "parent": 0},
    {"type": "suite", "name": "later", "mode": "skip", "start": 70, "end": 110, "parent": 0},
    {"type": "test", "name": "inherits skip", "start": 80, "end": 100, "parent": 2},
    {"type": "test", "name": "top level", "mode": "todo", "start": 130, "end": 140}
  ],
  "sourceMap": null
}`

func TestDecodeBuildsTree(t *testing.T) {
	c, err := Decode("/p/a.test-d.ts", []byte(sampleOutput), "file text")
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if c.File == nil || c.File.Name != "/p/a.test-d.ts" {
		t.Fatalf("unexpected file node: %+v", c.File)
	}
	if len(c.Definitions) != 5 {
		t.Fatalf("expected 5 definitions, got %d", len(c.Definitions))
	}
	if c.Text != "file text" {
		t.Errorf("Text = %q, want fallback text", c.Text)
	}
	if c.SourceMap != nil {
		t.Errorf("null sourceMap must decode to nil")
	}

	math := c.Definitions[0].Task
	adds := c.Definitions[1].Task
	later := c.Definitions[2].Task
	inherits := c.Definitions[3].Task
	top := c.Definitions[4].Task

	if math.Suite != c.File || adds.Suite != math || inherits.Suite != later || top.Suite != c.File {
		t.Fatalf("parent links do not follow the parent indexes")
	}
	if len(c.File.Tasks) != 2 || len(math.Tasks) != 2 {
		t.Fatalf("unexpected child counts: file %d, math %d", len(c.File.Tasks), len(math.Tasks))
	}
	if inherits.Mode != task.ModeSkip {
		t.Errorf("child of skipped suite has mode %q, want skip", inherits.Mode)
	}
	if top.Mode != task.ModeTodo || top.Type != task.TypeTest {
		t.Errorf("top level test decoded as %v/%v", top.Type, top.Mode)
	}
	if span := c.Definitions[1].Span; span.Start != 20 || span.End != 60 {
		t.Errorf("span = %v", span)
	}
}

func TestDecodeNullAndEmpty(t *testing.T) {
	for _, in := range []string{"", "  \n", "null"} {
		c, err := Decode("a.ts", []byte(in), "")
		if err != nil || c != nil {
			t.Errorf("Decode(%q) = %v, %v; want nil, nil", in, c, err)
		}
	}
}

func TestDecodeSourceMapAndParsedText(t *testing.T) {
	out := `{"definitions": [], "parsedText": "generated", "sourceMap": "{\"version\":3,\"sources\":[\"a.ts\"],\"mappings\":\"AAAA\"}"}`
	c, err := Decode("a.ts", []byte(out), "authored")
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if c.Text != "generated" {
		t.Errorf("Text = %q", c.Text)
	}
	if c.SourceMap == nil || c.SourceMap.Len() != 1 {
		t.Errorf("source map not decoded")
	}
}

func TestDecodeRejectsBadOutput(t *testing.T) {
	cases := map[string]string{
		"invalid json":      `{"definitions": [`,
		"forward parent":    `{"definitions": [{"type": "test", "start": 0, "end": 1, "parent": 0}]}`,
		"test as parent":    `{"definitions": [{"type": "test", "start": 0, "end": 9}, {"type": "test", "start": 1, "end": 2, "parent": 0}]}`,
		"end before start":  `{"definitions": [{"type": "test", "start": 5, "end": 1}]}`,
		"unknown mode":      `{"definitions": [{"type": "test", "mode": "later", "start": 0, "end": 1}]}`,
		"unknown type":      `{"definitions": [{"type": "hook", "start": 0, "end": 1}]}`,
		"negative offset":   `{"definitions": [{"type": "test", "start": -1, "end": 1}]}`,
		"broken source map": `{"definitions": [], "sourceMap": {"version": 1}}`,
	}
	for name, in := range cases {
		t.Run(name, func(t *testing.T) {
			if _, err := Decode("a.ts", []byte(in), ""); !errors.Is(err, ErrBadOutput) {
				t.Errorf("expected ErrBadOutput, got %v", err)
			}
		})
	}
}
