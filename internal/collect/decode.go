package collect

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/tidwall/gjson"

	"typewatch/internal/posmap"
	"typewatch/internal/source"
	"typewatch/internal/task"
)

var ErrBadOutput = errors.New("invalid collector output")

// Decode turns collector JSON into a Collected value. The expected shape is
//
//	{
//	  "file": {"mode": "run"},
//	  "definitions": [
//	    {"type": "suite", "name": "math", "mode": "run", "start": 0, "end": 120, "parent": -1},
//	    {"type": "test", "name": "adds", "mode": "skip", "start": 20, "end": 80, "parent": 0}
//	  ],
//	  "sourceMap": {...} | "..." | null,
//	  "parsedText": "..."
//	}
//
// "parent" indexes an earlier definition, -1 (or absent) means the file.
// Empty output or a JSON null yields (nil, nil). When parsedText is absent
// text is used.
func Decode(path string, out []byte, text string) (*Collected, error) {
	out = bytes.TrimSpace(out)
	if len(out) == 0 {
		return nil, nil
	}
	if !gjson.ValidBytes(out) {
		return nil, fmt.Errorf("%w for %s: not valid JSON", ErrBadOutput, path)
	}
	res := gjson.ParseBytes(out)
	if res.Type == gjson.Null {
		return nil, nil
	}

	file := task.NewFile(path)
	if mode := res.Get("file.mode"); mode.Exists() {
		m, err := task.ParseMode(mode.String())
		if err != nil {
			return nil, fmt.Errorf("%w for %s: %v", ErrBadOutput, path, err)
		}
		file.Mode = m
	}

	defs := res.Get("definitions").Array()
	collected := &Collected{
		File:        file,
		Definitions: make([]Definition, 0, len(defs)),
		Text:        text,
	}
	if pt := res.Get("parsedText"); pt.Exists() {
		collected.Text = pt.String()
	}

	for i, d := range defs {
		def, err := decodeDefinition(d, i, collected)
		if err != nil {
			return nil, fmt.Errorf("%w for %s: definition %d: %v", ErrBadOutput, path, i, err)
		}
		collected.Definitions = append(collected.Definitions, def)
	}

	if sm := res.Get("sourceMap"); sm.Exists() && sm.Type != gjson.Null {
		raw := sm.Raw
		if sm.Type == gjson.String {
			raw = sm.String()
		}
		m, err := posmap.Parse([]byte(raw))
		if err != nil {
			return nil, fmt.Errorf("%w for %s: %v", ErrBadOutput, path, err)
		}
		collected.SourceMap = m
	}
	return collected, nil
}

func decodeDefinition(d gjson.Result, i int, c *Collected) (Definition, error) {
	typ := task.TypeTest
	switch d.Get("type").String() {
	case "suite":
		typ = task.TypeSuite
	case "test", "":
	default:
		return Definition{}, fmt.Errorf("unknown type %q", d.Get("type").String())
	}
	mode, err := task.ParseMode(d.Get("mode").String())
	if err != nil {
		return Definition{}, err
	}
	start, err := source.Offset(int(d.Get("start").Int()))
	if err != nil {
		return Definition{}, err
	}
	end, err := source.Offset(int(d.Get("end").Int()))
	if err != nil {
		return Definition{}, err
	}
	if end < start {
		return Definition{}, fmt.Errorf("end %d before start %d", end, start)
	}

	parent := c.File
	if p := d.Get("parent"); p.Exists() && p.Int() >= 0 {
		idx := int(p.Int())
		if idx >= i {
			return Definition{}, fmt.Errorf("parent %d does not precede it", idx)
		}
		parent = c.Definitions[idx].Task
		if parent.Type != task.TypeSuite {
			return Definition{}, fmt.Errorf("parent %d is not a suite", idx)
		}
	}

	// потомки пропущенного/todo сьюта не выполняются
	if !parent.Mode.Running() && mode.Running() {
		mode = parent.Mode
	}

	t := parent.Add(&task.Task{
		Type: typ,
		Name: d.Get("name").String(),
		Mode: mode,
	})
	return Definition{Span: source.Span{Start: start, End: end}, Task: t}, nil
}
