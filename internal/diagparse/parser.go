// Package diagparse parses tsc-like checker output into diagnostics grouped
// by file.
package diagparse

import (
	"regexp"
	"strconv"
	"strings"

	"typewatch/internal/diag"
)

// Patterns use named groups: path, line, col, sev, code, msg. Only sev and
// msg are required.
var (
	// src/a.ts(3,7): error TS2322: message
	plainRe = regexp.MustCompile(`^(?P<path>\S.*?)\((?P<line>\d+),(?P<col>\d+)\):\s+(?P<sev>error|warning|message)(?:\s+(?P<code>[A-Z]+\d+))?:\s?(?P<msg>.*)$`)
	// src/a.ts:3:7 - error TS2322: message (--pretty)
	prettyRe = regexp.MustCompile(`^(?P<path>\S.*?):(?P<line>\d+):(?P<col>\d+)\s+-\s+(?P<sev>error|warning|message)(?:\s+(?P<code>[A-Z]+\d+))?:\s?(?P<msg>.*)$`)
	// tsconfig.json: error TS18003: message
	fileOnlyRe = regexp.MustCompile(`^(?P<path>[^\s:]+\.[A-Za-z]+):\s+(?P<sev>error|warning|message)(?:\s+(?P<code>[A-Z]+\d+))?:\s?(?P<msg>.*)$`)
	// error TS5083: message
	globalRe = regexp.MustCompile(`^(?P<sev>error|warning|message)(?:\s+(?P<code>[A-Z]+\d+))?:\s?(?P<msg>.*)$`)

	ansiRe      = regexp.MustCompile("\x1b\\[[0-9;]*[A-Za-z]")
	underlineRe = regexp.MustCompile(`^\s*~+\s*$`)
)

// DefaultPatterns is the pattern list used by Parse, tried in order.
var DefaultPatterns = []*regexp.Regexp{plainRe, prettyRe, fileOnlyRe, globalRe}

// Parser turns raw checker output into diagnostics.
type Parser struct {
	patterns []*regexp.Regexp
}

// New returns a parser trying patterns in order. No patterns means DefaultPatterns.
func New(patterns ...*regexp.Regexp) *Parser {
	if len(patterns) == 0 {
		patterns = DefaultPatterns
	}
	return &Parser{patterns: patterns}
}

// Parse uses the default pattern set.
func Parse(output string) *diag.FileMap {
	return New().Parse(output)
}

// Parse groups every recognisable diagnostic in output by the path the tool
// printed. Unrecognised lines are skipped. Indented lines continue the
// message of the diagnostic right above them.
func (p *Parser) Parse(output string) *diag.FileMap {
	out := diag.NewFileMap()
	var cur *diag.Diagnostic
	flush := func() {
		if cur != nil {
			out.Add(*cur)
			cur = nil
		}
	}

	for _, line := range strings.Split(output, "\n") {
		line = strings.TrimRight(ansiRe.ReplaceAllString(line, ""), "\r")
		if strings.TrimSpace(line) == "" {
			flush()
			continue
		}
		if line[0] == ' ' || line[0] == '\t' {
			if cur != nil && !underlineRe.MatchString(line) {
				cur.Message += "\n" + line
			}
			continue
		}
		d, ok := p.parseLine(line)
		flush()
		if !ok {
			continue
		}
		cur = &d
	}
	flush()
	return out
}

func (p *Parser) parseLine(line string) (diag.Diagnostic, bool) {
	for _, re := range p.patterns {
		m := re.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		d := diag.Diagnostic{}
		for i, name := range re.SubexpNames() {
			switch name {
			case "path":
				d.Path = strings.TrimSpace(m[i])
			case "line":
				n, ok := parsePos(m[i])
				if !ok {
					return diag.Diagnostic{}, false
				}
				d.Line = n
			case "col":
				n, ok := parsePos(m[i])
				if !ok {
					return diag.Diagnostic{}, false
				}
				d.Column = n
			case "sev":
				d.Severity = diag.ParseSeverity(m[i])
			case "code":
				d.Code = m[i]
			case "msg":
				d.Message = strings.TrimSpace(m[i])
			}
		}
		return d, true
	}
	return diag.Diagnostic{}, false
}

func parsePos(s string) (uint32, bool) {
	if s == "" {
		return 0, true
	}
	n, err := strconv.ParseUint(s, 10, 32)
	if err != nil {
		return 0, false
	}
	return uint32(n), true
}
