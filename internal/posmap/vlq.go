package posmap

import (
	"errors"
	"fmt"
)

var ErrBadMappings = errors.New("malformed source map mappings")

const base64Chars = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789+/"

var base64Values = func() [256]int8 {
	var t [256]int8
	for i := range t {
		t[i] = -1
	}
	for i := 0; i < len(base64Chars); i++ {
		t[base64Chars[i]] = int8(i)
	}
	return t
}()

// decodeVLQ reads one base64 VLQ value from s starting at i.
func decodeVLQ(s string, i int) (value, next int, err error) {
	shift := 0
	result := 0
	for {
		if i >= len(s) {
			return 0, i, fmt.Errorf("%w: truncated value", ErrBadMappings)
		}
		digit := base64Values[s[i]]
		if digit < 0 {
			return 0, i, fmt.Errorf("%w: invalid character %q", ErrBadMappings, s[i])
		}
		i++
		result += int(digit&0x1f) << shift
		if digit&0x20 == 0 {
			break
		}
		shift += 5
		if shift > 30 {
			return 0, i, fmt.Errorf("%w: value overflow", ErrBadMappings)
		}
	}
	if result&1 == 1 {
		return -(result >> 1), i, nil
	}
	return result >> 1, i, nil
}

// decodeMappings expands the "mappings" field. Source index, original line
// and original column are deltas across the whole map; the generated column
// resets on every line.
func decodeMappings(s string) ([]mapping, error) {
	var (
		out                     []mapping
		genLine, genCol         int
		source, srcLine, srcCol int
		fields                  [5]int
	)
	i := 0
	for i < len(s) {
		switch s[i] {
		case ';':
			genLine++
			genCol = 0
			i++
			continue
		case ',':
			i++
			continue
		}

		n := 0
		for i < len(s) && s[i] != ',' && s[i] != ';' {
			if n == len(fields) {
				return nil, fmt.Errorf("%w: segment with more than 5 fields", ErrBadMappings)
			}
			v, next, err := decodeVLQ(s, i)
			if err != nil {
				return nil, err
			}
			fields[n] = v
			n++
			i = next
		}

		genCol += fields[0]
		seg := mapping{genLine: genLine, genCol: genCol, source: -1}
		switch n {
		case 1:
		case 4, 5:
			source += fields[1]
			srcLine += fields[2]
			srcCol += fields[3]
			seg.source = source
			seg.srcLine = srcLine
			seg.srcCol = srcCol
			seg.hasSource = true
		default:
			return nil, fmt.Errorf("%w: segment with %d fields", ErrBadMappings, n)
		}
		if genCol < 0 || srcLine < 0 || srcCol < 0 {
			return nil, fmt.Errorf("%w: negative position", ErrBadMappings)
		}
		out = append(out, seg)
	}
	return out, nil
}
