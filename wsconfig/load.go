package wsconfig

import (
	"encoding/json"
	"os"

	"github.com/pkg/errors"
)

// Load reads and parses a config file from path, tolerating "//" and
// "/* */" comments and trailing commas before handing the cleaned
// bytes to encoding/json.
func Load(path string) (*Document, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "wsconfig: read %q", path)
	}
	cleaned := stripCommentsAndTrailingCommas(raw)

	var doc Document
	if err := json.Unmarshal(cleaned, &doc); err != nil {
		return nil, errors.Wrapf(err, "wsconfig: parse %q", path)
	}
	return &doc, nil
}

// stripCommentsAndTrailingCommas removes // and /* */ comments
// outside of string literals, and commas immediately followed
// (ignoring whitespace) by a closing ] or }.
func stripCommentsAndTrailingCommas(src []byte) []byte {
	var out []byte
	inString := false
	escaped := false

	for i := 0; i < len(src); i++ {
		c := src[i]

		if inString {
			out = append(out, c)
			if escaped {
				escaped = false
			} else if c == '\\' {
				escaped = true
			} else if c == '"' {
				inString = false
			}
			continue
		}

		switch {
		case c == '"':
			inString = true
			out = append(out, c)
		case c == '/' && i+1 < len(src) && src[i+1] == '/':
			for i < len(src) && src[i] != '\n' {
				i++
			}
			if i < len(src) {
				out = append(out, '\n')
			}
		case c == '/' && i+1 < len(src) && src[i+1] == '*':
			i += 2
			for i+1 < len(src) && !(src[i] == '*' && src[i+1] == '/') {
				i++
			}
			i++ // lands on the closing '/'
		default:
			out = append(out, c)
		}
	}

	return dropTrailingCommas(out)
}

func dropTrailingCommas(src []byte) []byte {
	out := make([]byte, 0, len(src))
	for i := 0; i < len(src); i++ {
		c := src[i]
		if c != ',' {
			out = append(out, c)
			continue
		}
		j := i + 1
		for j < len(src) && isJSONSpace(src[j]) {
			j++
		}
		if j < len(src) && (src[j] == ']' || src[j] == '}') {
			continue // drop the comma
		}
		out = append(out, c)
	}
	return out
}

func isJSONSpace(c byte) bool {
	switch c {
	case ' ', '\t', '\r', '\n':
		return true
	}
	return false
}
