package ipp

import (
	"strings"

	"github.com/pkg/errors"
)

// parseCollection splits an IPP collection value's flattened string form
// - "key=value,key=value,..." with optional '"'/'\'' quoting and '\'
// escapes, and nested "{...}" groups passed through untouched as a single
// value - into a field map. This generalizes the comma/colon "key:value"
// scanner pdfcpu's ParseNUpDetails (pkg/pdfcpu/nup.go) uses for its own
// -nup detail string, swapping ':' for '=' and adding quote/brace
// awareness IPP's wire format needs that pdfcpu's simpler grammar doesn't.
func parseCollection(s string) (map[string]string, error) {
	fields := map[string]string{}
	i := 0
	n := len(s)
	for i < n {
		for i < n && (s[i] == ',' || s[i] == ' ') {
			i++
		}
		if i >= n {
			break
		}
		keyStart := i
		for i < n && s[i] != '=' {
			i++
		}
		if i >= n {
			return nil, errors.Errorf("ipp: collection field %q missing '='", s[keyStart:])
		}
		key := strings.TrimSpace(s[keyStart:i])
		i++ // '='
		val, newI, err := scanCollectionValue(s, i)
		if err != nil {
			return nil, err
		}
		i = newI
		fields[key] = val
	}
	return fields, nil
}

func scanCollectionValue(s string, i int) (string, int, error) {
	n := len(s)
	if i >= n {
		return "", i, nil
	}
	switch s[i] {
	case '\'', '"':
		quote := s[i]
		i++
		var b strings.Builder
		for i < n && s[i] != quote {
			if s[i] == '\\' && i+1 < n {
				i++
			}
			b.WriteByte(s[i])
			i++
		}
		if i >= n {
			return "", i, errors.New("ipp: unterminated quoted collection value")
		}
		return b.String(), i + 1, nil
	case '{':
		depth := 0
		start := i
		for i < n {
			switch s[i] {
			case '{':
				depth++
			case '}':
				depth--
				if depth == 0 {
					i++
					return s[start:i], i, nil
				}
			}
			i++
		}
		return "", i, errors.New("ipp: unterminated nested collection value")
	default:
		start := i
		for i < n && s[i] != ',' {
			i++
		}
		return strings.TrimSpace(s[start:i]), i, nil
	}
}
