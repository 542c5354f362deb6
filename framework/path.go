package framework

import (
	"fmt"
	"strconv"
	"strings"

	"gopkg.in/launchdarkly/go-sdk-common.v2/ldvalue"
)

// Lookup finds a value in a parsed JSON document.
//
// Paths use dot notation with optional array indexes and an optional leading "$": "id",
// "data.email", "$.data[0].id". The path "$" (or "") is the document itself. The second
// return value is false if any segment does not exist.
func Lookup(doc ldvalue.Value, path string) (ldvalue.Value, bool, error) {
	segments, err := parsePath(path)
	if err != nil {
		return ldvalue.Null(), false, err
	}
	current := doc
	for _, seg := range segments {
		if seg.field != "" {
			if current.Type() != ldvalue.ObjectType || !hasKey(current, seg.field) {
				return ldvalue.Null(), false, nil
			}
			current = current.GetByKey(seg.field)
		}
		for _, idx := range seg.indexes {
			if current.Type() != ldvalue.ArrayType || idx < 0 || idx >= current.Count() {
				return ldvalue.Null(), false, nil
			}
			current = current.GetByIndex(idx)
		}
	}
	return current, true, nil
}

type pathSegment struct {
	field   string
	indexes []int
}

func parsePath(path string) ([]pathSegment, error) {
	rest := strings.TrimSpace(path)
	rest = strings.TrimPrefix(rest, "$")
	rest = strings.TrimPrefix(rest, ".")
	if rest == "" {
		return nil, nil
	}

	var segments []pathSegment
	for _, part := range strings.Split(rest, ".") {
		if part == "" {
			return nil, fmt.Errorf("invalid path %q: empty segment", path)
		}
		var seg pathSegment
		if idx := strings.Index(part, "["); idx >= 0 {
			seg.field = part[:idx]
			brackets := part[idx:]
			for brackets != "" {
				if !strings.HasPrefix(brackets, "[") {
					return nil, fmt.Errorf("invalid path %q: unexpected %q", path, brackets)
				}
				end := strings.Index(brackets, "]")
				if end < 0 {
					return nil, fmt.Errorf("invalid path %q: unterminated index", path)
				}
				n, err := strconv.Atoi(brackets[1:end])
				if err != nil {
					return nil, fmt.Errorf("invalid path %q: bad array index: %w", path, err)
				}
				seg.indexes = append(seg.indexes, n)
				brackets = brackets[end+1:]
			}
		} else {
			seg.field = part
		}
		segments = append(segments, seg)
	}
	return segments, nil
}

func hasKey(obj ldvalue.Value, key string) bool {
	for _, k := range obj.Keys() {
		if k == key {
			return true
		}
	}
	return false
}

// paramString renders a value for use in a URL path or query string. Strings are used as-is,
// anything else in its JSON form (so the number 7 becomes "7").
func paramString(v ldvalue.Value) string {
	if v.Type() == ldvalue.StringType {
		return v.StringValue()
	}
	return v.JSONString()
}
