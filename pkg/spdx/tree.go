package spdx

import (
	"regexp"
	"strconv"
	"strings"
)

// tree is the generic decoded form shared by the JSON, YAML, XML and
// tag-value decoders: objects are maps, arrays are []any, scalars are
// strings, numbers or bool.
type tree = map[string]any

// number is a decoded JSON number that retains its literal text.
type number interface {
	String() string
	Int64() (int64, error)
	Float64() (float64, error)
}

// get returns the value of the first key present in t.
func get(t tree, keys ...string) any {
	if t == nil {
		return nil
	}
	for _, k := range keys {
		if v, ok := t[k]; ok && v != nil {
			return v
		}
	}
	return nil
}

// has reports whether any of keys is present in t.
func has(t tree, keys ...string) bool {
	return get(t, keys...) != nil
}

// strOf returns the first present key of t as a string.
func strOf(t tree, keys ...string) string {
	return str(get(t, keys...))
}

// str converts a scalar to its string form. Non-scalars yield "".
func str(v any) string {
	switch x := v.(type) {
	case string:
		return strings.TrimSpace(x)
	case number:
		return x.String()
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case int:
		return strconv.Itoa(x)
	case int64:
		return strconv.FormatInt(x, 10)
	case bool:
		return strconv.FormatBool(x)
	case tree:
		// XML leaves with attributes decode to maps carrying their text.
		return str(x[textKey])
	}
	return ""
}

// asList normalizes v to a slice. A single value is a one-element list,
// which covers XML and YAML documents that omit list markup for one item.
func asList(v any) []any {
	switch x := v.(type) {
	case nil:
		return nil
	case []any:
		return x
	default:
		return []any{x}
	}
}

// asTree returns v as a map, or nil.
func asTree(v any) tree {
	t, _ := v.(tree)
	return t
}

// asStrings converts v to a list of non-empty strings.
func asStrings(v any) []string {
	var out []string
	for _, item := range asList(v) {
		if s := str(item); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// asInt converts a numeric or numeric-string value. Anything else is 0.
func asInt(v any) int {
	switch x := v.(type) {
	case number:
		if n, err := x.Int64(); err == nil {
			return int(n)
		}
		f, _ := x.Float64()
		return int(f)
	case float64:
		return int(x)
	case int:
		return x
	case int64:
		return int(x)
	case string:
		n, _ := strconv.Atoi(strings.TrimSpace(x))
		return n
	case tree:
		return asInt(x[textKey])
	}
	return 0
}

// asBool converts a boolean, a "true"/"false" string or a 0/1 number.
// Absent or unparsable values yield nil.
func asBool(v any) *bool {
	var b bool
	switch x := v.(type) {
	case bool:
		b = x
	case string, tree, number:
		parsed, err := strconv.ParseBool(strings.ToLower(str(x)))
		if err != nil {
			return nil
		}
		b = parsed
	default:
		return nil
	}
	return &b
}

// naiveTimestamp matches ISO 8601 date-times without a zone designator.
var naiveTimestamp = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}T\d{2}:\d{2}:\d{2}(\.\d+)?$`)

// fixTimestamp appends the UTC designator to creation timestamps that
// omit a zone, which some SBOM generators emit.
func fixTimestamp(s string) string {
	if naiveTimestamp.MatchString(s) {
		return s + "Z"
	}
	return s
}

// idAllocator hands out synthetic identifiers for elements that lack one.
type idAllocator struct {
	taken map[string]bool
	next  map[string]int
}

func newIDAllocator(taken map[string]bool) *idAllocator {
	return &idAllocator{taken: taken, next: make(map[string]int)}
}

// id returns a fresh identifier for an element of the given kind name.
func (a *idAllocator) id(kind string) string {
	for {
		a.next[kind]++
		candidate := "SPDXRef-anonymous-" + kind + "-" + strconv.Itoa(a.next[kind])
		if !a.taken[candidate] {
			a.taken[candidate] = true
			return candidate
		}
	}
}

// camelToUpperSnake converts "dependsOn" to "DEPENDS_ON". Values without
// lower-case letters are returned unchanged.
func camelToUpperSnake(s string) string {
	if strings.ToUpper(s) == s {
		return s
	}
	var b strings.Builder
	var prev rune
	for i, r := range s {
		isUpper := r >= 'A' && r <= 'Z'
		prevLowerOrDigit := (prev >= 'a' && prev <= 'z') || (prev >= '0' && prev <= '9')
		if i > 0 && isUpper && prevLowerOrDigit {
			b.WriteByte('_')
		}
		b.WriteRune(r)
		prev = r
	}
	return strings.ToUpper(b.String())
}
