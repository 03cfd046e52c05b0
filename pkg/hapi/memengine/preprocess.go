package memengine

import (
	"fmt"
	"strings"

	zygo "github.com/glycerine/zygomys/zygo"
)

// kwPrefix marks preprocessed :keyword tokens in the rewritten source.
const kwPrefix = "__kw_"

// preprocessSource rewrites asset script source before evaluation:
//
//  1. :keyword tokens become "__kw_keyword" string literals, so builtins can
//     recognise them without registering keyword symbols as globals.
//  2. ; line comments become // comments, which is what zygomys parses.
//  3. Hyphens inside identifiers become underscores; zygomys would read
//     parm-float as a subtraction.
//
// String literal boundaries and comments are respected throughout.
func preprocessSource(source string) string {
	out := make([]byte, 0, len(source)+len(source)/4)
	src := []byte(source)
	i := 0
	for i < len(src) {
		switch {
		case src[i] == '"':
			out = append(out, src[i])
			i++
			for i < len(src) && src[i] != '"' {
				if src[i] == '\\' && i+1 < len(src) {
					out = append(out, src[i], src[i+1])
					i += 2
					continue
				}
				out = append(out, src[i])
				i++
			}
			if i < len(src) {
				out = append(out, src[i])
				i++
			}

		case src[i] == ';':
			out = append(out, '/', '/')
			for i < len(src) && src[i] == ';' {
				i++
			}
			for i < len(src) && src[i] != '\n' {
				out = append(out, src[i])
				i++
			}

		case src[i] == ':' && i+1 < len(src) && isScriptLetter(src[i+1]):
			j := i + 1
			for j < len(src) && isScriptKWChar(src[j]) {
				j++
			}
			out = append(out, '"')
			out = append(out, kwPrefix...)
			out = append(out, src[i+1:j]...)
			out = append(out, '"')
			i = j

		case src[i] == '-' && i > 0 && i+1 < len(src) &&
			isScriptIdentChar(src[i-1]) && isScriptLetter(src[i+1]):
			out = append(out, '_')
			i++

		default:
			out = append(out, src[i])
			i++
		}
	}
	return string(out)
}

func isScriptLetter(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isScriptKWChar(c byte) bool {
	return isScriptLetter(c) || (c >= '0' && c <= '9') || c == '-' || c == '_'
}

func isScriptIdentChar(c byte) bool {
	return isScriptLetter(c) || (c >= '0' && c <= '9') || c == '_'
}

// kwArgs is a builtin argument list split into keyword and positional parts.
type kwArgs struct {
	kw         map[string]zygo.Sexp
	positional []zygo.Sexp
}

// parseArgs splits an argument list on preprocessed keyword markers. A
// trailing keyword with no value is kept as a nil-valued flag.
func parseArgs(args []zygo.Sexp) kwArgs {
	pa := kwArgs{kw: make(map[string]zygo.Sexp)}
	for i := 0; i < len(args); {
		name, ok := keywordName(args[i])
		if !ok {
			pa.positional = append(pa.positional, args[i])
			i++
			continue
		}
		if i+1 < len(args) {
			pa.kw[name] = args[i+1]
			i += 2
		} else {
			pa.kw[name] = zygo.SexpNull
			i++
		}
	}
	return pa
}

// keywordName reports whether a Sexp is a preprocessed keyword and returns
// its name without the marker prefix.
func keywordName(s zygo.Sexp) (string, bool) {
	str, ok := s.(*zygo.SexpStr)
	if !ok || !strings.HasPrefix(str.S, kwPrefix) {
		return "", false
	}
	return str.S[len(kwPrefix):], true
}

func toFloat64(s zygo.Sexp) (float64, error) {
	switch v := s.(type) {
	case *zygo.SexpInt:
		return float64(v.Val), nil
	case *zygo.SexpFloat:
		return v.Val, nil
	}
	return 0, fmt.Errorf("expected number, got %T (%s)", s, s.SexpString(nil))
}

func toString(s zygo.Sexp) (string, error) {
	if str, ok := s.(*zygo.SexpStr); ok && !strings.HasPrefix(str.S, kwPrefix) {
		return str.S, nil
	}
	return "", fmt.Errorf("expected string, got %T (%s)", s, s.SexpString(nil))
}

// toKeywordString accepts either a preprocessed keyword (:float) or a plain
// string ("float").
func toKeywordString(s zygo.Sexp) (string, error) {
	str, ok := s.(*zygo.SexpStr)
	if !ok {
		return "", fmt.Errorf("expected keyword or string, got %T (%s)", s, s.SexpString(nil))
	}
	return strings.TrimPrefix(str.S, kwPrefix), nil
}

// sexpListToSlice converts a Lisp list or array to a Go slice.
func sexpListToSlice(s zygo.Sexp) ([]zygo.Sexp, error) {
	switch v := s.(type) {
	case *zygo.SexpPair:
		return zygo.ListToArray(v)
	case *zygo.SexpArray:
		return v.Val, nil
	case *zygo.SexpSentinel:
		if v == zygo.SexpNull {
			return nil, nil
		}
	}
	return nil, fmt.Errorf("expected list or array, got %T", s)
}
