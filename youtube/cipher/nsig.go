package cipher

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/dop251/goja"
)

// The throttle-defeat transform is a different beast from the signature
// cipher: a single huge function with an inline op table, not expressible as a
// Program. Its name is located by its call site next to the "n" query lookup,
// its source is cut out by brace matching and executed in goja.

var nsigNameRes = []*regexp.Regexp{
	regexp.MustCompile(`\.get\("n"\)\)&&\(b=([a-zA-Z0-9$_]+)(?:\[(\d+)\])?\(b\)`),
	regexp.MustCompile(`\.get\("n"\)\)&&\(b=([a-zA-Z0-9$_]+)(?:\[(\d+)\])?\([a-zA-Z0-9$_]\)`),
	regexp.MustCompile(`&&\(b="n+"\[[a-zA-Z0-9.+$_]+\],c=a\.get\(b\)\)&&\(c=([a-zA-Z0-9$_]+)(?:\[(\d+)\])?\([a-zA-Z0-9$_]\)`),
}

type nsigFunc struct {
	name string
	prog *goja.Program
}

// Apply decodes one n value. A fresh runtime is used per call; goja runtimes
// are not safe for concurrent use and the function is cheap relative to the
// network round trips around it.
func (f *nsigFunc) Apply(nval string) (string, error) {
	vm := goja.New()
	v, err := vm.RunProgram(f.prog)
	if err != nil {
		return "", NewError(ErrCodeThrottleDecode, "throttle decoder did not evaluate: "+err.Error())
	}
	fn, ok := goja.AssertFunction(v)
	if !ok {
		return "", NewError(ErrCodeThrottleDecode, "throttle decoder is not a function")
	}
	out, err := fn(goja.Undefined(), vm.ToValue(nval))
	if err != nil {
		return "", NewError(ErrCodeThrottleDecode, "throttle decoder call failed: "+err.Error())
	}
	res := out.String()
	// The decoder signals its own failure by returning an enhanced_except
	// marker instead of throwing.
	if strings.Contains(res, "enhanced_except") || res == nval {
		return "", NewError(ErrCodeThrottleDecode, "throttle decoder returned an error marker")
	}
	return res, nil
}

func extractNsigFunc(script string) (*nsigFunc, error) {
	name, err := findNsigName(script)
	if err != nil {
		return nil, err
	}
	src, err := cutFunctionSource(script, name)
	if err != nil {
		return nil, err
	}
	prog, err := goja.Compile("nsig.js", "("+src+")", true)
	if err != nil {
		return nil, NewError(ErrCodeThrottleDecode, "throttle decoder did not compile: "+err.Error())
	}
	return &nsigFunc{name: name, prog: prog}, nil
}

func findNsigName(script string) (string, error) {
	for _, re := range nsigNameRes {
		m := re.FindStringSubmatch(script)
		if len(m) == 0 {
			continue
		}
		name := m[1]
		if len(m) > 2 && m[2] != "" {
			// Indirection through an array: var Wka=[realName];
			idx, err := strconv.Atoi(m[2])
			if err != nil {
				continue
			}
			arrRe := regexp.MustCompile(`(?:var\s+)?` + regexp.QuoteMeta(name) + `\s*=\s*\[([^\]]+)\]`)
			am := arrRe.FindStringSubmatch(script)
			if len(am) < 2 {
				continue
			}
			parts := strings.Split(am[1], ",")
			if idx < 0 || idx >= len(parts) {
				continue
			}
			name = strings.TrimSpace(parts[idx])
		}
		return name, nil
	}
	return "", NewError(ErrCodeThrottleDecode, "throttle decoder name not found")
}

// cutFunctionSource returns the function expression assigned to name, found by
// brace matching from "name=function(...){".
func cutFunctionSource(script, name string) (string, error) {
	declRe := regexp.MustCompile(regexp.QuoteMeta(name) + `\s*=\s*(function\s*\([^)]*\)\s*\{)`)
	loc := declRe.FindStringSubmatchIndex(script)
	if loc == nil {
		return "", NewError(ErrCodeThrottleDecode, fmt.Sprintf("definition of %q not found", name))
	}
	start := loc[2]
	open := loc[3] - 1 // index of the opening brace
	end, err := matchBrace(script, open)
	if err != nil {
		return "", err
	}
	return script[start : end+1], nil
}

// matchBrace scans forward from the opening brace at start and returns the
// index of its matching closing brace, skipping string literals.
func matchBrace(s string, start int) (int, error) {
	depth := 0
	for i := start; i < len(s); i++ {
		switch c := s[i]; c {
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return i, nil
			}
		case '"', '\'', '`':
			j, ok := skipString(s, i, c)
			if !ok {
				return 0, NewError(ErrCodeThrottleDecode, "unterminated string literal in script")
			}
			i = j
		}
	}
	return 0, NewError(ErrCodeThrottleDecode, "unbalanced braces in script")
}

func skipString(s string, start int, quote byte) (int, bool) {
	for i := start + 1; i < len(s); i++ {
		switch s[i] {
		case '\\':
			i++
		case quote:
			return i, true
		}
	}
	return 0, false
}
