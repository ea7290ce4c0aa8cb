package cipher

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// The entry function is located by shape, not by name: the platform renames it
// every release, but its body is always a short sequence of calls into one
// helper object, bracketed by split("")/join("").
// Named forms come first: the bare function form also matches the tail of an
// assignment with an empty name, and a nameless entry cannot be used by the
// VM fallback.
var entryFnRes = []*regexp.Regexp{
	// NAME=function(a){...}
	regexp.MustCompile(`([a-zA-Z0-9$_]+)\s*=\s*function\s*\(\s*([a-zA-Z0-9$_]+)\s*\)\s*\{([^{}]*)\}`),
	// NAME:function(a){...}  (object member)
	regexp.MustCompile(`([a-zA-Z0-9$_]+)\s*:\s*function\s*\(\s*([a-zA-Z0-9$_]+)\s*\)\s*\{([^{}]*)\}`),
	// NAME=(a)=>{...}
	regexp.MustCompile(`([a-zA-Z0-9$_]+)\s*=\s*\(\s*([a-zA-Z0-9$_]+)\s*\)\s*=>\s*\{([^{}]*)\}`),
	// function NAME(a){...}, name optional
	regexp.MustCompile(`function\s*([a-zA-Z0-9$_]*)\s*\(\s*([a-zA-Z0-9$_]+)\s*\)\s*\{([^{}]*)\}`),
}

// entryFunc is the located cipher-entry function.
type entryFunc struct {
	name  string
	param string
	body  string
}

func findEntryFunc(script string) (entryFunc, error) {
	for _, re := range entryFnRes {
		for _, m := range re.FindAllStringSubmatch(script, -1) {
			name, param, body := m[1], m[2], m[3]
			if !strings.Contains(body, param+`.split("")`) {
				continue
			}
			if !strings.Contains(body, `return `+param+`.join("")`) {
				continue
			}
			return entryFunc{name: name, param: param, body: body}, nil
		}
	}
	return entryFunc{}, NewError(ErrCodeExtractionFailed, "cipher entry function not found")
}

// Helper-object sub-function bodies are classified by structure. The three
// shapes the platform has used for years:
//
//	reverse: function(a){a.reverse()}
//	splice:  function(a,b){a.splice(0,b)}
//	swap:    function(a,b){var c=a[0];a[0]=a[b%a.length];a[b%a.length]=c}
//
// Order matters: a swap body also mentions a.length, so the swap check runs
// before any looser match.
func classifyHelper(body string) OpKind {
	switch {
	case strings.Contains(body, "reverse()"):
		return OpReverse
	case strings.Contains(body, "a[0]=a[") && strings.Contains(body, "%a.length]"):
		return OpSwap
	case strings.Contains(body, ".splice("):
		return OpSpliceFront
	default:
		return OpUnknown
	}
}

var helperFnRe = regexp.MustCompile(`([a-zA-Z0-9$_]+)\s*:\s*function\s*\(a(?:\s*,\s*b)?\)\s*\{([^{}]*)\}`)

// helperTable maps the helper object's local names to op kinds.
func helperTable(script, objName string) (map[string]OpKind, error) {
	objRe := regexp.MustCompile(`(?s)(?:var|let|const)?\s*` + regexp.QuoteMeta(objName) + `\s*=\s*\{(.*?)\}\s*;`)
	m := objRe.FindStringSubmatch(script)
	if len(m) < 2 {
		return nil, NewError(ErrCodeExtractionFailed, fmt.Sprintf("helper object %q not found", objName))
	}
	table := make(map[string]OpKind)
	for _, fm := range helperFnRe.FindAllStringSubmatch(m[1], -1) {
		table[fm[1]] = classifyHelper(fm[2])
	}
	if len(table) == 0 {
		return nil, NewError(ErrCodeExtractionFailed, fmt.Sprintf("helper object %q has no recognizable members", objName))
	}
	return table, nil
}

// Extract reconstructs the transform program from the full player script.
// It fails with an ErrCodeExtractionFailed error when the entry function
// cannot be located or any referenced helper cannot be classified; a partial
// program is never returned. Extraction is pure and cacheable by RefOf.
func Extract(script string) (Program, error) {
	entry, err := findEntryFunc(script)
	if err != nil {
		return Program{}, err
	}

	// Helper object name from the first dispatch call in the body. Calls use
	// either dot or bracket-index dispatch.
	objRe := regexp.MustCompile(`([a-zA-Z0-9$_]+)(?:\.|\[")([a-zA-Z0-9$_]+)(?:"\])?\(` + regexp.QuoteMeta(entry.param) + `\s*(?:,\s*(\d+)\s*)?\)`)
	calls := objRe.FindAllStringSubmatch(entry.body, -1)
	if len(calls) == 0 {
		return Program{}, NewError(ErrCodeExtractionFailed, "no helper calls in entry function body")
	}

	table, err := helperTable(script, calls[0][1])
	if err != nil {
		return Program{}, err
	}

	ops := make([]Op, 0, len(calls))
	for _, c := range calls {
		obj, fn, rawArg := c[1], c[2], c[3]
		if obj != calls[0][1] {
			// split("")/join("") calls on the param itself do not match the
			// dispatch pattern, so a second object means an unknown shape.
			return Program{}, NewError(ErrCodeExtractionFailed, fmt.Sprintf("mixed helper objects %q and %q", calls[0][1], obj))
		}
		kind, ok := table[fn]
		if !ok || kind == OpUnknown {
			return Program{}, NewError(ErrCodeExtractionFailed, fmt.Sprintf("helper %s.%s could not be classified", obj, fn))
		}
		arg := 0
		if rawArg != "" {
			if v, err := strconv.Atoi(rawArg); err == nil {
				arg = v
			}
		}
		ops = append(ops, Op{Kind: kind, Arg: arg})
	}
	return Program{Ops: ops}, nil
}
