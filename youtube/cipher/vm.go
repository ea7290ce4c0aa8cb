package cipher

import (
	"regexp"

	"github.com/robertkrimen/otto"
)

// otto chokes on regex features the player script uses but never exercises on
// the cipher path. Lookarounds and atomic groups are stripped, named captures
// are rewritten to plain groups.
var (
	namedGroupRe = regexp.MustCompile(`\(\?<[a-zA-Z_][a-zA-Z0-9_]*>`)
	lookaroundRe = regexp.MustCompile(`\(\?(?:=|!|<=|<!|>)[^)]*\)`)
)

func sanitizePlayerJS(script string) string {
	script = namedGroupRe.ReplaceAllString(script, "(")
	script = lookaroundRe.ReplaceAllString(script, "(")
	return script
}

// vmDecipher runs the whole sanitized script in a JS VM and calls the entry
// function by name. Last resort for script shapes the structural extractor
// does not understand; an anonymous entry function cannot be called this way.
func vmDecipher(script, fnName, signature string) (string, error) {
	if fnName == "" {
		return "", NewError(ErrCodeVMFailed, "entry function has no callable name")
	}
	vm := otto.New()
	if _, err := vm.Run(sanitizePlayerJS(script)); err != nil {
		return "", NewError(ErrCodeVMFailed, "player script did not evaluate: "+err.Error())
	}
	value, err := vm.Call(fnName, nil, signature)
	if err != nil {
		return "", NewError(ErrCodeVMFailed, "call to "+fnName+" failed: "+err.Error())
	}
	result, err := value.ToString()
	if err != nil {
		return "", NewError(ErrCodeVMFailed, fnName+" did not return a string: "+err.Error())
	}
	return result, nil
}
