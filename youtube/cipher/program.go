package cipher

import (
	"crypto/sha1"
	"encoding/hex"
)

// OpKind identifies one of the primitive signature transforms.
type OpKind int

const (
	// OpUnknown marks a helper that could not be classified.
	OpUnknown OpKind = iota
	// OpSwap exchanges the first character with the one at index Arg mod length.
	OpSwap
	// OpSpliceFront drops the first Arg characters, clamped to the length.
	OpSpliceFront
	// OpReverse reverses the whole remaining sequence.
	OpReverse
)

func (k OpKind) String() string {
	switch k {
	case OpSwap:
		return "swap"
	case OpSpliceFront:
		return "splice"
	case OpReverse:
		return "reverse"
	default:
		return "unknown"
	}
}

// Op is a single step of an extracted transform program.
type Op struct {
	Kind OpKind
	Arg  int
}

// Program is an ordered sequence of transform steps. The zero value is an
// empty program whose Apply is the identity.
type Program struct {
	Ops []Op
}

// Ref is a stable key for one player-script revision. All streams on a watch
// page share the same script and therefore the same program.
type Ref string

// RefOf derives the cache key for a player script.
func RefOf(script string) Ref {
	h := sha1.Sum([]byte(script))
	return Ref(hex.EncodeToString(h[:]))
}

// Apply runs the program over a signature string and returns the result. It is
// pure and total: index arguments wrap, splice counts clamp, and no input
// causes a panic. Argument bounds are checked here rather than at extraction
// time because a program is only valid relative to a given signature length.
func (p Program) Apply(signature string) string {
	r := []rune(signature)
	for _, op := range p.Ops {
		switch op.Kind {
		case OpSwap:
			r = swapRunes(r, op.Arg)
		case OpSpliceFront:
			r = spliceRunes(r, op.Arg)
		case OpReverse:
			r = reverseRunes(r)
		}
	}
	return string(r)
}

func reverseRunes(s []rune) []rune {
	for i, j := 0, len(s)-1; i < j; i, j = i+1, j-1 {
		s[i], s[j] = s[j], s[i]
	}
	return s
}

func spliceRunes(s []rune, n int) []rune {
	if n < 0 {
		return s
	}
	if n > len(s) {
		n = len(s)
	}
	return s[n:]
}

func swapRunes(s []rune, n int) []rune {
	if len(s) <= 1 {
		return s
	}
	n = n % len(s)
	if n < 0 {
		n += len(s)
	}
	s[0], s[n] = s[n], s[0]
	return s
}
