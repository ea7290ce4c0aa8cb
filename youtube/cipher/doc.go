// Package cipher recovers the signature-transform program embedded in the
// platform's obfuscated player script and executes it against scrambled
// signature values.
//
// The primary path parses the script structurally into a small Program of
// primitive operations (swap, splice-front, reverse) which is cached per
// script revision and interpreted natively. When the script shape drifts past
// what the structural parser understands, the package falls back to running
// the script in a JavaScript VM. The throttle-defeat (n) parameter is decoded
// by extracting its transform function and executing it in goja; it is far too
// irregular for the structural parser.
package cipher
