package cheat

import "github.com/frustra/bbcode"

var plainCompiler = bbcode.NewCompiler(false, false)

// PlainDescription strips any BBCode markup from a cheat or set
// description, for CLI and log output. Cheat databases exported from
// sites like gamehacking.org commonly embed BBCode ([b], [i], [url])
// in their descriptions.
func PlainDescription(description string) string {
	return plainCompiler.Compile(description)
}
