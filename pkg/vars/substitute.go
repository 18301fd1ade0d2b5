package vars

import "regexp"

// refPattern matches ${NAME} where NAME is an identifier of letters,
// digits and underscore, not starting with a digit. Anything else,
// including ${} and ${9X}, is left untouched.
var refPattern = regexp.MustCompile(`\$\{([a-zA-Z_][a-zA-Z0-9_]*)\}`)

// Substitute replaces every ${NAME} reference in text with the stored
// value for NAME. Unset names substitute to the empty string; tutorials
// rely on that fallback, so it is a documented policy rather than an
// error. The text is scanned exactly once, so values containing further
// ${NAME} references are not expanded again.
func Substitute(text string, store *Store) string {
	return refPattern.ReplaceAllStringFunc(text, func(ref string) string {
		name := ref[2 : len(ref)-1]
		value, _ := store.Get(name)
		return value
	})
}
