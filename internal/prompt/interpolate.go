// Package prompt implements template interpolation and model-output parsing
// for the AI dispatch pipeline.
package prompt

import "regexp"

// placeholderPattern matches {{identifier}} with optional inner whitespace.
// Identifiers are letters, digits and underscores; anything else is left as
// literal text.
var placeholderPattern = regexp.MustCompile(`\{\{\s*([a-zA-Z0-9_]+)\s*\}\}`)

// Interpolate replaces every well-formed {{key}} placeholder in template with
// the corresponding value from vars, or the empty string when the key is
// absent. All other text is passed through byte-identical.
func Interpolate(template string, vars map[string]string) string {
	return placeholderPattern.ReplaceAllStringFunc(template, func(match string) string {
		key := placeholderPattern.FindStringSubmatch(match)[1]
		return vars[key]
	})
}
