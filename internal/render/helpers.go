// Package render produces Graphviz DOT text for per-function CFGs.
package render

import "strings"

// dotQuote returns s as a DOT double-quoted string.
func dotQuote(s string) string {
	var b strings.Builder
	b.Grow(len(s) + 2)
	b.WriteByte('"')
	for i := 0; i < len(s); i++ {
		switch c := s[i]; c {
		case '"', '\\':
			b.WriteByte('\\')
			b.WriteByte(c)
		case '\n':
			b.WriteString(`\n`)
		default:
			b.WriteByte(c)
		}
	}
	b.WriteByte('"')
	return b.String()
}

// recordEscaper escapes characters that are structural inside a record label.
var recordEscaper = strings.NewReplacer(
	`\`, `\\`,
	`"`, `\"`,
	`{`, `\{`,
	`}`, `\}`,
	`|`, `\|`,
	`<`, `\<`,
	`>`, `\>`,
	"\n", ` `,
)

// recordEscape escapes one instruction line for a record label field.
func recordEscape(s string) string {
	return recordEscaper.Replace(s)
}

// headerEscape escapes a function name for the digraph title.
func headerEscape(s string) string {
	q := dotQuote(s)
	return q[1 : len(q)-1]
}
