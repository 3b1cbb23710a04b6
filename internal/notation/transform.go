// Package notation rewrites math delimiters from the portable authoring
// dialect (single-dollar inline, double-dollar block) to the target LMS
// dialect. The rewrite is one-way: it runs once at export time and is not a
// general normalizer.
package notation

import (
	"fmt"
	"strings"
)

const (
	inlineOpen  = `\(`
	inlineClose = `\)`
)

// DelimiterError reports an unmatched math delimiter. The offset is the byte
// position of the delimiter that never closed.
type DelimiterError struct {
	Offset int
}

func (e *DelimiterError) Error() string {
	return fmt.Sprintf("unmatched math delimiter at offset %d", e.Offset)
}

// Transform rewrites inline math spans ($...$) to the target's \(...\) pair
// and passes block spans ($$...$$) through unchanged. The scanner walks left
// to right; at an opening position a doubled delimiter is matched as a block
// before a single delimiter is considered, so the first half of a block
// opener is never read as two inline delimiters. Escaped dollars (\$) are
// literals. Text with no delimiters comes back byte-identical. An unmatched
// delimiter is an error, never silently repaired.
func Transform(text string) (string, error) {
	var b strings.Builder
	b.Grow(len(text))

	i := 0
	for i < len(text) {
		c := text[i]

		// Escaped dollar: author means a literal symbol.
		if c == '\\' && i+1 < len(text) && text[i+1] == '$' {
			b.WriteString(text[i : i+2])
			i += 2
			continue
		}

		if c != '$' {
			b.WriteByte(c)
			i++
			continue
		}

		// Block span: copy verbatim, delimiters included.
		if i+1 < len(text) && text[i+1] == '$' {
			end := findDollarPair(text, i+2)
			if end < 0 {
				return "", &DelimiterError{Offset: i}
			}
			b.WriteString(text[i : end+2])
			i = end + 2
			continue
		}

		// Inline span: rewrite delimiters, keep content as-is.
		end := findDollar(text, i+1)
		if end < 0 {
			return "", &DelimiterError{Offset: i}
		}
		b.WriteString(inlineOpen)
		b.WriteString(text[i+1 : end])
		b.WriteString(inlineClose)
		i = end + 1
	}

	return b.String(), nil
}

// CheckBalance reports whether every math span in text closes. It runs the
// same scan as Transform and is what the question validator uses for
// per-field delimiter checks.
func CheckBalance(text string) error {
	_, err := Transform(text)
	return err
}

// ContainsTarget reports whether text already uses the target dialect's
// inline delimiters. That is an upstream authoring error: the transform is a
// single export step and must not run over its own output.
func ContainsTarget(text string) bool {
	return strings.Contains(text, inlineOpen) || strings.Contains(text, inlineClose)
}

// findDollar returns the index of the next unescaped '$' at or after from,
// or -1 if none remains.
func findDollar(text string, from int) int {
	for i := from; i < len(text); i++ {
		if text[i] == '\\' && i+1 < len(text) && text[i+1] == '$' {
			i++
			continue
		}
		if text[i] == '$' {
			return i
		}
	}
	return -1
}

// findDollarPair returns the index of the next unescaped "$$" at or after
// from, or -1 if none remains.
func findDollarPair(text string, from int) int {
	for i := from; i+1 < len(text); i++ {
		if text[i] == '\\' && text[i+1] == '$' {
			i++
			continue
		}
		if text[i] == '$' && text[i+1] == '$' {
			return i
		}
	}
	return -1
}
