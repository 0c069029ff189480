package resolve

import "unicode"

// boundaryRunes is the separator class a match must be flanked by.
var boundaryRunes = map[rune]bool{
	' ': true, '\t': true, '\n': true, '\r': true,
	'.': true, ',': true, '!': true, '?': true, ';': true, ':': true,
	'"': true, '\'': true,
	'(': true, ')': true, '[': true, ']': true, '{': true, '}': true, '<': true, '>': true,
	'\\': true, '/': true,
	'-': true, '—': true,
	'“': true, '”': true, '‘': true, '’': true, '«': true, '»': true,
}

// IsBoundary reports whether r separates words.
func IsBoundary(r rune) bool {
	return boundaryRunes[r] || unicode.IsSpace(r)
}

// Bounded reports whether text[start:end] is flanked by boundary runes or
// the text edges.
func Bounded(text []rune, start, end int) bool {
	if start > 0 && !IsBoundary(text[start-1]) {
		return false
	}
	if end < len(text) && !IsBoundary(text[end]) {
		return false
	}
	return true
}
