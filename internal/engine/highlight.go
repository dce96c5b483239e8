package engine

import (
	"strings"
	"unicode/utf8"
)

// Span is a half-open [Start, End) range in rune (character) coordinates.
type Span struct {
	Start int
	End   int
}

// Highlight holds the emphasis ranges for one matched contact.
// A nil field means the field has nothing to highlight.
type Highlight struct {
	Name  *Span
	Phone *Span
}

// HighlightSpans computes the spans of c that matched query, a dialer input.
// The phone span is a verbatim substring match; the name span is found in
// T9 space and mapped back onto the original name.
func HighlightSpans(c Contact, query string) Highlight {
	return Highlight{
		Name:  nameSpan(c.Name, query),
		Phone: phoneSpan(c.PhoneNumber, query),
	}
}

func phoneSpan(phone, query string) *Span {
	if query == "" {
		return nil
	}
	i := strings.Index(phone, query)
	if i < 0 {
		return nil
	}
	start := utf8.RuneCountInString(phone[:i])
	return &Span{Start: start, End: start + utf8.RuneCountInString(query)}
}

// nameSpan aligns a match in Encode(name) back onto name. The span may
// cover non-letters (spaces, apostrophes) lying between matched letters.
func nameSpan(name, digits string) *Span {
	if digits == "" {
		return nil
	}
	matchIndex := strings.Index(Encode(name), digits)
	if matchIndex < 0 {
		return nil
	}
	last := matchIndex + len(digits) - 1

	nameStart, nameEnd := -1, -1
	t9Pos := 0
	i := 0
	for _, r := range name {
		if _, ok := t9Digit(r); ok {
			if t9Pos == matchIndex {
				nameStart = i
			}
			if t9Pos == last {
				nameEnd = i + 1
				break
			}
			t9Pos++
		}
		i++
	}

	if nameStart < 0 || nameEnd <= nameStart {
		return nil
	}
	return &Span{Start: nameStart, End: nameEnd}
}
