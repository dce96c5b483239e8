package ui

import (
	"strings"

	"fyne.io/fyne/v2/driver/mobile"
	"fyne.io/fyne/v2/widget"
	"github.com/tartampluch/go-dialer/internal/config"
)

// NumericalEntry is an Entry that only accepts digits, plus an optional set
// of extra runes. It embeds widget.Entry to inherit all standard behavior.
type NumericalEntry struct {
	widget.Entry

	extra string
}

// NewNumericalEntry creates an entry accepting digits only (ports, limits).
func NewNumericalEntry() *NumericalEntry {
	entry := &NumericalEntry{}
	entry.ExtendBaseWidget(entry)
	return entry
}

// NewDialEntry creates the dialer display: digits plus "*", "#" and "+".
func NewDialEntry() *NumericalEntry {
	entry := &NumericalEntry{extra: config.DialerExtraRunes}
	entry.ExtendBaseWidget(entry)
	return entry
}

// TypedRune drops every rune that is neither a digit nor an allowed extra.
// Pasted text bypasses this filter; validators handle that case.
func (e *NumericalEntry) TypedRune(r rune) {
	if (r >= '0' && r <= '9') || (e.extra != "" && strings.ContainsRune(e.extra, r)) {
		e.Entry.TypedRune(r)
	}
}

// Keyboard requests a numeric keypad on mobile devices.
func (e *NumericalEntry) Keyboard() mobile.KeyboardType {
	return mobile.NumberKeyboard
}
