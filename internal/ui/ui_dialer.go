package ui

import (
	"unicode/utf8"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"
	"github.com/tartampluch/go-dialer/internal/config"
	"github.com/tartampluch/go-dialer/internal/engine"
)

// suggestionList shows the dialer matches with the matched part of the
// name and number emphasized.
type suggestionList struct {
	items []engine.Contact
	query string
	list  *widget.List
}

func (app *DialerApp) newSuggestionList() *suggestionList {
	sl := &suggestionList{}
	sl.list = widget.NewList(
		func() int { return len(sl.items) },
		func() fyne.CanvasObject {
			return container.NewVBox(widget.NewRichText(), widget.NewRichText())
		},
		func(id widget.ListItemID, o fyne.CanvasObject) {
			if id >= len(sl.items) {
				return
			}
			c := sl.items[id]
			h := engine.HighlightSpans(c, sl.query)

			box := o.(*fyne.Container)
			name := box.Objects[0].(*widget.RichText)
			phone := box.Objects[1].(*widget.RichText)
			name.Segments = highlightSegments(c.Name, h.Name)
			phone.Segments = highlightSegments(c.PhoneNumber, h.Phone)
			name.Refresh()
			phone.Refresh()
		},
	)
	sl.list.OnSelected = func(id widget.ListItemID) {
		sl.list.Unselect(id)
		if id < len(sl.items) {
			app.placeCall(sl.items[id])
		}
	}
	return sl
}

func (sl *suggestionList) set(contacts []engine.Contact, query string) {
	sl.items = contacts
	sl.query = query
	sl.list.Refresh()
}

// highlightSegments splits text around span, a rune range, rendering the
// span in bold. A nil or out-of-range span yields plain text.
func highlightSegments(text string, span *engine.Span) []widget.RichTextSegment {
	runes := []rune(text)
	if span == nil || span.Start < 0 || span.End > len(runes) || span.Start >= span.End {
		return []widget.RichTextSegment{plain(text)}
	}

	var segs []widget.RichTextSegment
	if span.Start > 0 {
		segs = append(segs, plain(string(runes[:span.Start])))
	}
	segs = append(segs, &widget.TextSegment{
		Text:  string(runes[span.Start:span.End]),
		Style: widget.RichTextStyleStrong,
	})
	if span.End < len(runes) {
		segs = append(segs, plain(string(runes[span.End:])))
	}
	return segs
}

func plain(text string) *widget.TextSegment {
	return &widget.TextSegment{Text: text, Style: widget.RichTextStyleInline}
}

// backspace drops the last rune of s.
func backspace(s string) string {
	_, size := utf8.DecodeLastRuneInString(s)
	return s[:len(s)-size]
}

// buildDialerTab lays out the number display, the suggestions and the keypad.
func (app *DialerApp) buildDialerTab() fyne.CanvasObject {
	app.dialEntry = NewDialEntry()
	app.dialEntry.SetPlaceHolder(app.GetMsg(config.TKeyPhDialer))
	app.dialEntry.TextStyle = fyne.TextStyle{Bold: true}
	app.dialEntry.OnChanged = app.Engine.SetDialerInput
	app.dialEntry.OnSubmitted = app.dialNumber

	app.suggestions = app.newSuggestionList()
	app.suggestions.set(app.Engine.Suggestions.Snapshot(), app.Engine.Suggestions.Query())
	app.Engine.Suggestions.AddListener(func(contacts []engine.Contact) {
		digits := app.Engine.Suggestions.Query()
		fyne.Do(func() { app.suggestions.set(contacts, digits) })
	})

	keys := make([]fyne.CanvasObject, 0, len(config.KeypadKeys))
	for _, key := range config.KeypadKeys {
		keys = append(keys, widget.NewButton(key, func() { app.pressKey(key) }))
	}
	keypad := container.NewGridWithColumns(config.KeypadColumns, keys...)

	erase := widget.NewButtonWithIcon("", theme.ContentUndoIcon(), func() {
		if app.dialEntry.Text != "" {
			app.setDialText(backspace(app.dialEntry.Text))
		}
	})
	call := widget.NewButtonWithIcon(app.GetMsg(config.TKeyBtnCall), theme.MailSendIcon(), func() {
		app.dialNumber(app.dialEntry.Text)
	})
	call.Importance = widget.HighImportance

	display := container.NewBorder(nil, nil, nil, erase, app.dialEntry)
	bottom := container.NewVBox(keypad, call)
	return container.NewBorder(display, bottom, nil, nil, app.suggestions.list)
}

// pressKey appends a keypad key to the dialer input.
func (app *DialerApp) pressKey(key string) {
	app.setDialText(app.dialEntry.Text + key)
}

// setDialText updates the display and the engine; SetDialerInput ignores
// the duplicate coming from OnChanged.
func (app *DialerApp) setDialText(text string) {
	app.dialEntry.SetText(text)
	app.Engine.SetDialerInput(text)
}
