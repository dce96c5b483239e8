package ui

import (
	"strings"
	"unicode"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"
	"github.com/tartampluch/go-dialer/internal/config"
	"github.com/tartampluch/go-dialer/internal/engine"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// contactList is a list widget over the latest emission of one feed.
// items is only touched on the UI goroutine.
type contactList struct {
	items []engine.Contact
	list  *widget.List
	empty *widget.Label
}

// newContactList builds a list whose rows show initials, name, number and
// the favorite and call actions. onSelect opens a contact, may be nil.
func (app *DialerApp) newContactList(onSelect func(engine.Contact)) *contactList {
	cl := &contactList{empty: widget.NewLabel(app.GetMsg(config.TKeyEmptyList))}
	cl.empty.Alignment = fyne.TextAlignCenter

	cl.list = widget.NewList(
		func() int { return len(cl.items) },
		func() fyne.CanvasObject { return newContactRow() },
		func(id widget.ListItemID, o fyne.CanvasObject) {
			if id >= len(cl.items) {
				return
			}
			c := cl.items[id]
			row := o.(*contactRow)
			row.update(c)
			row.favorite.OnTapped = func() { app.Engine.ToggleFavorite(c) }
			row.call.OnTapped = func() { app.placeCall(c) }
		},
	)
	cl.list.OnSelected = func(id widget.ListItemID) {
		cl.list.Unselect(id)
		if onSelect != nil && id < len(cl.items) {
			onSelect(cl.items[id])
		}
	}
	return cl
}

func (cl *contactList) set(contacts []engine.Contact) {
	cl.items = contacts
	if len(contacts) == 0 {
		cl.empty.Show()
	} else {
		cl.empty.Hide()
	}
	cl.list.Refresh()
}

func (cl *contactList) content() fyne.CanvasObject {
	return container.NewStack(cl.list, container.NewCenter(cl.empty))
}

// contactRow is the row widget shared by every contact list.
type contactRow struct {
	widget.BaseWidget

	initials *widget.Label
	name     *widget.Label
	phone    *widget.Label
	favorite *widget.Button
	call     *widget.Button
}

func newContactRow() *contactRow {
	r := &contactRow{
		initials: widget.NewLabelWithStyle(config.InitialsEmpty, fyne.TextAlignCenter, fyne.TextStyle{Bold: true}),
		name:     widget.NewLabel(""),
		phone:    widget.NewLabel(""),
		favorite: widget.NewButton(config.FavoriteOff, nil),
		call:     widget.NewButtonWithIcon("", theme.MailSendIcon(), nil),
	}
	r.name.Truncation = fyne.TextTruncateEllipsis
	r.phone.Truncation = fyne.TextTruncateEllipsis
	r.favorite.Importance = widget.LowImportance
	r.ExtendBaseWidget(r)
	return r
}

func (r *contactRow) update(c engine.Contact) {
	r.initials.SetText(initials(c.Name))
	r.name.SetText(c.Name)
	r.phone.SetText(c.PhoneNumber)
	if c.IsFavorite {
		r.favorite.SetText(config.FavoriteOn)
	} else {
		r.favorite.SetText(config.FavoriteOff)
	}
}

func (r *contactRow) CreateRenderer() fyne.WidgetRenderer {
	text := container.NewVBox(r.name, r.phone)
	actions := container.NewHBox(r.favorite, r.call)
	return widget.NewSimpleRenderer(container.NewBorder(nil, nil, r.initials, actions, text))
}

// initials returns the upper-cased first letters of the first two words of
// name, or config.InitialsEmpty when name has no letter.
func initials(name string) string {
	var out []rune
	for _, word := range strings.Fields(name) {
		for _, r := range word {
			if unicode.IsLetter(r) || unicode.IsDigit(r) {
				out = append(out, r)
				break
			}
		}
		if len(out) == 2 {
			break
		}
	}
	if len(out) == 0 {
		return config.InitialsEmpty
	}
	// Casers are stateful and must not be shared.
	return cases.Upper(language.Und).String(string(out))
}

// buildContactsTab lays out the searchable, group-filtered main list.
func (app *DialerApp) buildContactsTab() fyne.CanvasObject {
	search := widget.NewEntry()
	search.SetPlaceHolder(app.GetMsg(config.TKeyPhSearch))
	search.ActionItem = widget.NewIcon(theme.SearchIcon())
	search.OnChanged = app.Engine.SetSearchQuery

	labels := make([]string, len(engine.Groups))
	byLabel := make(map[string]string, len(engine.Groups))
	for i, g := range engine.Groups {
		labels[i] = app.groupLabel(g)
		byLabel[labels[i]] = g
	}
	groups := widget.NewSelect(labels, func(label string) {
		app.Engine.SetGroupFilter(byLabel[label])
	})
	groups.SetSelected(app.groupLabel(app.Engine.State().SelectedGroup))

	add := widget.NewButtonWithIcon(app.GetMsg(config.TKeyBtnAdd), theme.ContentAddIcon(), func() {
		app.showContactEditor(engine.Contact{Group: engine.GroupOther})
	})

	app.mainList = app.newContactList(app.showContactEditor)
	bind(app.Engine.MainList, app.mainList)

	top := container.NewBorder(nil, nil, nil, container.NewHBox(groups, add), search)
	return container.NewBorder(top, nil, nil, nil, app.mainList.content())
}

func (app *DialerApp) buildFavoritesTab() fyne.CanvasObject {
	app.favorites = app.newContactList(app.showContactEditor)
	bind(app.Engine.Favorites, app.favorites)
	return app.favorites.content()
}

// buildRecentsTab lists recently called contacts; tapping one calls it again.
func (app *DialerApp) buildRecentsTab() fyne.CanvasObject {
	app.recents = app.newContactList(app.placeCall)
	bind(app.Engine.Recent, app.recents)
	return app.recents.content()
}
