package ui

import (
	"errors"
	"log/slog"
	"strings"

	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/widget"
	"github.com/tartampluch/go-dialer/internal/config"
	"github.com/tartampluch/go-dialer/internal/engine"
)

// editorWidgets holds the form fields of the contact editor.
type editorWidgets struct {
	name     *widget.Entry
	phone    *NumericalEntry
	group    *widget.Select
	favorite *widget.Check
	groupOf  map[string]string
}

// newEditorWidgets builds the editor fields pre-filled with c.
func (app *DialerApp) newEditorWidgets(c engine.Contact) *editorWidgets {
	ew := &editorWidgets{
		name:     widget.NewEntry(),
		phone:    NewDialEntry(),
		favorite: widget.NewCheck("", nil),
		groupOf:  make(map[string]string),
	}
	ew.name.SetText(c.Name)
	ew.name.Validator = func(s string) error {
		if strings.TrimSpace(s) == "" {
			return errors.New(app.GetMsg(config.TKeyErrNameReq))
		}
		return nil
	}
	ew.phone.SetText(c.PhoneNumber)
	ew.phone.Validator = func(s string) error {
		if strings.TrimSpace(s) == "" {
			return errors.New(app.GetMsg(config.TKeyErrPhoneReq))
		}
		return nil
	}

	// GroupAll is a filter, not a group a contact can belong to.
	var labels []string
	for _, g := range engine.Groups[1:] {
		label := app.groupLabel(g)
		labels = append(labels, label)
		ew.groupOf[label] = g
	}
	ew.group = widget.NewSelect(labels, nil)
	if c.Group != "" {
		ew.group.SetSelected(app.groupLabel(c.Group))
	}
	ew.favorite.SetChecked(c.IsFavorite)
	return ew
}

// contact merges the form values into base.
func (ew *editorWidgets) contact(base engine.Contact) engine.Contact {
	base.Name = strings.TrimSpace(ew.name.Text)
	base.PhoneNumber = strings.TrimSpace(ew.phone.Text)
	if g, ok := ew.groupOf[ew.group.Selected]; ok {
		base.Group = g
	}
	base.IsFavorite = ew.favorite.Checked
	return base
}

// showContactEditor opens the add form when c.ID is zero, the edit form
// otherwise. Existing contacts also get a delete action.
func (app *DialerApp) showContactEditor(c engine.Contact) {
	ew := app.newEditorWidgets(c)

	items := []*widget.FormItem{
		widget.NewFormItem(app.GetMsg(config.TKeyLblName), ew.name),
		widget.NewFormItem(app.GetMsg(config.TKeyLblPhone), ew.phone),
		widget.NewFormItem(app.GetMsg(config.TKeyLblGroup), ew.group),
		widget.NewFormItem(app.GetMsg(config.TKeyLblFavorite), ew.favorite),
	}

	title := app.GetMsg(config.TKeyDlgNew)
	if c.ID != 0 {
		title = app.GetMsg(config.TKeyDlgEdit)
		items = append(items, widget.NewFormItem("", widget.NewButton(app.GetMsg(config.TKeyBtnDelete), func() {
			app.confirmDelete(c)
		})))
	}

	slog.Debug(config.LogMsgOpenWin,
		config.LogKeyComponent, config.CompUI,
		config.LogKeyWindow, title)

	dialog.ShowForm(title, app.GetMsg(config.TKeyBtnSave), app.GetMsg(config.TKeyBtnCancel), items, func(ok bool) {
		if !ok {
			return
		}
		app.saveContact(ew.contact(c))
	}, app.Window)
}

// saveContact inserts new contacts and updates existing ones.
func (app *DialerApp) saveContact(c engine.Contact) {
	if c.ID == 0 {
		app.Engine.AddContact(c)
		return
	}
	app.Engine.UpdateContact(c)
}

func (app *DialerApp) confirmDelete(c engine.Contact) {
	dialog.ShowConfirm(app.GetMsg(config.TKeyDlgDelete), app.GetMsgName(config.TKeyDlgDeleteMsg, c.Name), func(ok bool) {
		if ok {
			app.Engine.DeleteContact(c)
		}
	}, app.Window)
}
