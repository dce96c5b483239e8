package ui

import (
	"fmt"
	"io"
	"log/slog"
	"strings"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/storage"
	"github.com/tartampluch/go-dialer/internal/config"
	"github.com/tartampluch/go-dialer/internal/engine"
	"github.com/tartampluch/go-dialer/internal/exchange"
)

// readContacts decodes r according to the file extension ext.
func readContacts(r io.Reader, ext string) ([]engine.Contact, error) {
	switch strings.ToLower(ext) {
	case config.ExtCSV:
		return exchange.ReadCSV(r)
	case config.ExtVCF, config.ExtVCard:
		return exchange.ReadVCards(r)
	default:
		return nil, fmt.Errorf("%s: %q", config.ErrFormatUnknown, ext)
	}
}

// writeContacts encodes contacts according to the file extension ext.
func writeContacts(w io.Writer, contacts []engine.Contact, ext string) error {
	switch strings.ToLower(ext) {
	case config.ExtCSV:
		return exchange.WriteCSV(w, contacts)
	case config.ExtVCF, config.ExtVCard:
		return exchange.WriteVCards(w, contacts)
	default:
		return fmt.Errorf("%s: %q", config.ErrFormatUnknown, ext)
	}
}

// showImportDialog lets the user pick a CSV or vCard file and imports it.
func (app *DialerApp) showImportDialog() {
	d := dialog.NewFileOpen(func(r fyne.URIReadCloser, err error) {
		if err != nil {
			dialog.ShowError(err, app.Window)
			return
		}
		if r == nil {
			return
		}
		defer func() { _ = r.Close() }()

		n, err := app.importFrom(r, r.URI().Extension())
		if err != nil {
			dialog.ShowError(err, app.Window)
			return
		}
		dialog.ShowInformation(config.AppName, app.GetMsgCount(config.TKeyNotifImport, n), app.Window)
	}, app.Window)
	d.SetFilter(storage.NewExtensionFileFilter([]string{config.ExtCSV, config.ExtVCF, config.ExtVCard}))
	d.Show()
}

// importFrom parses r and queues the contacts for insertion.
func (app *DialerApp) importFrom(r io.Reader, ext string) (int, error) {
	contacts, err := readContacts(r, ext)
	if err != nil {
		slog.Error(config.ErrImportFile,
			config.LogKeyComponent, config.CompUI,
			config.LogKeyError, err)
		return 0, err
	}
	app.Engine.ImportContacts(contacts)
	return len(contacts), nil
}

// showExportDialog saves the whole directory as CSV or vCard, depending on
// the chosen file name.
func (app *DialerApp) showExportDialog() {
	d := dialog.NewFileSave(func(w fyne.URIWriteCloser, err error) {
		if err != nil {
			dialog.ShowError(err, app.Window)
			return
		}
		if w == nil {
			return
		}

		n, err := app.exportTo(w, w.URI().Extension())
		if cerr := w.Close(); err == nil {
			err = cerr
		}
		if err != nil {
			dialog.ShowError(err, app.Window)
			return
		}
		dialog.ShowInformation(config.AppName, app.GetMsgCount(config.TKeyNotifExport, n), app.Window)
	}, app.Window)
	d.SetFileName(config.DefaultExportName)
	d.Show()
}

// exportTo writes the current directory snapshot to w.
func (app *DialerApp) exportTo(w io.Writer, ext string) (int, error) {
	contacts := app.Engine.Directory.Snapshot()
	if err := writeContacts(w, contacts, ext); err != nil {
		slog.Error(config.ErrExportFile,
			config.LogKeyComponent, config.CompUI,
			config.LogKeyError, err)
		return 0, err
	}
	return len(contacts), nil
}
