package ui

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strings"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/theme"
	"github.com/nicksnyder/go-i18n/v2/i18n"
	"github.com/tartampluch/go-dialer/internal/config"
	"github.com/tartampluch/go-dialer/internal/engine"
	"github.com/tartampluch/go-dialer/internal/exchange"
	"github.com/tartampluch/go-dialer/internal/server"
	"github.com/zalando/go-keyring"
	"golang.org/x/sync/singleflight"
)

// DialerApp encapsulates the UI state, preferences, and the wiring between
// the widgets and the contact engine.
type DialerApp struct {
	App         fyne.App
	Window      fyne.Window
	Preferences fyne.Preferences
	I18nBundle  *i18n.Bundle
	Localizer   *i18n.Localizer
	Ctx         context.Context

	Engine  *engine.Engine
	Server  *server.FeedServer
	Fetcher exchange.Fetcher

	SupportedLanguages []string

	// OpenURL dials tel: URIs. Defaults to the app's OpenURL.
	OpenURL func(*url.URL) error

	settingsWindow fyne.Window

	// remote collapses overlapping imports of the same address book.
	remote singleflight.Group

	mainList    *contactList
	favorites   *contactList
	recents     *contactList
	suggestions *suggestionList
	dialEntry   *NumericalEntry
}

// NewDialerApp constructs the application and wires dependencies.
func NewDialerApp(a fyne.App, ctx context.Context, eng *engine.Engine, srv *server.FeedServer, fetcher exchange.Fetcher) *DialerApp {
	return &DialerApp{
		App:                a,
		Preferences:        a.Preferences(),
		Ctx:                ctx,
		Engine:             eng,
		Server:             srv,
		Fetcher:            fetcher,
		OpenURL:            a.OpenURL,
		SupportedLanguages: config.SupportedLanguages,
	}
}

// Run starts the feed server, builds the main window and blocks in the UI loop.
func (app *DialerApp) Run() {
	app.SetupI18n()

	app.Engine.Directory.AddListener(app.Server.Publish)
	go func() {
		if err := app.Server.Start(app.Ctx); err != nil {
			slog.Error(config.ErrServerStartup,
				config.LogKeyError, err,
				config.LogKeyComponent, config.CompUI)

			app.App.SendNotification(fyne.NewNotification(
				config.TitleStartupError,
				fmt.Sprintf(config.MsgPortBusy, app.Server.Port)))
		}
	}()

	app.buildMainWindow()
	app.Engine.Start()
	app.Window.ShowAndRun()
}

// buildMainWindow creates the tabbed main window and binds every view to
// its engine feed.
func (app *DialerApp) buildMainWindow() {
	w := app.App.NewWindow(app.GetMsg(config.TKeyWinTitle))
	app.Window = w

	tabs := container.NewAppTabs(
		container.NewTabItemWithIcon(app.GetMsg(config.TKeyTabContacts), theme.AccountIcon(), app.buildContactsTab()),
		container.NewTabItemWithIcon(app.GetMsg(config.TKeyTabFavorites), theme.ListIcon(), app.buildFavoritesTab()),
		container.NewTabItemWithIcon(app.GetMsg(config.TKeyTabRecents), theme.HistoryIcon(), app.buildRecentsTab()),
		container.NewTabItemWithIcon(app.GetMsg(config.TKeyTabDialer), theme.GridIcon(), app.buildDialerTab()),
	)

	w.SetMainMenu(fyne.NewMainMenu(fyne.NewMenu(app.GetMsg(config.TKeyMenuFile),
		fyne.NewMenuItem(app.GetMsg(config.TKeyMenuImport), app.showImportDialog),
		fyne.NewMenuItem(app.GetMsg(config.TKeyMenuExport), app.showExportDialog),
		fyne.NewMenuItem(app.GetMsg(config.TKeyMenuRemote), func() { go app.importRemote() }),
		fyne.NewMenuItemSeparator(),
		fyne.NewMenuItem(app.GetMsg(config.TKeyMenuSettings), app.ShowSettingsWindow),
	)))

	w.SetContent(tabs)
	w.Resize(fyne.NewSize(config.MainWindowWidth, config.MainWindowHeight))
	w.SetMaster()
}

// bind renders every emission of feed into list on the UI goroutine.
func bind(feed *engine.Feed, list *contactList) {
	list.set(feed.Snapshot())
	feed.AddListener(func(contacts []engine.Contact) {
		fyne.Do(func() { list.set(contacts) })
	})
}

// placeCall marks the contact as called and hands its number to the OS dialer.
func (app *DialerApp) placeCall(c engine.Contact) {
	app.Engine.MarkCalled(c)
	app.dial(c.PhoneNumber)
}

// dialNumber places a call to a raw dialer number. Numbers belonging to a
// known contact update its call history.
func (app *DialerApp) dialNumber(number string) {
	if number == "" {
		return
	}
	app.Engine.MarkNumberCalled(number)
	app.dial(number)
}

// telEscaper percent-encodes the characters a tel: URI cannot carry raw;
// an unescaped '#' would start a fragment.
var telEscaper = strings.NewReplacer("%", "%25", "#", "%23", " ", "%20")

func (app *DialerApp) dial(number string) {
	slog.Info(config.LogMsgCall, config.LogKeyComponent, config.CompUI)
	u := &url.URL{Scheme: config.TelScheme, Opaque: telEscaper.Replace(number)}
	if err := app.OpenURL(u); err != nil {
		slog.Warn(config.ErrCallURI,
			config.LogKeyComponent, config.CompUI,
			config.LogKeyError, err)
	}
}

// loadCredentials returns the remote import settings, with the password read
// from the system keyring.
func (app *DialerApp) loadCredentials() (target, user, pass string) {
	target = app.Preferences.String(config.PrefImportURL)
	user = app.Preferences.String(config.PrefUsername)
	if user != "" {
		if p, err := keyring.Get(config.KeyringService, user); err == nil {
			pass = p
		} else {
			slog.Debug(config.MsgPassFail,
				config.LogKeyUser, user,
				config.LogKeyError, err,
				config.LogKeyComponent, config.CompUI)
		}
	}
	return target, user, pass
}

// importRemote downloads the configured vCard address book and imports it.
// It blocks on the network and must not run on the UI goroutine. A request
// made while the same URL is still downloading joins it instead of importing
// the contacts twice.
func (app *DialerApp) importRemote() {
	target, user, pass := app.loadCredentials()
	v, err, shared := app.remote.Do(target, func() (interface{}, error) {
		contacts, err := exchange.ImportRemote(app.Ctx, app.Fetcher, target, user, pass)
		if err != nil {
			return 0, err
		}
		app.Engine.ImportContacts(contacts)
		return len(contacts), nil
	})
	if err != nil {
		slog.Error(config.ErrImportRemote,
			config.LogKeyComponent, config.CompUI,
			config.LogKeyError, err)
		app.notify(config.AppName, err.Error())
		return
	}
	if shared {
		slog.Debug(config.MsgRemoteJoined, config.LogKeyComponent, config.CompUI)
	}
	app.notify(config.AppName, app.GetMsgCount(config.TKeyNotifImport, v.(int)))
}

func (app *DialerApp) notify(title, content string) {
	app.App.SendNotification(fyne.NewNotification(title, content))
}
