package ui

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/tartampluch/go-dialer/internal/config"
	"github.com/tartampluch/go-dialer/internal/engine"
	"github.com/tartampluch/go-dialer/internal/server"
	"github.com/tartampluch/go-dialer/internal/store"
	"github.com/zalando/go-keyring"
)

// -----------------------------------------------------------------------------
// Mocks
// -----------------------------------------------------------------------------

// MockFetcher simulates the exchange.Fetcher interface using testify/mock.
type MockFetcher struct {
	mock.Mock
}

func (m *MockFetcher) Fetch(ctx context.Context, url, user, pass string) (io.ReadCloser, error) {
	args := m.Called(ctx, url, user, pass)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(io.ReadCloser), args.Error(1)
}

// dialRecorder captures the URIs handed to the OS dialer.
type dialRecorder struct {
	mu   sync.Mutex
	uris []string
}

func (d *dialRecorder) open(u *url.URL) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.uris = append(d.uris, u.String())
	return nil
}

func (d *dialRecorder) dialed() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]string(nil), d.uris...)
}

// -----------------------------------------------------------------------------
// Test Setup Helper
// -----------------------------------------------------------------------------

// setupTestApp initializes a headless Fyne app over an in-memory store.
// The engine is not started.
func setupTestApp(t *testing.T) (*DialerApp, *MockFetcher, *dialRecorder) {
	keyring.MockInit()
	a := test.NewApp()

	st, err := store.Open(store.MemoryPath)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	eng := engine.New(ctx, st, engine.Options{Debounce: 10 * time.Millisecond})
	t.Cleanup(func() {
		eng.Close()
		_ = st.Close()
		cancel()
	})

	fetcher := new(MockFetcher)
	app := NewDialerApp(a, ctx, eng, server.NewFeedServer("0"), fetcher)

	rec := &dialRecorder{}
	app.OpenURL = rec.open

	// Manually load I18n as Run() is skipped
	app.SetupI18n()
	app.Preferences.SetString(config.PrefLanguage, "en")
	app.UpdateLocalizer()

	return app, fetcher, rec
}

// seed imports contacts and waits until the directory shows them.
func seed(t *testing.T, app *DialerApp, contacts ...engine.Contact) {
	t.Helper()
	app.Engine.Start()
	app.Engine.ImportContacts(contacts)
	require.Eventually(t, func() bool {
		return len(app.Engine.Directory.Snapshot()) == len(contacts)
	}, 2*time.Second, 10*time.Millisecond)
}

// -----------------------------------------------------------------------------
// Localization Tests
// -----------------------------------------------------------------------------

func TestLocalization_Switching(t *testing.T) {
	app, _, _ := setupTestApp(t)

	assert.Equal(t, "Settings...", app.GetMsg(config.TKeyMenuSettings))

	app.Preferences.SetString(config.PrefLanguage, "fr")
	app.UpdateLocalizer()
	assert.Equal(t, "Paramètres...", app.GetMsg(config.TKeyMenuSettings))
}

func TestLocalization_DetectsLanguages(t *testing.T) {
	app, _, _ := setupTestApp(t)
	assert.ElementsMatch(t, []string{"en", "fr"}, app.SupportedLanguages)
}

func TestLocalization_MissingKey(t *testing.T) {
	app, _, _ := setupTestApp(t)
	assert.Equal(t, "no_such_key", app.GetMsg("no_such_key"))
	assert.Equal(t, "no_such_key", app.GetMsgCount("no_such_key", 2))

	// Not initialized yet.
	bare := &DialerApp{}
	assert.Equal(t, config.TKeyBtnSave, bare.GetMsg(config.TKeyBtnSave))
}

func TestLocalization_TemplateData(t *testing.T) {
	app, _, _ := setupTestApp(t)

	assert.Equal(t, "1 contact imported", app.GetMsgCount(config.TKeyNotifImport, 1))
	assert.Equal(t, "3 contacts imported", app.GetMsgCount(config.TKeyNotifImport, 3))
	assert.Equal(t, "Delete Ann Lee?", app.GetMsgName(config.TKeyDlgDeleteMsg, "Ann Lee"))
}

func TestGroupLabel(t *testing.T) {
	app, _, _ := setupTestApp(t)

	assert.Equal(t, "Work", app.groupLabel(engine.GroupWork))
	assert.Equal(t, "VIP", app.groupLabel("VIP"), "unknown groups are shown verbatim")

	app.Preferences.SetString(config.PrefLanguage, "fr")
	app.UpdateLocalizer()
	assert.Equal(t, "Travail", app.groupLabel(engine.GroupWork))
	assert.Equal(t, "Tous", app.groupLabel(engine.GroupAll))
}

// -----------------------------------------------------------------------------
// Settings Tests
// -----------------------------------------------------------------------------

func TestValidatePort(t *testing.T) {
	app, _, _ := setupTestApp(t)

	tests := []struct {
		in      string
		wantErr string
	}{
		{"8080", ""},
		{"1", ""},
		{"65535", ""},
		{"", "Port is required"},
		{"abc", "Port must be a number"},
		{"0", "Port must be between 1 and 65535"},
		{"70000", "Port must be between 1 and 65535"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			err := app.validatePort(tt.in)
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Equal(t, tt.wantErr, err.Error())
		})
	}
}

func TestSaveSettings(t *testing.T) {
	app, _, _ := setupTestApp(t)

	sw := app.newSettingsWidgets()
	assert.Equal(t, config.DefaultPort, sw.entryPort.Text)
	assert.Equal(t, "10", sw.entryRecent.Text)

	sw.langSelect.SetSelected("fr")
	sw.entryPort.SetText("9000")
	sw.entryRecent.SetText("500")
	sw.urlEntry.SetText("https://dav.example.com/book.vcf")
	sw.userEntry.SetText("alice")
	sw.passEntry.SetText("s3cret")

	app.saveSettings(sw)

	assert.Equal(t, "fr", app.Preferences.String(config.PrefLanguage))
	assert.Equal(t, "9000", app.Preferences.String(config.PrefServerPort))
	assert.Equal(t, config.MaxRecentLimit, app.Preferences.Int(config.PrefRecentLimit), "limit is clamped")
	assert.Equal(t, "https://dav.example.com/book.vcf", app.Preferences.String(config.PrefImportURL))

	pass, err := keyring.Get(config.KeyringService, "alice")
	require.NoError(t, err)
	assert.Equal(t, "s3cret", pass)

	assert.Equal(t, "Paramètres...", app.GetMsg(config.TKeyMenuSettings), "language applies immediately")

	// Reopening shows the saved values, password included.
	sw = app.newSettingsWidgets()
	assert.Equal(t, "9000", sw.entryPort.Text)
	assert.Equal(t, "s3cret", sw.passEntry.Text)
}

func TestSaveSettings_RecentLimitDefault(t *testing.T) {
	app, _, _ := setupTestApp(t)

	for _, in := range []string{"", "0"} {
		sw := app.newSettingsWidgets()
		sw.entryRecent.SetText(in)
		app.saveSettings(sw)
		assert.Equal(t, config.DefaultRecentLimit, app.Preferences.Int(config.PrefRecentLimit), "input %q", in)
	}
}

func TestSettingsWindow_Singleton(t *testing.T) {
	app, _, _ := setupTestApp(t)

	app.ShowSettingsWindow()
	first := app.settingsWindow
	require.NotNil(t, first)

	app.ShowSettingsWindow()
	assert.Same(t, first, app.settingsWindow, "a second call must reuse the open window")

	first.Close()
	assert.Nil(t, app.settingsWindow)
}

func TestLoadCredentials(t *testing.T) {
	app, _, _ := setupTestApp(t)

	app.Preferences.SetString(config.PrefImportURL, "https://dav.example.com")
	app.Preferences.SetString(config.PrefUsername, "bob")
	require.NoError(t, keyring.Set(config.KeyringService, "bob", "pw"))

	target, user, pass := app.loadCredentials()
	assert.Equal(t, "https://dav.example.com", target)
	assert.Equal(t, "bob", user)
	assert.Equal(t, "pw", pass)
}

// -----------------------------------------------------------------------------
// Calls
// -----------------------------------------------------------------------------

func TestDialNumber_KnownContact(t *testing.T) {
	app, _, rec := setupTestApp(t)
	seed(t, app, engine.Contact{Name: "Ann Lee", PhoneNumber: "555-0202"})

	app.dialNumber("555-0202")

	assert.Equal(t, []string{"tel:555-0202"}, rec.dialed())
	require.Eventually(t, func() bool {
		recent := app.Engine.Recent.Snapshot()
		return len(recent) == 1 && recent[0].Name == "Ann Lee"
	}, 2*time.Second, 10*time.Millisecond)
}

func TestDialNumber_UnknownAndEmpty(t *testing.T) {
	app, _, rec := setupTestApp(t)
	seed(t, app, engine.Contact{Name: "Ann Lee", PhoneNumber: "555-0202"})

	app.dialNumber("")
	app.dialNumber("+3312")

	assert.Equal(t, []string{"tel:+3312"}, rec.dialed())
	time.Sleep(50 * time.Millisecond)
	assert.Empty(t, app.Engine.Recent.Snapshot())
}

func TestDialNumber_EscapesTelURI(t *testing.T) {
	app, _, rec := setupTestApp(t)

	app.dialNumber("*#06#")
	app.dialNumber("+33 6 12")

	uris := rec.dialed()
	assert.Equal(t, []string{"tel:*%2306%23", "tel:+33%206%2012"}, uris)

	u, err := url.Parse(uris[0])
	require.NoError(t, err)
	assert.Empty(t, u.Fragment, "'#' must not start a fragment")
	assert.Equal(t, "*%2306%23", u.Opaque)
}

func TestPlaceCall(t *testing.T) {
	app, _, rec := setupTestApp(t)
	seed(t, app, engine.Contact{Name: "Bob Stone", PhoneNumber: "777"})

	app.placeCall(app.Engine.Directory.Snapshot()[0])

	assert.Equal(t, []string{"tel:777"}, rec.dialed())
	require.Eventually(t, func() bool {
		return len(app.Engine.Recent.Snapshot()) == 1
	}, 2*time.Second, 10*time.Millisecond)
}

func TestDial_OpenFailureIsLogged(t *testing.T) {
	app, _, _ := setupTestApp(t)
	app.OpenURL = func(*url.URL) error { return errors.New("no handler") }

	assert.NotPanics(t, func() { app.dial("123") })
}

// -----------------------------------------------------------------------------
// Import & Export
// -----------------------------------------------------------------------------

func TestImportRemote_Success(t *testing.T) {
	app, fetcher, _ := setupTestApp(t)
	app.Engine.Start()

	vcf := "BEGIN:VCARD\r\nVERSION:3.0\r\nFN:Remote User\r\nTEL:123\r\nEND:VCARD\r\n"
	fetcher.On("Fetch", mock.Anything, "https://dav.example.com", "", "").
		Return(io.NopCloser(strings.NewReader(vcf)), nil)
	app.Preferences.SetString(config.PrefImportURL, "https://dav.example.com")

	app.importRemote()

	fetcher.AssertExpectations(t)
	require.Eventually(t, func() bool {
		dir := app.Engine.Directory.Snapshot()
		return len(dir) == 1 && dir[0].Name == "Remote User"
	}, 2*time.Second, 10*time.Millisecond)
}

func TestImportRemote_OverlappingRequestsImportOnce(t *testing.T) {
	app, fetcher, _ := setupTestApp(t)
	app.Engine.Start()

	started := make(chan struct{})
	release := make(chan struct{})
	vcf := "BEGIN:VCARD\r\nVERSION:3.0\r\nFN:Remote User\r\nTEL:123\r\nEND:VCARD\r\n"
	fetcher.On("Fetch", mock.Anything, "https://dav.example.com", "", "").
		Run(func(mock.Arguments) {
			close(started)
			<-release
		}).
		Return(io.NopCloser(strings.NewReader(vcf)), nil).
		Once()
	app.Preferences.SetString(config.PrefImportURL, "https://dav.example.com")

	var wg sync.WaitGroup
	wg.Add(2)
	go func() { defer wg.Done(); app.importRemote() }()
	<-started
	go func() { defer wg.Done(); app.importRemote() }()

	// Let the second request reach the in-flight download.
	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()

	fetcher.AssertNumberOfCalls(t, "Fetch", 1)
	require.Eventually(t, func() bool {
		return len(app.Engine.Directory.Snapshot()) == 1
	}, 2*time.Second, 10*time.Millisecond)
	time.Sleep(50 * time.Millisecond)
	assert.Len(t, app.Engine.Directory.Snapshot(), 1)
}

func TestImportRemote_Failure(t *testing.T) {
	app, fetcher, _ := setupTestApp(t)
	app.Engine.Start()

	fetcher.On("Fetch", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(nil, errors.New("connection refused"))
	app.Preferences.SetString(config.PrefImportURL, "https://dav.example.com")

	app.importRemote()

	fetcher.AssertExpectations(t)
	time.Sleep(50 * time.Millisecond)
	assert.Empty(t, app.Engine.Directory.Snapshot())
}

func TestImportRemote_NoURL(t *testing.T) {
	app, fetcher, _ := setupTestApp(t)

	app.importRemote()

	fetcher.AssertNotCalled(t, "Fetch", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestImportThenExport(t *testing.T) {
	app, _, _ := setupTestApp(t)
	app.Engine.Start()

	in := "Name,PhoneNumber,Group,IsFavorite\nAnn Lee,555-0202,Family,1\nBob,777,,0\n"
	n, err := app.importFrom(strings.NewReader(in), ".CSV")
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	require.Eventually(t, func() bool {
		return len(app.Engine.Directory.Snapshot()) == 2
	}, 2*time.Second, 10*time.Millisecond)

	var buf bytes.Buffer
	n, err = app.exportTo(&buf, ".vcf")
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Contains(t, buf.String(), "FN:Ann Lee")
	assert.Contains(t, buf.String(), "FN:Bob")

	_, err = app.importFrom(strings.NewReader(in), ".txt")
	assert.ErrorContains(t, err, config.ErrFormatUnknown)
	_, err = app.exportTo(&buf, ".txt")
	assert.ErrorContains(t, err, config.ErrFormatUnknown)
}

// -----------------------------------------------------------------------------
// Window & Dialer
// -----------------------------------------------------------------------------

func TestBuildMainWindow(t *testing.T) {
	app, _, _ := setupTestApp(t)

	app.buildMainWindow()
	defer app.Window.Close()

	tabs, ok := app.Window.Content().(*container.AppTabs)
	require.True(t, ok, "main content must be tabbed")
	require.Len(t, tabs.Items, 4)
	assert.Equal(t, "Contacts", tabs.Items[0].Text)
	assert.Equal(t, "Keypad", tabs.Items[3].Text)

	menu := app.Window.MainMenu()
	require.NotNil(t, menu)
	require.Len(t, menu.Items, 1)
	assert.Len(t, menu.Items[0].Items, 5)

	assert.NotNil(t, app.mainList)
	assert.NotNil(t, app.favorites)
	assert.NotNil(t, app.recents)
	assert.NotNil(t, app.suggestions)
	assert.NotNil(t, app.dialEntry)
}

func TestDialer_Keypad(t *testing.T) {
	app, _, _ := setupTestApp(t)
	app.buildDialerTab()

	app.pressKey("2")
	app.pressKey("6")
	app.pressKey("#")
	assert.Equal(t, "26#", app.dialEntry.Text)
	assert.Equal(t, "26#", app.Engine.State().DialerInput)

	app.setDialText(backspace(app.dialEntry.Text))
	assert.Equal(t, "26", app.dialEntry.Text)
	assert.Equal(t, "26", app.Engine.State().DialerInput)
}

// The list is highlighted against the digits it was computed for, even when
// the display is already ahead of the engine.
func TestDialer_SuggestionsKeepTheirDigits(t *testing.T) {
	app, _, _ := setupTestApp(t)
	seed(t, app, engine.Contact{Name: "Bob Stone", PhoneNumber: "777"})
	app.buildDialerTab()

	// Registered after the dialer's own listener, so it fires once the list
	// has been updated.
	delivered := make(chan struct{}, 64)
	app.Engine.Suggestions.AddListener(func([]engine.Contact) {
		select {
		case delivered <- struct{}{}:
		default:
		}
	})
	waitList := func(n int) {
		t.Helper()
		deadline := time.After(2 * time.Second)
		for {
			select {
			case <-delivered:
				if len(app.suggestions.items) == n {
					return
				}
			case <-deadline:
				t.Fatalf("suggestion list never reached %d items", n)
			}
		}
	}

	app.setDialText("262")
	waitList(1)
	assert.Equal(t, "262", app.suggestions.query)

	// The user typed on; the engine has not seen it yet.
	app.dialEntry.Text = "2629"
	app.Engine.ImportContacts([]engine.Contact{{Name: "Bobby", PhoneNumber: "888"}})
	waitList(2)
	assert.Equal(t, "262", app.suggestions.query)
}
