package config

import (
	"io/fs"
	"time"
)

// -----------------------------------------------------------------------------
// Build Information
// -----------------------------------------------------------------------------

// Build variables are injected via -ldflags.
var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

// UserAgent identifies the HTTP client.
var UserAgent = "Go-Dialer/" + Version

// -----------------------------------------------------------------------------
// Application Constants
// -----------------------------------------------------------------------------

const (
	AppName           = "Go Dialer"
	AppID             = "com.github.tartampluch.go-dialer"
	KeyringService    = "com.github.tartampluch.go-dialer"
	LocalhostBindAddr = "127.0.0.1"
	LogFileName       = "app.log"
	DBFileName        = "contacts.db"
)

// -----------------------------------------------------------------------------
// Exit Codes
// -----------------------------------------------------------------------------

const (
	ExitCodeSuccess = 0
	ExitCodeError   = 1
)

// -----------------------------------------------------------------------------
// System & File Permissions
// -----------------------------------------------------------------------------

const (
	// FilePermUserRW represents -rw------- (Read/Write for owner only).
	// Used for logs.
	FilePermUserRW fs.FileMode = 0600

	// DirPermUserRWX represents drwx------ (Read/Write/Exec for owner only).
	// Used for the cache and data directories.
	DirPermUserRWX fs.FileMode = 0700

	// ChannelBufferSize defines the standard buffer size for internal signaling channels.
	ChannelBufferSize = 1
)

// -----------------------------------------------------------------------------
// CLI Flags & Descriptions
// -----------------------------------------------------------------------------

const (
	FlagVersion      = "version"
	FlagDebug        = "debug"
	FlagDB           = "db"
	FlagDescVersion  = "Show application version and exit"
	FlagDescDebug    = "Enable debug logging to stdout"
	FlagDescDB       = "Path to the contacts database (default: user config dir)"
	MsgVersionOutput = "%s version %s (commit %s, built %s, %s/%s)\n"
)

// -----------------------------------------------------------------------------
// Contact Matching Engine
// -----------------------------------------------------------------------------

const (
	// DefaultDialerDebounce is the quiet period before dialer input is queried.
	DefaultDialerDebounce = 150 * time.Millisecond

	// DefaultRecentLimit caps the recently-contacted view.
	DefaultRecentLimit = 10

	// DefaultMinDialerDigits is the shortest input producing suggestions.
	DefaultMinDialerDigits = 2

	// View names, used in logs.
	ViewMain        = "main"
	ViewFavorites   = "favorites"
	ViewRecent      = "recent"
	ViewSuggestions = "suggestions"
	ViewDirectory   = "directory"

	// Store write operations, used in logs.
	OpInsert     = "insert"
	OpUpdate     = "update"
	OpDelete     = "delete"
	OpFavorite   = "set_favorite"
	OpMarkCalled = "mark_called"
	OpImport     = "import"
)

// -----------------------------------------------------------------------------
// SQLite Store
// -----------------------------------------------------------------------------

const (
	SQLiteDriver = "sqlite"

	// SQLiteDSNOptions applies to every pooled connection.
	SQLiteDSNOptions = "?_pragma=busy_timeout(5000)"

	// SQLiteWALSuffix names the write-ahead log next to the database file.
	SQLiteWALSuffix = "-wal"

	// FileWatchDebounce groups the file events of one external transaction.
	FileWatchDebounce = 100 * time.Millisecond
)

// SQLitePragmas are executed once when a database file is opened.
var SQLitePragmas = []string{
	"PRAGMA journal_mode = WAL",
	"PRAGMA synchronous = NORMAL",
}

// -----------------------------------------------------------------------------
// UI Constants & Preferences
// -----------------------------------------------------------------------------

const (
	MainWindowWidth     = 420
	MainWindowHeight    = 640
	SettingsWindowWidth = 480

	// Preference Keys
	PrefLanguage    = "language"
	PrefServerPort  = "server_port"
	PrefRecentLimit = "recent_limit"
	PrefImportURL   = "import_url"
	PrefUsername    = "username"
	PrefLastRun     = "last_run_version"

	// Dialer keypad layout (3 columns, 4 rows).
	KeypadColumns = 3

	// Contact row decorations
	FavoriteOn    = "★"
	FavoriteOff   = "☆"
	InitialsEmpty = "#"

	TelScheme = "tel"

	LogMsgOpenWin  = "Opening window"
	LogMsgCall     = "Placing call"
	LogMsgSettings = "Settings saved"
)

// KeypadKeys lists the dialer keys in display order.
var KeypadKeys = []string{"1", "2", "3", "4", "5", "6", "7", "8", "9", "*", "0", "#"}

// DialerExtraRunes are accepted by the dialer entry besides digits.
const DialerExtraRunes = "*#+"

// SupportedLanguages defines the list of available UI languages (ISO 639-1).
var SupportedLanguages = []string{"en", "fr"}

// -----------------------------------------------------------------------------
// Translation Keys (I18n)
// -----------------------------------------------------------------------------

const (
	TKeyWinTitle     = "win_title"
	TKeyWinSettings  = "win_settings_title"
	TKeyTabContacts  = "tab_contacts"
	TKeyTabFavorites = "tab_favorites"
	TKeyTabRecents   = "tab_recents"
	TKeyTabDialer    = "tab_dialer"
	TKeyMenuFile     = "menu_file"
	TKeyMenuImport   = "menu_import"
	TKeyMenuExport   = "menu_export"
	TKeyMenuRemote   = "menu_import_remote"
	TKeyMenuSettings = "menu_settings"
	TKeyPhSearch     = "placeholder_search"
	TKeyPhDialer     = "placeholder_dialer"
	TKeyBtnAdd       = "btn_add"
	TKeyBtnCall      = "btn_call"
	TKeyBtnDelete    = "btn_delete"
	TKeyBtnSave      = "btn_save"
	TKeyBtnCancel    = "btn_cancel"
	TKeyLblName      = "lbl_name"
	TKeyLblPhone     = "lbl_phone"
	TKeyLblGroup     = "lbl_group"
	TKeyLblFavorite  = "lbl_favorite"
	TKeyLblLanguage  = "lbl_language"
	TKeyLblPort      = "lbl_server_port"
	TKeyHelpPort     = "help_port"
	TKeyLblRecent    = "lbl_recent_limit"
	TKeyLblURL       = "lbl_url"
	TKeyHelpURL      = "help_import_url"
	TKeyLblUser      = "lbl_user"
	TKeyLblPass      = "lbl_pass"
	TKeyLblFooter    = "lbl_footer"
	TKeyDlgNew       = "dlg_new_contact"
	TKeyDlgEdit      = "dlg_edit_contact"
	TKeyDlgDelete    = "dlg_delete_title"
	TKeyDlgDeleteMsg = "dlg_delete_message" // Requires Name
	TKeyNotifImport  = "notif_import_done" // Requires Count
	TKeyNotifExport  = "notif_export_done" // Requires Count
	TKeyEmptyList    = "empty_list"
	TKeyErrNameReq   = "err_name_required"
	TKeyErrPhoneReq  = "err_phone_required"

	// Group labels, keyed by engine group value.
	TKeyGroupAll     = "group_all"
	TKeyGroupFamily  = "group_family"
	TKeyGroupWork    = "group_work"
	TKeyGroupFriends = "group_friends"
	TKeyGroupOther   = "group_other"

	// Validation Errors (UI)
	TKeyErrPortReq   = "err_port_required"
	TKeyErrPortNum   = "err_port_number"
	TKeyErrPortRange = "err_port_range"
)

// -----------------------------------------------------------------------------
// Default Values
// -----------------------------------------------------------------------------

const (
	DefaultPort     = "18081"
	DefaultLanguage = "en"
)

// -----------------------------------------------------------------------------
// Standards: iCalendar, vCard & CSV
// -----------------------------------------------------------------------------

const (
	// iCal Properties
	ICalVersion = "2.0"
	ICalProdid  = "-//Go Dialer//Call Log//EN"
	ICalCalName = "Calls"
	ICalMethod  = "PUBLISH"
	ICalScale   = "GREGORIAN"
	ICalDomain  = "godialer"

	PropUID         = "UID"
	PropSummary     = "SUMMARY"
	PropDTStart     = "DTSTART"
	PropDTStamp     = "DTSTAMP"
	PropDescription = "DESCRIPTION"
	PropVersion     = "VERSION"
	PropProdid      = "PRODID"
	PropXWRCalName  = "X-WR-CALNAME"
	PropCalScale    = "CALSCALE"
	PropMethod      = "METHOD"

	FormatCallUID     = "call-%d-%d@%s"
	FormatCallSummary = "Call: %s"

	// vCard
	VCardVersion  = "3.0"
	VCardTypeCell = "CELL"

	// CSV
	CSVHeaderName     = "Name"
	CSVHeaderPhone    = "PhoneNumber"
	CSVHeaderGroup    = "Group"
	CSVHeaderFavorite = "IsFavorite"
	CSVTrue           = "1"
	CSVFalse          = "0"

	// File Extensions
	ExtCSV   = ".csv"
	ExtVCF   = ".vcf"
	ExtVCard = ".vcard"

	DefaultExportName = "contacts.vcf"

	// StubVCalendar is the minimal valid iCalendar object used when no call was placed yet.
	StubVCalendar = "BEGIN:VCALENDAR\r\nVERSION:2.0\r\nPRODID:" + ICalProdid + "\r\nEND:VCALENDAR\r\n"
)

// -----------------------------------------------------------------------------
// Limits
// -----------------------------------------------------------------------------

const (
	MinPort        = 1
	MaxPort        = 65535
	MaxRecentLimit = 100
)

// -----------------------------------------------------------------------------
// Network & Timeouts
// -----------------------------------------------------------------------------

const (
	HTTPTimeout         = 30 * time.Second
	ShutdownTimeout     = 5 * time.Second
	ServerReadTimeout   = 10 * time.Second
	ServerWriteTimeout  = 30 * time.Second
	ServerIdleTimeout   = 60 * time.Second
	RetryAfterSeconds   = "10"
	RetryAfterThrottled = "1"
	ServerRateLimit     = 20 // requests per second, all clients together
	ServerRateBurst     = 40
	AllowedMethods      = "GET, HEAD"
	MaxHTTPResponseSize = 64 * 1024 * 1024 // 64MB
	SchemeHTTP          = "http"
	SchemeHTTPS         = "https"
	RouteContacts       = "/contacts.vcf"
	RouteCalls          = "/calls.ics"
	AddrSeparator       = ":"
)

// -----------------------------------------------------------------------------
// HTTP Headers & MIME Types
// -----------------------------------------------------------------------------

const (
	HeaderContentType     = "Content-Type"
	HeaderCacheControl    = "Cache-Control"
	HeaderETag            = "ETag"
	HeaderLastModified    = "Last-Modified"
	HeaderRetryAfter      = "Retry-After"
	HeaderAllow           = "Allow"
	HeaderAccept          = "Accept"
	HeaderXContentType    = "X-Content-Type-Options"
	HeaderUserAgent       = "User-Agent"
	HeaderIfNoneMatch     = "If-None-Match"
	HeaderIfModifiedSince = "If-Modified-Since"

	MimeTextCalendar    = "text/calendar; charset=utf-8"
	MimeVCard           = "text/vcard; charset=utf-8"
	MimeNoSniff         = "nosniff"
	CacheControlPrivate = "private, no-cache"

	// FormatETag expects a string argument.
	FormatETag = `"%s"`
)

// -----------------------------------------------------------------------------
// Error Messages (Technical/Logs)
// -----------------------------------------------------------------------------

const (
	ErrContactNotFound = "contact not found"
	ErrDBOpen          = "failed to open contact database"
	ErrDBPragma        = "failed to apply database pragma"
	ErrDBMigrate       = "failed to migrate contact database"
	ErrDBQuery         = "contact query failed"
	ErrDBScan          = "failed to decode contact row"
	ErrDBWrite         = "contact write failed"
	ErrQueryKind       = "unsupported query kind"
	ErrServerStartup   = "server startup failed"
	ErrServerShutdown  = "server shutdown failed"
	ErrUnknownRoute    = "unknown feed route"
	ErrPublish         = "failed to publish feed"
	ErrPortRequired    = "server port is required"
	ErrInvalidURL      = "invalid URL structure"
	ErrProtocol        = "unsupported protocol scheme (http/https only)"
	ErrImportURLEmpty  = "configuration error: import URL is empty"
	ErrFetchRequest    = "failed to create request"
	ErrFetchNetwork    = "network error during fetch"
	ErrFetchStatus     = "server returned unexpected status"
	ErrVCardParse      = "failed to parse vCard stream"
	ErrVCardEncode     = "failed to encode vCard"
	ErrICalEncode      = "failed to encode iCalendar data"
	ErrCSVRead         = "failed to read CSV"
	ErrCSVWrite        = "failed to write CSV"
	ErrFormatUnknown   = "unsupported file format"
	ErrImportFile      = "failed to import contacts file"
	ErrExportFile      = "failed to export contacts file"
	ErrImportRemote    = "remote import failed"
	ErrLogFile         = "failed to open log file"
	ErrCacheDir        = "could not determine user cache dir"
	ErrConfigDir       = "could not determine user config dir"
	ErrCreateDir       = "could not create app directory"
	ErrFileWatch       = "failed to watch database file"
	ErrAppFailed       = "application failed unexpectedly"
	ErrWriteResp       = "failed to write response body"
	ErrLocalesAccess   = "failed to access embedded locales"
	ErrLocaleLoad      = "failed to load locale file"
	ErrCallURI         = "failed to open dial URI"
	ErrKeyringSave     = "failed to save credentials to keyring"
)

// -----------------------------------------------------------------------------
// HTTP Server Responses
// -----------------------------------------------------------------------------

const (
	HTTPMsgInitializing = "Feed initializing, please try again shortly."
	HTTPMsgMethodNotAll = "Method Not Allowed"
	HTTPMsgTooMany      = "Too Many Requests"
)

// -----------------------------------------------------------------------------
// Messages
// -----------------------------------------------------------------------------

const (
	TitleStartupError = "Startup Error"

	MsgPortBusy       = "Port %s is busy or unavailable."
	MsgAppStop        = "Application stopped gracefully"
	MsgCtxCancel      = "Context cancelled, shutting down UI"
	MsgAppStarting    = "Starting application"
	MsgEngineStarted  = "Contact engine started"
	MsgEngineStopped  = "Contact engine stopped"
	MsgViewUpdated    = "View recomputed"
	MsgViewFailed     = "View query failed, keeping last result"
	MsgWriteDone      = "Contact write applied"
	MsgWriteFailed    = "Contact write failed, dropped"
	MsgWriteDropped   = "Contact write ignored after shutdown"
	MsgStoreOpened    = "Contact database opened"
	MsgExternalWrite  = "Database changed by another process"
	MsgFileWatchError = "Database file watcher error"
	MsgRemoteJoined   = "Remote import already running, joined it"
	MsgImported       = "Contacts imported"
	MsgSkippedCard    = "Stopping at malformed vCard"
	MsgSkippedRow     = "Skipping short CSV row"
	MsgVCardsRead     = "vCard stream parsed"
	MsgFetchStart     = "Initiating vCard download"
	MsgFetchBadStatus = "Server returned error status"
	MsgFetchDone      = "vCards downloading"
	MsgServerListen   = "HTTP server listening"
	MsgServerStop     = "Shutting down HTTP server..."
	MsgCacheUpdated   = "Feed cache updated"
	MsgLocaleSkip     = "Skipping non-locale file"
	MsgLocaleLoaded   = "Locale loaded successfully"
	MsgTransMissing   = "Missing translation key"
	MsgPassFail       = "Password retrieval failed (might be empty)"
	MsgLogWarning     = "Warning: %s at %s: %v\n"
)

// -----------------------------------------------------------------------------
// Structured Logging Keys (slog)
// -----------------------------------------------------------------------------

const (
	LogKeyComponent   = "component"
	LogKeyError       = "error"
	LogKeyURL         = "url"
	LogKeyStatus      = "status_code"
	LogKeyFile        = "file"
	LogKeyLang        = "lang"
	LogKeyKey         = "key"
	LogKeyPort        = "port"
	LogKeyRoute       = "route"
	LogKeyUser        = "user"
	LogKeyView        = "view"
	LogKeyQuery       = "query"
	LogKeyGroup       = "group"
	LogKeyOp          = "op"
	LogKeyRecentLimit = "recent_limit"
	LogKeyTotal       = "total_cards"
	LogKeySkipped     = "skipped"
	LogKeySizeBytes   = "size_bytes"
	LogKeyETag        = "etag"
	LogKeyStats       = "stats"
	LogKeyCount       = "count"
	LogKeyWindow      = "window"
	LogKeyDuration    = "duration_ms"

	// Startup Info Keys
	LogKeyBuild   = "build"
	LogKeyApp     = "app"
	LogKeyVersion = "version"
	LogKeyGoVer   = "go_version"
	LogKeyEnv     = "env"
	LogKeyOS      = "os"
	LogKeyArch    = "arch"
	LogKeyPID     = "pid"
)

// -----------------------------------------------------------------------------
// Log Components
// -----------------------------------------------------------------------------

const (
	CompUI       = "ui"
	CompUISet    = "ui_settings"
	CompEngine   = "engine"
	CompStore    = "store"
	CompExchange = "exchange"
	CompServer   = "server"
	CompFetcher  = "fetcher"
	CompMain     = "main"
	CompI18n     = "i18n"
)
