package ui

import (
	"embed"
	"encoding/json"
	"log/slog"
	"path"
	"strings"

	"github.com/nicksnyder/go-i18n/v2/i18n"
	"github.com/tartampluch/go-dialer/internal/config"
	"github.com/tartampluch/go-dialer/internal/engine"
	"golang.org/x/text/language"
)

//go:embed locales/*.json
var localeFS embed.FS

// SetupI18n loads every embedded locales/active.<lang>.json file and
// selects the preferred language. Files that fail to parse are skipped;
// their language is not offered in the settings.
func (app *DialerApp) SetupI18n() {
	bundle := i18n.NewBundle(language.English)
	bundle.RegisterUnmarshalFunc("json", json.Unmarshal)
	log := slog.With(config.LogKeyComponent, config.CompI18n)

	entries, err := localeFS.ReadDir(localeDir)
	if err != nil {
		log.Error(config.ErrLocalesAccess, config.LogKeyError, err)
		return
	}

	langs := make([]string, 0, len(entries))
	for _, entry := range entries {
		code, ok := localeCode(entry.Name())
		if !ok {
			log.Debug(config.MsgLocaleSkip, config.LogKeyFile, entry.Name())
			continue
		}
		if _, err := bundle.LoadMessageFileFS(localeFS, path.Join(localeDir, entry.Name())); err != nil {
			log.Error(config.ErrLocaleLoad, config.LogKeyFile, entry.Name(), config.LogKeyError, err)
			continue
		}
		log.Debug(config.MsgLocaleLoaded, config.LogKeyLang, code)
		langs = append(langs, code)
	}

	app.SupportedLanguages = langs
	app.I18nBundle = bundle
	app.UpdateLocalizer()
}

const localeDir = "locales"

// localeCode extracts "fr" from "active.fr.json".
func localeCode(name string) (string, bool) {
	code, ok := strings.CutPrefix(name, "active.")
	if !ok {
		return "", false
	}
	code, ok = strings.CutSuffix(code, ".json")
	return code, ok && code != ""
}

// UpdateLocalizer refreshes the translator based on the user's language preference.
func (app *DialerApp) UpdateLocalizer() {
	lang := app.Preferences.String(config.PrefLanguage)
	if lang == "" {
		lang = config.DefaultLanguage
	}
	app.Localizer = i18n.NewLocalizer(app.I18nBundle, lang)
}

// GetMsg is a helper to translate a key safely.
func (app *DialerApp) GetMsg(key string) string {
	if app.Localizer == nil {
		return key
	}
	msg, err := app.Localizer.Localize(&i18n.LocalizeConfig{MessageID: key})
	if err != nil {
		slog.Debug(config.MsgTransMissing,
			config.LogKeyComponent, config.CompI18n,
			config.LogKeyKey, key,
			config.LogKeyError, err,
		)
		return key
	}
	return msg
}

// GetMsgCount translates a pluralized key taking a Count template field.
func (app *DialerApp) GetMsgCount(key string, count int) string {
	return app.getMsgData(key, map[string]interface{}{"Count": count}, count)
}

// GetMsgName translates a key taking a Name template field.
func (app *DialerApp) GetMsgName(key, name string) string {
	return app.getMsgData(key, map[string]interface{}{"Name": name}, nil)
}

func (app *DialerApp) getMsgData(key string, data map[string]interface{}, plural interface{}) string {
	if app.Localizer == nil {
		return key
	}
	msg, err := app.Localizer.Localize(&i18n.LocalizeConfig{
		MessageID:    key,
		TemplateData: data,
		PluralCount:  plural,
	})
	if err != nil {
		slog.Debug(config.MsgTransMissing,
			config.LogKeyComponent, config.CompI18n,
			config.LogKeyKey, key,
			config.LogKeyError, err,
		)
		return key
	}
	return msg
}

// groupLabel translates an engine group value. Unknown groups are shown as is.
func (app *DialerApp) groupLabel(group string) string {
	key, ok := groupKeys[group]
	if !ok {
		return group
	}
	return app.GetMsg(key)
}

var groupKeys = map[string]string{
	engine.GroupAll:     config.TKeyGroupAll,
	engine.GroupFamily:  config.TKeyGroupFamily,
	engine.GroupWork:    config.TKeyGroupWork,
	engine.GroupFriends: config.TKeyGroupFriends,
	engine.GroupOther:   config.TKeyGroupOther,
}
