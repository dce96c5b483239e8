package ui_test

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tartampluch/go-dialer/internal/config"
)

// loadLocale reads one locale file, whatever the test working directory.
func loadLocale(t *testing.T, lang string) map[string]interface{} {
	t.Helper()
	name := "active." + lang + ".json"

	content, err := os.ReadFile(filepath.Join("locales", name))
	if os.IsNotExist(err) {
		content, err = os.ReadFile(filepath.Join("..", "..", "internal", "ui", "locales", name))
	}
	require.NoError(t, err, "Must load %s", name)

	var jsonMap map[string]interface{}
	require.NoError(t, json.Unmarshal(content, &jsonMap), "JSON must be valid")
	return jsonMap
}

// TestI18nIntegrity ensures that every translation key defined in config.go
// exists in every locale file.
func TestI18nIntegrity(t *testing.T) {
	keysToCheck := []string{
		config.TKeyWinTitle,
		config.TKeyWinSettings,
		config.TKeyTabContacts,
		config.TKeyTabFavorites,
		config.TKeyTabRecents,
		config.TKeyTabDialer,
		config.TKeyMenuFile,
		config.TKeyMenuImport,
		config.TKeyMenuExport,
		config.TKeyMenuRemote,
		config.TKeyMenuSettings,
		config.TKeyPhSearch,
		config.TKeyPhDialer,
		config.TKeyBtnAdd,
		config.TKeyBtnCall,
		config.TKeyBtnDelete,
		config.TKeyBtnSave,
		config.TKeyBtnCancel,
		config.TKeyLblName,
		config.TKeyLblPhone,
		config.TKeyLblGroup,
		config.TKeyLblFavorite,
		config.TKeyLblLanguage,
		config.TKeyLblPort,
		config.TKeyHelpPort,
		config.TKeyLblRecent,
		config.TKeyLblURL,
		config.TKeyHelpURL,
		config.TKeyLblUser,
		config.TKeyLblPass,
		config.TKeyLblFooter,
		config.TKeyDlgNew,
		config.TKeyDlgEdit,
		config.TKeyDlgDelete,
		config.TKeyDlgDeleteMsg,
		config.TKeyNotifImport,
		config.TKeyNotifExport,
		config.TKeyEmptyList,
		config.TKeyErrNameReq,
		config.TKeyErrPhoneReq,
		config.TKeyGroupAll,
		config.TKeyGroupFamily,
		config.TKeyGroupWork,
		config.TKeyGroupFriends,
		config.TKeyGroupOther,
		config.TKeyErrPortReq,
		config.TKeyErrPortNum,
		config.TKeyErrPortRange,
	}

	definedKeys := make(map[string]bool)
	for _, k := range keysToCheck {
		definedKeys[k] = true
	}

	for _, lang := range config.SupportedLanguages {
		t.Run(lang, func(t *testing.T) {
			jsonMap := loadLocale(t, lang)

			for key := range definedKeys {
				_, exists := jsonMap[key]
				assert.Truef(t, exists, "Key '%s' defined in config.go is missing in active.%s.json", key, lang)
			}

			// Orphan keys are tolerated but reported.
			for jsonKey := range jsonMap {
				if strings.HasPrefix(jsonKey, "_") {
					continue
				}
				if !definedKeys[jsonKey] {
					t.Logf("Warning: Key '%s' exists in JSON but is not checked in the test suite (might be unused)", jsonKey)
				}
			}
		})
	}
}

// TestI18nPlurals ensures count-driven messages provide both plural forms.
func TestI18nPlurals(t *testing.T) {
	for _, lang := range config.SupportedLanguages {
		jsonMap := loadLocale(t, lang)
		for _, key := range []string{config.TKeyNotifImport, config.TKeyNotifExport} {
			forms, ok := jsonMap[key].(map[string]interface{})
			require.Truef(t, ok, "%s/%s must be a plural object", lang, key)
			assert.Contains(t, forms, "one")
			assert.Contains(t, forms, "other")
			assert.Contains(t, forms["other"], "{{.Count}}")
		}
	}
}
