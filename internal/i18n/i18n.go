// Copyright (c) 2026 Blog Team
// Blog - REST blog back end
// This source code is licensed under the MIT license found in the LICENSE file.

// Package i18n provides localized user-facing messages. Translations are
// embedded YAML files loaded into a go-i18n bundle; API handlers pick a
// Translator from the request's Accept-Language header.
package i18n

import (
	"embed"
	"fmt"
	"io/fs"
	"strings"
	"sync"

	"github.com/nicksnyder/go-i18n/v2/i18n"
	"golang.org/x/text/language"
	"golang.org/x/text/language/display"
	"gopkg.in/yaml.v3"
)

// localeFS embeds the YAML translation files from the 'locales' directory
// into the application binary.
//
//go:embed locales/*.yaml
var localeFS embed.FS

var (
	bundleOnce sync.Once
	bundle     *i18n.Bundle

	mu          sync.RWMutex
	currentLang = "en"
	localizer   *i18n.Localizer
)

func loadBundle() *i18n.Bundle {
	bundleOnce.Do(func() {
		bundle = i18n.NewBundle(language.English)
		bundle.RegisterUnmarshalFunc("yaml", yaml.Unmarshal)

		files, _ := fs.ReadDir(localeFS, "locales")
		for _, f := range files {
			if f.IsDir() {
				continue
			}
			data, err := localeFS.ReadFile("locales/" + f.Name())
			if err != nil {
				continue
			}
			_, _ = bundle.ParseMessageFileBytes(data, f.Name())
		}
	})
	return bundle
}

// Init sets the default language used by T and as the fallback of For.
func Init(lang string) {
	lang = strings.TrimSpace(lang)
	if lang == "" {
		lang = "en"
	}
	loc := i18n.NewLocalizer(loadBundle(), lang)
	mu.Lock()
	currentLang = lang
	localizer = loc
	mu.Unlock()
}

// SetLang changes the default language.
func SetLang(lang string) {
	Init(lang)
}

// GetLang returns the default language.
func GetLang() string {
	mu.RLock()
	defer mu.RUnlock()
	return currentLang
}

// GetAvailableLocales maps every embedded language tag to its name in that
// language.
func GetAvailableLocales() map[string]string {
	out := map[string]string{}
	for _, tag := range loadBundle().LanguageTags() {
		out[tag.String()] = display.Self.Name(tag)
	}
	return out
}

// Translator localizes messages for one request.
type Translator struct {
	loc *i18n.Localizer
}

// For returns a Translator preferring the given Accept-Language values and
// falling back to the default language.
func For(acceptLanguage ...string) Translator {
	langs := append([]string{}, acceptLanguage...)
	langs = append(langs, GetLang())
	return Translator{loc: i18n.NewLocalizer(loadBundle(), langs...)}
}

// T translates messageID. A single map argument is used as template data;
// other arguments are applied with fmt.Sprintf. Unknown IDs are returned as is.
func (t Translator) T(messageID string, args ...interface{}) string {
	return localize(t.loc, messageID, args...)
}

// T translates messageID in the default language.
func T(messageID string, args ...interface{}) string {
	mu.RLock()
	loc := localizer
	mu.RUnlock()
	if loc == nil {
		Init("en")
		mu.RLock()
		loc = localizer
		mu.RUnlock()
	}
	return localize(loc, messageID, args...)
}

func localize(loc *i18n.Localizer, messageID string, args ...interface{}) string {
	cfg := &i18n.LocalizeConfig{MessageID: messageID}
	if len(args) == 1 {
		if data, ok := args[0].(map[string]interface{}); ok {
			cfg.TemplateData = data
			args = nil
		}
	}
	msg, err := loc.Localize(cfg)
	if err != nil {
		// go-i18n returns an error for unknown IDs; fall back to the ID.
		return messageID
	}
	if len(args) > 0 {
		return fmt.Sprintf(msg, args...)
	}
	return msg
}
