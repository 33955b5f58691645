package render

import "strings"

// TemplateI18nConfig configures template-level translation helpers.
type TemplateI18nConfig struct {
	// FuncName customizes the translator helper name (defaults to "t").
	FuncName string
	// OnMissing controls the string returned when a translation is missing.
	OnMissing MissingTranslationHandler
}

// TemplateI18nFuncs returns context entries for template engines, bound to a
// single locale:
//
//	t(key, ...args) string
//	current_locale() string
func TemplateI18nFuncs(t Translator, locale string, cfg TemplateI18nConfig) map[string]any {
	name := strings.TrimSpace(cfg.FuncName)
	if name == "" {
		name = "t"
	}
	onMissing := cfg.OnMissing
	if onMissing == nil {
		onMissing = missingTranslationDefault
	}

	return map[string]any{
		name: func(key string, params ...any) string {
			key = strings.TrimSpace(key)
			if key == "" {
				return ""
			}
			if t == nil {
				return onMissing(locale, key, params, ErrMissingTranslator)
			}
			msg, err := t.Translate(locale, key, params...)
			if err != nil || strings.TrimSpace(msg) == "" {
				return onMissing(locale, key, params, err)
			}
			return msg
		},
		"current_locale": func() string {
			return locale
		},
	}
}
