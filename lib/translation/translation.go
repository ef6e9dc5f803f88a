package translation

import (
	"github.com/leonelquinteros/gotext"
	"strings"
)

// Configure loads locales/<lang>/LC_MESSAGES/default.po. Missing files leave message IDs untranslated.
func Configure(localesDir, lang string) {
	gotext.Configure(localesDir, strings.ToLower(lang), "default")
}

func GetLanguage() string {
	lang := gotext.GetLanguage()

	if lang == "und" || lang == "" {
		return "en"
	}

	return lang
}

func Translate(msgID string, vars ...interface{}) string {
	return gotext.Get(msgID, vars...)
}
