package helpers

import (
	"github.com/dustin/go-humanize"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"math"
	"strings"
	"time"
)

func EscapeMarkdownV2(text string) string {
	charactersToEscape := []string{".", "-", "_", "*", "[", "]", "(", ")", "~", "`", ">", "#", "+", "=", "|", "{", "}", "!"}

	for _, char := range charactersToEscape {
		text = strings.ReplaceAll(text, char, "\\"+char)
	}
	return text
}

func FormatPriceUS(price float64, escapeMarkdown bool) string {
	decimals := 6

	if price >= 1000 {
		decimals = 0
	} else if price > 1.2 {
		decimals = 2
	} else if price < 0.00001 {
		decimals = 8
	}

	p := message.NewPrinter(language.English)
	formatted := p.Sprintf("%.*f", decimals, price)

	if escapeMarkdown {
		return EscapeMarkdownV2(formatted)
	}
	return formatted
}

// FormatUSD renders a whole-dollar amount such as "$30,050".
func FormatUSD(price float64) string {
	p := message.NewPrinter(language.English)
	if price < 0 {
		return p.Sprintf("-$%d", int64(math.Round(-price)))
	}
	return p.Sprintf("$%d", int64(math.Round(price)))
}

// FormatPercentage renders a percentage with two decimals; nil and NaN render as 0.00.
func FormatPercentage(value *float64) string {
	if value == nil || math.IsNaN(*value) {
		return "0.00"
	}
	p := message.NewPrinter(language.English)
	return p.Sprintf("%.2f", *value)
}

// FormatUpdated renders a timestamp relative to now ("2 minutes ago").
func FormatUpdated(t time.Time) string {
	if t.IsZero() {
		return "never"
	}
	return humanize.Time(t)
}

func RoundTo(value float64, decimals int) float64 {
	pow := math.Pow(10, float64(decimals))
	return math.Round(value*pow) / pow
}
