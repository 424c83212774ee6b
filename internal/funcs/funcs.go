package funcs

import (
	"strings"
	"text/template"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var printer = message.NewPrinter(language.BrazilianPortuguese)

// TemplateFuncs is merged into every email template.
var TemplateFuncs = template.FuncMap{
	"now":        time.Now,
	"formatTime": formatTime,
	"formatBRL":  FormatBRL,
	"upper":      strings.ToUpper,
	"lower":      strings.ToLower,
}

func formatTime(format string, t time.Time) string {
	return t.Format(format)
}

// FormatBRL renders an amount in centavos as Brazilian currency,
// e.g. 1234567 -> "R$ 12.345,67".
func FormatBRL(centavos int64) string {
	return printer.Sprintf("R$ %.2f", float64(centavos)/100)
}
