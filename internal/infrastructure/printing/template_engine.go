package printing

import (
	"bytes"
	"fmt"
	"html/template"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// TemplateEngine parses the report layouts once and renders them with
// formatting helpers for money, quantities and dates.
type TemplateEngine struct {
	templates *template.Template
}

// NewTemplateEngine parses the built-in report layouts.
func NewTemplateEngine() (*TemplateEngine, error) {
	root := template.New("reports").Funcs(funcMap())
	for name, content := range defaultTemplates {
		if _, err := root.New(name).Parse(content); err != nil {
			return nil, fail(FailureTemplate, "parse "+name, err)
		}
	}
	return &TemplateEngine{templates: root}, nil
}

// Render executes the named layout with data.
func (e *TemplateEngine) Render(name string, data any) (string, error) {
	if e.templates.Lookup(name) == nil {
		return "", fail(FailureTemplate, "unknown template "+name, nil)
	}
	var buf bytes.Buffer
	if err := e.templates.ExecuteTemplate(&buf, name, data); err != nil {
		return "", fail(FailureTemplate, "execute "+name, err)
	}
	return buf.String(), nil
}

func funcMap() template.FuncMap {
	return template.FuncMap{
		"money":    formatMoney,
		"qty":      formatQuantity,
		"date":     formatDate,
		"dateTime": formatDateTime,
		"humanize": humanize,
		"upper":    strings.ToUpper,
	}
}

// formatMoney renders a dollar amount with thousands separators.
// Example: 1234.5 -> "$1,234.50"
func formatMoney(d decimal.Decimal) string {
	sign := ""
	if d.IsNegative() {
		sign = "-"
		d = d.Abs()
	}
	whole, cents, _ := strings.Cut(d.StringFixed(2), ".")

	var b strings.Builder
	for i, c := range whole {
		if i > 0 && (len(whole)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(c)
	}
	return sign + "$" + b.String() + "." + cents
}

// formatQuantity drops trailing zeros: 2.500 -> "2.5", 3.000 -> "3".
func formatQuantity(d decimal.Decimal) string {
	return d.String()
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format("2 Jan 2006")
}

func formatDateTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format("2 Jan 2006 15:04")
}

var titleCaser = cases.Title(language.English)

// humanize turns codes such as "ready_for_delivery" into "Ready For Delivery".
func humanize(v any) string {
	s := strings.ReplaceAll(fmt.Sprint(v), "_", " ")
	return titleCaser.String(s)
}
