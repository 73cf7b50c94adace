// Package i18n renders user-facing error messages in the caller's language.
package i18n

import (
	"bytes"
	"strings"
	"sync"
	"text/template"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Code is a machine-readable error code (duplicated from errors package to avoid cycle).
type Code = string

// BaseLocale is the fallback locale for unknown or missing languages.
const BaseLocale = "en-US"

// Catalog formats error messages for one locale.
type Catalog struct {
	locale  string
	printer *message.Printer
	known   map[Code]bool

	mu        sync.Mutex
	templates map[Code]*template.Template
}

var (
	supportedTags = []language.Tag{language.AmericanEnglish, language.BrazilianPortuguese}
	matcher       = language.NewMatcher(supportedTags)

	catalogs = func() map[string]*Catalog {
		out := make(map[string]*Catalog, len(supportedTags))
		for _, tag := range supportedTags {
			locale := tag.String()
			messages := localeMessages[locale]
			known := make(map[Code]bool, len(messages))
			for code, text := range messages {
				_ = message.SetString(tag, code, text)
				known[code] = true
			}
			out[locale] = &Catalog{
				locale:    locale,
				printer:   message.NewPrinter(tag),
				known:     known,
				templates: map[Code]*template.Template{},
			}
		}
		return out
	}()
)

// ResolveLocale picks the best supported locale for an Accept-Language
// header or a plain tag such as "pt" or "pt-BR".
func ResolveLocale(preference string) string {
	preference = strings.TrimSpace(preference)
	if preference == "" {
		return BaseLocale
	}
	tags, _, err := language.ParseAcceptLanguage(preference)
	if err != nil || len(tags) == 0 {
		return BaseLocale
	}
	_, index, confidence := matcher.Match(tags...)
	if confidence == language.No {
		return BaseLocale
	}
	return supportedTags[index].String()
}

// GetCatalog returns the catalog for the best match of locale.
func GetCatalog(locale string) *Catalog {
	return catalogs[ResolveLocale(locale)]
}

// Locale returns the locale of this catalog.
func (c *Catalog) Locale() string {
	return c.locale
}

// Format renders the message for code with metadata as template data.
// Unknown codes render as the code itself.
func (c *Catalog) Format(code Code, metadata map[string]string) string {
	if !c.known[code] {
		return code
	}
	text := c.printer.Sprintf(code)

	tmpl, err := c.template(code, text)
	if err != nil {
		return text
	}
	if metadata == nil {
		metadata = map[string]string{}
	}
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, metadata); err != nil {
		return text
	}
	return buf.String()
}

func (c *Catalog) template(code Code, text string) (*template.Template, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if tmpl, ok := c.templates[code]; ok {
		return tmpl, nil
	}
	tmpl, err := template.New(code).Option("missingkey=zero").Parse(text)
	if err != nil {
		return nil, err
	}
	c.templates[code] = tmpl
	return tmpl, nil
}
