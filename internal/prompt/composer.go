// Package prompt builds generation requests from contextual facts, the
// catalog snapshot and the user's message.
package prompt

import (
	"bytes"
	"embed"
	"encoding/json"
	"fmt"
	"strings"
	"text/template"
	"time"

	"github.com/kaicatering/kai/internal/common"
	"github.com/kaicatering/kai/internal/model"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

// DefaultLocale is the deployment locale embedded in every prompt.
const DefaultLocale = "Soweto, Gauteng, South Africa"

// Clock supplies wall-clock time. Injectable so prompt output is
// deterministic under test.
type Clock func() time.Time

// Composer renders the recommendation prompt. It is pure apart from the
// injected clock: the same snapshot, message and instant always produce the
// same payload, and inputs are never mutated.
type Composer struct {
	clock    Clock
	template *template.Template
	locale   string
}

// promptData is the template input.
type promptData struct {
	Date    string
	Time    string
	Locale  string
	Catalog string
	Message string
}

// NewComposer creates a Composer for the given deployment locale.
func NewComposer(locale string, clock Clock) (*Composer, error) {
	if locale == "" {
		locale = DefaultLocale
	}
	if clock == nil {
		clock = time.Now
	}

	tmpl, err := template.ParseFS(templateFS, "templates/recommend.tmpl")
	if err != nil {
		return nil, fmt.Errorf("failed to parse prompt template: %w", err)
	}

	return &Composer{locale: locale, clock: clock, template: tmpl}, nil
}

// Build composes the generation prompt. The catalog snapshot is embedded
// verbatim as serialized JSON; an empty snapshot still composes, since the
// backend is expected to answer it with an empty recommendation set.
func (c *Composer) Build(snapshot []model.Caterer, message string) (string, error) {
	if strings.TrimSpace(message) == "" {
		return "", common.ErrEmptyMessage
	}

	if snapshot == nil {
		snapshot = []model.Caterer{}
	}
	catalog, err := json.Marshal(snapshot)
	if err != nil {
		return "", fmt.Errorf("failed to serialize catalog snapshot: %w", err)
	}

	now := c.clock()
	data := promptData{
		Date:    now.Format("2006-01-02"),
		Time:    now.Format("15:04:05"),
		Locale:  c.locale,
		Catalog: string(catalog),
		Message: message,
	}

	var buf bytes.Buffer
	if err := c.template.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to render prompt: %w", err)
	}
	return buf.String(), nil
}
