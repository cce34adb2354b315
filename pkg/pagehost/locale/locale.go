// Package locale renders navigation results and lifecycle states as
// user-facing text. English and German messages are built in.
package locale

import (
	"embed"
	"fmt"
	"path"

	"github.com/BurntSushi/toml"
	"github.com/nicksnyder/go-i18n/v2/i18n"
	"golang.org/x/text/language"

	"github.com/BrandonKowalski/pagehost/pkg/pagehost/lifecycle"
	"github.com/BrandonKowalski/pagehost/pkg/pagehost/router"
)

//go:embed messages/*.toml
var messageFS embed.FS

// Localizer looks up messages for one preferred language list.
type Localizer struct {
	tag       language.Tag
	localizer *i18n.Localizer
}

// New builds a localizer for the given BCP 47 tags, most preferred first.
// Languages without built-in messages fall back to English.
func New(tags ...string) (*Localizer, error) {
	bundle := i18n.NewBundle(language.English)
	bundle.RegisterUnmarshalFunc("toml", toml.Unmarshal)

	entries, err := messageFS.ReadDir("messages")
	if err != nil {
		return nil, fmt.Errorf("read embedded messages: %w", err)
	}
	for _, e := range entries {
		if _, err := bundle.LoadMessageFileFS(messageFS, path.Join("messages", e.Name())); err != nil {
			return nil, fmt.Errorf("load %s: %w", e.Name(), err)
		}
	}

	preferred := make([]language.Tag, 0, len(tags))
	for _, raw := range tags {
		if raw == "" {
			continue
		}
		tag, err := language.Parse(raw)
		if err != nil {
			return nil, fmt.Errorf("locale %q: %w", raw, err)
		}
		preferred = append(preferred, tag)
	}

	matched, _, _ := language.NewMatcher(bundle.LanguageTags()).Match(preferred...)
	base, _ := matched.Base()
	return &Localizer{
		tag:       language.Make(base.String()),
		localizer: i18n.NewLocalizer(bundle, tags...),
	}, nil
}

// Tag is the built-in language that best matches the requested ones.
func (l *Localizer) Tag() language.Tag { return l.tag }

// Describe returns the text for a navigation result.
func (l *Localizer) Describe(res router.Result) string {
	return l.message("result_" + res.Kind.String())
}

// DescribeStart returns the status text shown while a start is handled.
func (l *Localizer) DescribeStart(kind lifecycle.StartKind) string {
	return l.message("start_" + kind.String())
}

// HistoryDepth returns a pluralized description of a back stack of n pages.
func (l *Localizer) HistoryDepth(n int) string {
	msg, err := l.localizer.Localize(&i18n.LocalizeConfig{
		MessageID:    "history_entries",
		PluralCount:  n,
		TemplateData: map[string]int{"Count": n},
	})
	if err != nil {
		return fmt.Sprintf("%d", n)
	}
	return msg
}

func (l *Localizer) message(id string) string {
	msg, err := l.localizer.Localize(&i18n.LocalizeConfig{MessageID: id})
	if err != nil {
		return id
	}
	return msg
}
