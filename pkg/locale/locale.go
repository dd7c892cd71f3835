package locale

import (
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"
	"text/template"

	"go.uber.org/zap"
	"golang.org/x/text/language"
	yaml "gopkg.in/yaml.v3"

	"osubot/pkg/store"
)

//go:embed locales/*.yaml
var catalogFiles embed.FS

var ErrUnsupportedLanguage = errors.New("locale: unsupported language")

// Args are the named values a message template may reference.
type Args map[string]any

// Localizer resolves message keys per user. Catalog values are
// text/template strings; a user's preference is persisted in prefs.
type Localizer struct {
	catalogs    map[string]map[string]string
	defaultLang string
	supported   map[string]string
	codes       []string
	matcher     language.Matcher
	prefs       *store.JSONFile[string]
}

// New loads the embedded catalogs.
func New(defaultLang string, supported map[string]string, prefs *store.JSONFile[string]) (*Localizer, error) {
	sub, err := fs.Sub(catalogFiles, "locales")
	if err != nil {
		return nil, err
	}
	return NewFromFS(sub, defaultLang, supported, prefs)
}

// NewFromFS loads one <code>.yaml catalog per supported language from fsys.
func NewFromFS(fsys fs.FS, defaultLang string, supported map[string]string, prefs *store.JSONFile[string]) (*Localizer, error) {
	if _, ok := supported[defaultLang]; !ok {
		return nil, fmt.Errorf("%w: default %q is not in the supported list", ErrUnsupportedLanguage, defaultLang)
	}

	l := &Localizer{
		catalogs:    make(map[string]map[string]string),
		defaultLang: defaultLang,
		supported:   supported,
		prefs:       prefs,
	}

	// The default language goes first so the matcher falls back to it.
	l.codes = append(l.codes, defaultLang)
	for code := range supported {
		if code != defaultLang {
			l.codes = append(l.codes, code)
		}
	}
	sort.Strings(l.codes[1:])

	tags := make([]language.Tag, 0, len(l.codes))
	for _, code := range l.codes {
		raw, err := fs.ReadFile(fsys, path.Clean(code+".yaml"))
		if err != nil {
			zap.S().Errorf("[L10N] Catalog for %s not found: %v", code, err)
			l.catalogs[code] = map[string]string{}
		} else {
			flat, err := parseCatalog(raw)
			if err != nil {
				return nil, fmt.Errorf("parse %s catalog: %w", code, err)
			}
			l.catalogs[code] = flat
			zap.S().Debugf("[L10N] Loaded %d messages for %s", len(flat), code)
		}
		tags = append(tags, language.Make(strings.ReplaceAll(code, "_", "-")))
	}
	l.matcher = language.NewMatcher(tags)
	return l, nil
}

func parseCatalog(raw []byte) (map[string]string, error) {
	var m map[string]any
	if err := yaml.Unmarshal(raw, &m); err != nil {
		return nil, err
	}
	flat := make(map[string]string)
	if err := flatten(m, "", flat); err != nil {
		return nil, err
	}
	return flat, nil
}

func flatten(src any, prefix string, out map[string]string) error {
	switch v := src.(type) {
	case map[string]any:
		for k, vv := range v {
			key := k
			if prefix != "" {
				key = prefix + "." + k
			}
			if err := flatten(vv, key, out); err != nil {
				return err
			}
		}
		return nil
	case string:
		if prefix == "" {
			return errors.New("string value without key")
		}
		out[prefix] = v
		return nil
	case nil:
		return nil
	default:
		return fmt.Errorf("unsupported value at %s: %T", prefix, v)
	}
}

func (l *Localizer) DefaultLanguage() string { return l.defaultLang }

// Languages returns the supported codes, default first.
func (l *Localizer) Languages() []string {
	return append([]string(nil), l.codes...)
}

// DisplayName is the human name configured for code.
func (l *Localizer) DisplayName(code string) string {
	if name, ok := l.supported[code]; ok {
		return name
	}
	return code
}

func (l *Localizer) Supported(code string) bool {
	_, ok := l.supported[code]
	return ok
}

// UserLanguage is the stored preference, or the default language.
func (l *Localizer) UserLanguage(userID string) string {
	if l.prefs != nil {
		if code, ok := l.prefs.Get(userID); ok && l.Supported(code) {
			return code
		}
	}
	return l.defaultLang
}

// Resolve prefers a stored preference and otherwise matches the user's
// Discord client locale ("zh-TW", "en-US") against the supported list.
func (l *Localizer) Resolve(userID, clientLocale string) string {
	if l.prefs != nil {
		if code, ok := l.prefs.Get(userID); ok && l.Supported(code) {
			return code
		}
	}
	if clientLocale == "" {
		return l.defaultLang
	}
	tag, err := language.Parse(clientLocale)
	if err != nil {
		return l.defaultLang
	}
	_, idx, confidence := l.matcher.Match(tag)
	if confidence == language.No || idx < 0 || idx >= len(l.codes) {
		return l.defaultLang
	}
	return l.codes[idx]
}

// SetUserLanguage stores code for userID.
func (l *Localizer) SetUserLanguage(userID, code string) error {
	if !l.Supported(code) {
		zap.S().Warnf("[L10N] Rejected unsupported language %q for user %s", code, userID)
		return fmt.Errorf("%w: %s", ErrUnsupportedLanguage, code)
	}
	if l.prefs == nil {
		return errors.New("locale: no preference store configured")
	}
	if err := l.prefs.Set(userID, code); err != nil {
		return fmt.Errorf("save language preference: %w", err)
	}
	zap.S().Infof("[L10N] User %s language set to %s", userID, code)
	return nil
}

// Get looks key up in lang, then in the default language, then uses
// fallback. A key found nowhere renders as <translation_missing: key>.
// The message is executed as a template against args; a template that
// cannot be rendered yields <formatting_error: key (kind)>.
func (l *Localizer) Get(lang, key, fallback string, args Args) string {
	msg, ok := l.catalogs[lang][key]
	if !ok && lang != l.defaultLang {
		msg, ok = l.catalogs[l.defaultLang][key]
	}
	if !ok {
		if fallback == "" {
			return fmt.Sprintf("<translation_missing: %s>", key)
		}
		msg = fallback
	}
	return render(key, msg, args)
}

func render(key, msg string, args Args) string {
	if !strings.Contains(msg, "{{") {
		return msg
	}
	tpl, err := template.New(key).Option("missingkey=error").Parse(msg)
	if err != nil {
		zap.S().Errorf("[L10N] Bad template for %s: %v", key, err)
		return fmt.Sprintf("<formatting_error: %s (parse)>", key)
	}
	var b strings.Builder
	if err := tpl.Execute(&b, args); err != nil {
		zap.S().Errorf("[L10N] Failed to render %s: %v", key, err)
		return fmt.Sprintf("<formatting_error: %s (exec)>", key)
	}
	return b.String()
}
