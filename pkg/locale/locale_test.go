package locale

import (
	"path/filepath"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"osubot/pkg/store"
)

var testSupported = map[string]string{"en": "English", "zh_TW": "繁體中文"}

func newTestLocalizer(t *testing.T) *Localizer {
	t.Helper()
	fsys := fstest.MapFS{
		"en.yaml": {Data: []byte(`
greeting: "Hello, {{.Name}}!"
only_english: "English only"
broken: "{{.Name"
profile:
  title: "Profile of {{.Name}}"
`)},
		"zh_TW.yaml": {Data: []byte(`
greeting: "你好，{{.Name}}！"
`)},
	}
	prefs, err := store.Open[string](filepath.Join(t.TempDir(), "user_lang_prefs.json"))
	require.NoError(t, err)
	l, err := NewFromFS(fsys, "en", testSupported, prefs)
	require.NoError(t, err)
	return l
}

func TestGet_LookupOrder(t *testing.T) {
	l := newTestLocalizer(t)

	assert.Equal(t, "你好，Mia！", l.Get("zh_TW", "greeting", "", Args{"Name": "Mia"}))
	assert.Equal(t, "English only", l.Get("zh_TW", "only_english", "", nil))
	assert.Equal(t, "fallback text", l.Get("zh_TW", "nowhere", "fallback text", nil))
	assert.Equal(t, "<translation_missing: nowhere>", l.Get("en", "nowhere", "", nil))
	assert.Equal(t, "Profile of Mia", l.Get("en", "profile.title", "", Args{"Name": "Mia"}))
}

func TestGet_FormattingErrors(t *testing.T) {
	l := newTestLocalizer(t)

	assert.Equal(t, "<formatting_error: greeting (exec)>", l.Get("en", "greeting", "", nil))
	assert.Equal(t, "<formatting_error: broken (parse)>", l.Get("en", "broken", "", Args{"Name": "x"}))
}

func TestSetUserLanguage(t *testing.T) {
	l := newTestLocalizer(t)

	assert.Equal(t, "en", l.UserLanguage("42"))
	require.NoError(t, l.SetUserLanguage("42", "zh_TW"))
	assert.Equal(t, "zh_TW", l.UserLanguage("42"))

	err := l.SetUserLanguage("42", "fr")
	assert.ErrorIs(t, err, ErrUnsupportedLanguage)
	assert.Equal(t, "zh_TW", l.UserLanguage("42"))

	reopened, err := store.Open[string](l.prefs.Path())
	require.NoError(t, err)
	code, ok := reopened.Get("42")
	assert.True(t, ok)
	assert.Equal(t, "zh_TW", code)
}

func TestResolve_ClientLocale(t *testing.T) {
	l := newTestLocalizer(t)

	assert.Equal(t, "zh_TW", l.Resolve("1", "zh-TW"))
	assert.Equal(t, "en", l.Resolve("1", "en-US"))
	assert.Equal(t, "en", l.Resolve("1", "fr"))
	assert.Equal(t, "en", l.Resolve("1", ""))
	assert.Equal(t, "en", l.Resolve("1", "!!"))

	require.NoError(t, l.SetUserLanguage("1", "en"))
	assert.Equal(t, "en", l.Resolve("1", "zh-TW"))
}

func TestLanguages(t *testing.T) {
	l := newTestLocalizer(t)
	assert.Equal(t, []string{"en", "zh_TW"}, l.Languages())
	assert.Equal(t, "繁體中文", l.DisplayName("zh_TW"))
	assert.Equal(t, "xx", l.DisplayName("xx"))
}

func TestNewFromFS_RejectsUnknownDefault(t *testing.T) {
	_, err := NewFromFS(fstest.MapFS{}, "de", testSupported, nil)
	assert.ErrorIs(t, err, ErrUnsupportedLanguage)
}

func TestEmbeddedCatalogsShareKeys(t *testing.T) {
	l, err := New("en", testSupported, nil)
	require.NoError(t, err)

	en := l.catalogs["en"]
	zh := l.catalogs["zh_TW"]
	require.NotEmpty(t, en)
	for key := range zh {
		_, ok := en[key]
		assert.True(t, ok, "zh_TW key %q missing from en", key)
	}
	for key := range en {
		_, ok := zh[key]
		assert.True(t, ok, "en key %q missing from zh_TW", key)
	}
}
