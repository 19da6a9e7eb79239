package placeholder

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marykravets/ks-email-parser/internal/types"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := NewStore(4, nil)
	require.NoError(t, err)
	return store
}

func writeEmail(t *testing.T, root, locale, name, content string) types.Email {
	t.Helper()
	dir := filepath.Join(root, locale)
	require.NoError(t, os.MkdirAll(dir, 0o755))
	path := filepath.Join(dir, name+".xml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return types.Email{Name: name, Locale: locale, Path: path}
}

func TestEncodeIsStable(t *testing.T) {
	shapes := Shapes{
		"welcome": {"zeta": 1, "alpha": 2},
		"account": {"link": 1},
	}

	data, err := Encode(shapes)
	require.NoError(t, err)

	want := "{\n" +
		"    \"account\": {\n" +
		"        \"link\": 1\n" +
		"    },\n" +
		"    \"welcome\": {\n" +
		"        \"alpha\": 2,\n" +
		"        \"zeta\": 1\n" +
		"    }\n" +
		"}"
	assert.Equal(t, want, string(data))

	again, err := Encode(shapes)
	require.NoError(t, err)
	assert.Equal(t, data, again)

	empty, err := Encode(nil)
	require.NoError(t, err)
	assert.Equal(t, "{}", string(empty))
}

func TestStoreSaveAndLoad(t *testing.T) {
	dir := t.TempDir()
	store := newTestStore(t)

	_, err := store.Load(dir)
	require.Error(t, err)

	require.NoError(t, store.Save(dir, Shapes{"welcome": {"a": 1}}))

	shapes, err := store.Load(dir)
	require.NoError(t, err)
	assert.Equal(t, Shapes{"welcome": {"a": 1}}, shapes)
}

func TestStoreCachesUntilInvalidated(t *testing.T) {
	dir := t.TempDir()
	store := newTestStore(t)
	require.NoError(t, store.Save(dir, Shapes{"welcome": {"a": 1}}))

	_, err := store.Load(dir)
	require.NoError(t, err)

	// Modify the file behind the store's back; the cached copy is served.
	require.NoError(t, os.WriteFile(store.Path(dir), []byte(`{"welcome":{"a":5}}`), 0o644))
	shapes, err := store.Load(dir)
	require.NoError(t, err)
	assert.Equal(t, 1, shapes["welcome"]["a"])

	store.Invalidate(dir)
	shapes, err = store.Load(dir)
	require.NoError(t, err)
	assert.Equal(t, 5, shapes["welcome"]["a"])
}

func TestStoreSaveInvalidatesCache(t *testing.T) {
	dir := t.TempDir()
	store := newTestStore(t)
	require.NoError(t, store.Save(dir, Shapes{"welcome": {"a": 1}}))
	_, err := store.Load(dir)
	require.NoError(t, err)

	require.NoError(t, store.Save(dir, Shapes{"welcome": {"a": 2}}))

	shapes, err := store.Load(dir)
	require.NoError(t, err)
	assert.Equal(t, 2, shapes["welcome"]["a"])
}

func TestStoreLoadRejectsInvalidJSON(t *testing.T) {
	dir := t.TempDir()
	store := newTestStore(t)
	require.NoError(t, os.WriteFile(store.Path(dir), []byte("{not json"), 0o644))

	_, err := store.Load(dir)
	assert.Error(t, err)

	_, ok, err := store.Expected(dir, "welcome")
	assert.Error(t, err)
	assert.False(t, ok)
}

func TestStoreExpected(t *testing.T) {
	dir := t.TempDir()
	store := newTestStore(t)

	_, ok, err := store.Expected(dir, "welcome")
	require.NoError(t, err)
	assert.False(t, ok, "no file means nothing to check")

	require.NoError(t, store.Save(dir, Shapes{"welcome": {"a": 1}}))

	shape, ok, err := store.Expected(dir, "welcome")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, Shape{"a": 1}, shape)

	shape, ok, err = store.Expected(dir, "unknown")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Empty(t, shape)
}

func TestStoreValidateEmail(t *testing.T) {
	dir := t.TempDir()
	store := newTestStore(t)
	fr := writeEmail(t, dir, "fr", "welcome", "{{a}} {{b}}")

	result, err := store.ValidateEmail(dir, fr)
	require.NoError(t, err)
	assert.True(t, result.Valid(), "validation is vacuous without a config file")

	require.NoError(t, store.Save(dir, Shapes{"welcome": {"a": 2}}))

	result, err = store.ValidateEmail(dir, fr)
	require.NoError(t, err)
	assert.False(t, result.Valid())
	assert.Equal(t, []Finding{
		{Kind: ExtraPlaceholder, Name: "b"},
		{Kind: CountMismatch, Name: "a", Expected: 2, Actual: 1},
	}, result.Findings)
}

func TestRegenerateUsesCanonicalLocale(t *testing.T) {
	dir := t.TempDir()
	store := newTestStore(t)
	emails := []types.Email{
		writeEmail(t, dir, "en", "welcome", "{{a}} {{a}} {{b}}"),
		writeEmail(t, dir, "fr", "welcome", "{{a}} {{a}} {{a}} {{c}}"),
		writeEmail(t, dir, "en", "reset", "{{link}}"),
	}

	shapes, err := store.Regenerate(dir, emails, "en")
	require.NoError(t, err)
	assert.Equal(t, Shapes{
		"welcome": {"a": 2, "b": 1},
		"reset":   {"link": 1},
	}, shapes)

	first, err := os.ReadFile(store.Path(dir))
	require.NoError(t, err)

	_, err = store.Regenerate(dir, emails, "en")
	require.NoError(t, err)
	second, err := os.ReadFile(store.Path(dir))
	require.NoError(t, err)
	assert.Equal(t, first, second, "regeneration must be byte-identical")
}

func TestRegenerateAllLocales(t *testing.T) {
	dir := t.TempDir()
	emails := []types.Email{
		writeEmail(t, dir, "en", "welcome", "{{a}}"),
		writeEmail(t, dir, "fr", "welcome", "{{a}} {{a}}"),
	}

	shapes, err := Generate(emails, "")
	require.NoError(t, err)
	assert.Equal(t, Shapes{"welcome": {"a": 2}}, shapes)
}

func TestRegenerateWithoutEmailsWritesNothing(t *testing.T) {
	dir := t.TempDir()
	store := newTestStore(t)

	shapes, err := store.Regenerate(dir, nil, "en")
	require.NoError(t, err)
	assert.Empty(t, shapes)

	_, err = os.Stat(store.Path(dir))
	assert.True(t, os.IsNotExist(err))
}
