package placeholder

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	perrors "github.com/marykravets/ks-email-parser/internal/errors"
)

func TestExtract(t *testing.T) {
	testCases := []struct {
		name   string
		source string
		want   Counts
	}{
		{"empty", "", Counts{}},
		{"single", "Hello {{name}}", Counts{"name": 1}},
		{"repeated", "{{a}} and {{a}} and {{b}}", Counts{"a": 2, "b": 1}},
		{"inside attribute", `<a href="{{link}}">{{link}}</a>`, Counts{"link": 2}},
		{"inside comment", "<!-- {{hidden}} -->", Counts{"hidden": 1}},
		{"not identifiers", "{{ spaced }} {{dash-ed}} {single}", Counts{}},
		{"unicode names", "{{prénom}} {{name}} {{名前}}", Counts{"prénom": 1, "name": 1, "名前": 1}},
		{"adjacent", "{{a}}{{b}}{{a}}", Counts{"a": 2, "b": 1}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Extract(tc.source))
		})
	}
}

func TestExtractFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "email.xml")
	require.NoError(t, os.WriteFile(path, []byte(`<string name="content">{{x}} {{x}}</string>`), 0o644))

	counts, err := ExtractFile(path)
	require.NoError(t, err)
	assert.Equal(t, Counts{"x": 2}, counts)

	_, err = ExtractFile(filepath.Join(dir, "missing.xml"))
	assert.True(t, perrors.IsNotFound(err))
}
