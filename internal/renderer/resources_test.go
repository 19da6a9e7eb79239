package renderer

import (
	"errors"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	perrors "github.com/marykravets/ks-email-parser/internal/errors"
)

func testResources() *Resources {
	return NewResources(fstest.MapFS{
		"basic_template.html":     {Data: []byte("<body>{{content}}</body>")},
		"newsletter/monthly.html": {Data: []byte("<body>{{a}}</body>")},
		"newsletter/weekly.html":  {Data: []byte("<body>{{b}}</body>")},
		"basic_template.css":      {Data: []byte("p {color: red}")},
		"header.css":              {Data: []byte("h1 {margin: 0}")},
		"newsletter/readme.txt":   {Data: []byte("ignored")},
	}, nil)
}

func TestResourcesTemplate(t *testing.T) {
	r := testResources()

	body, err := r.Template("basic_template.html")
	require.NoError(t, err)
	assert.Equal(t, "<body>{{content}}</body>", body)

	_, err = r.Template("missing.html")
	assert.True(t, errors.Is(err, perrors.ErrTemplateNotFound))
	assert.True(t, perrors.IsNotFound(err))

	_, err = r.Template("../etc/passwd")
	assert.Error(t, err)
}

func TestResourcesStyles(t *testing.T) {
	r := testResources()

	assert.Equal(t, "h1 {margin: 0}\np {color: red}",
		r.Styles([]string{"header.css", "missing.css", " basic_template.css ", ""}))
	assert.Empty(t, r.Styles(nil))
	assert.Empty(t, r.Styles([]string{"../outside.css"}))
}

func TestResourcesList(t *testing.T) {
	listing, err := testResources().List()
	require.NoError(t, err)

	assert.Equal(t, map[string][]string{
		"":           {"basic_template.html"},
		"newsletter": {"monthly.html", "weekly.html"},
	}, listing.Templates)
	assert.Equal(t, []string{"basic_template.css", "header.css"}, listing.Styles)
}
