// Package reader parses email source documents.
//
// A source document is an XML file of the form
//
//	<resources template="basic_template.html" style="basic_template.css,header.css">
//	    <string name="subject">Welcome</string>
//	    <string name="content">Hello **there**</string>
//	</resources>
//
// The template attribute names the HTML template, the style attribute lists
// stylesheets in the order their rules apply, and every string element is a
// placeholder value. Document order of the string elements is preserved.
package reader

import (
	"bytes"
	"encoding/xml"
	"io"
	"os"
	"path/filepath"
	"strings"

	perrors "github.com/marykravets/ks-email-parser/internal/errors"
	"github.com/marykravets/ks-email-parser/internal/types"
)

// Extension is the file extension of source documents.
const Extension = ".xml"

type resources struct {
	XMLName  xml.Name `xml:"resources"`
	Template string   `xml:"template,attr"`
	Style    string   `xml:"style,attr"`
	Strings  []entry  `xml:"string"`
}

type entry struct {
	Name    string `xml:"name,attr"`
	Content string `xml:",chardata"`
}

// Parse decodes a source document for email.
func Parse(r io.Reader, email types.Email) (types.Document, error) {
	var res resources
	if err := xml.NewDecoder(r).Decode(&res); err != nil {
		return types.Document{}, perrors.Wrap(err, perrors.ErrorTypeValidation, perrors.ErrCodeInvalidDocument,
			"parse source document").WithEmail(email.Name, email.Locale).WithFile(email.Path)
	}

	content := types.NewPlaceholders()
	for _, s := range res.Strings {
		name := strings.TrimSpace(s.Name)
		if name == "" {
			return types.Document{}, perrors.NewValidationError(perrors.ErrCodeInvalidDocument,
				"string element without a name").WithEmail(email.Name, email.Locale).WithFile(email.Path)
		}
		content.Set(name, s.Content)
	}

	return types.Document{
		Email: email,
		Template: types.Template{
			Name:   strings.TrimSpace(res.Template),
			Styles: splitStyles(res.Style),
		},
		Content: content,
	}, nil
}

// Read loads and parses the source document of email.
func Read(email types.Email) (types.Document, error) {
	data, err := os.ReadFile(email.Path)
	if err != nil {
		return types.Document{}, perrors.WrapIO(err, "read source document", email.Path).
			WithEmail(email.Name, email.Locale)
	}
	return Parse(bytes.NewReader(data), email)
}

// GlobalsEmail returns the globals document location of locale.
func GlobalsEmail(srcDir, locale string) types.Email {
	return types.Email{
		Name:   types.GlobalsName,
		Locale: locale,
		Path:   filepath.Join(srcDir, locale, types.GlobalsName+Extension),
	}
}

// ReadGlobals returns the placeholders of the globals document of locale. A
// locale without one has no globals.
func ReadGlobals(srcDir, locale string) (types.Placeholders, error) {
	doc, err := Read(GlobalsEmail(srcDir, locale))
	if err != nil {
		if perrors.IsNotFound(err) {
			return types.NewPlaceholders(), nil
		}
		return types.Placeholders{}, err
	}
	return doc.Content, nil
}

func splitStyles(attr string) []string {
	styles := []string{}
	for _, style := range strings.Split(attr, ",") {
		if style = strings.TrimSpace(style); style != "" {
			styles = append(styles, style)
		}
	}
	return styles
}
