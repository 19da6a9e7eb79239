package placeholder

import (
	"os"
	"regexp"

	perrors "github.com/marykravets/ks-email-parser/internal/errors"
)

var tokenPattern = regexp.MustCompile(`\{\{([\p{L}\p{N}_]+)\}\}`)

// Counts maps a placeholder name to the number of times it occurs in one
// source text.
type Counts map[string]int

// Extract counts every {{name}} token in source. Tokens are matched on the raw
// text, so tokens inside attributes or comments count too.
func Extract(source string) Counts {
	counts := make(Counts)
	for _, match := range tokenPattern.FindAllStringSubmatch(source, -1) {
		counts[match[1]]++
	}
	return counts
}

// ExtractFile reads the file at path and counts its tokens.
func ExtractFile(path string) (Counts, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, perrors.WrapIO(err, "read source document", path)
	}
	return Extract(string(data)), nil
}
