package placeholder

import (
	"context"

	"github.com/marykravets/ks-email-parser/internal/types"
)

// Collect extracts the counts of every email, grouped by email name then
// locale.
func Collect(emails []types.Email) (map[string]map[string]Counts, error) {
	grouped := make(map[string]map[string]Counts)
	for _, email := range emails {
		counts, err := ExtractFile(email.Path)
		if err != nil {
			return nil, err
		}
		if grouped[email.Name] == nil {
			grouped[email.Name] = make(map[string]Counts)
		}
		grouped[email.Name][email.Locale] = counts
	}
	return grouped, nil
}

// Generate builds shapes from the emails of canonicalLocale. An empty
// canonicalLocale uses every locale.
func Generate(emails []types.Email, canonicalLocale string) (Shapes, error) {
	selected := emails
	if canonicalLocale != "" {
		selected = make([]types.Email, 0, len(emails))
		for _, email := range emails {
			if email.Locale == canonicalLocale {
				selected = append(selected, email)
			}
		}
	}

	grouped, err := Collect(selected)
	if err != nil {
		return nil, err
	}
	return ReduceAll(grouped), nil
}

// Regenerate rebuilds the shapes file of srcDir from emails. Nothing is
// written when no email of the canonical locale was found; the returned
// shapes are then empty.
func (s *Store) Regenerate(srcDir string, emails []types.Email, canonicalLocale string) (Shapes, error) {
	shapes, err := Generate(emails, canonicalLocale)
	if err != nil {
		return nil, err
	}
	if len(shapes) == 0 {
		s.logger.Warn(context.Background(), nil, "No emails found for placeholders config",
			"source", srcDir, "locale", canonicalLocale)
		return shapes, nil
	}
	if err := s.Save(srcDir, shapes); err != nil {
		return nil, err
	}
	return shapes, nil
}
