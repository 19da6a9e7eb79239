package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/marykravets/ks-email-parser/internal/renderer"
	"github.com/marykravets/ks-email-parser/internal/types"
)

type listOptions struct {
	format    string
	locales   bool
	resources bool
}

// emailListing is one email with the locales it exists in.
type emailListing struct {
	Name    string   `json:"name" yaml:"name"`
	Locales []string `json:"locales" yaml:"locales"`
	Paths   []string `json:"paths" yaml:"paths"`
}

func newListCommand() *cobra.Command {
	opts := &listOptions{}
	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"l", "ls"},
		Short:   "List discovered emails",
		Long: `List the emails discovered in the source directory with their locales.

Examples:
  ks-email-parser list                  # Table of emails
  ks-email-parser list --format json    # JSON output
  ks-email-parser list --locales        # Only the locales
  ks-email-parser list --resources      # Templates and stylesheets`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runList(cmd, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.format, "format", "f", "table", "output format (table, json, yaml)")
	cmd.Flags().BoolVar(&opts.locales, "locales", false, "list locales instead of emails")
	cmd.Flags().BoolVar(&opts.resources, "resources", false, "list templates and stylesheets instead of emails")
	cmd.MarkFlagsMutuallyExclusive("locales", "resources")
	return cmd
}

func runList(cmd *cobra.Command, opts *listOptions) error {
	format, err := validateFormat(opts.format, "table", "json", "yaml")
	if err != nil {
		return err
	}
	a, err := loadApp(cmd)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()

	if opts.resources {
		listing, err := renderer.NewResources(os.DirFS(a.cfg.Paths.Templates), a.logger).List()
		if err != nil {
			return fmt.Errorf("failed to list resources in %s: %w", a.cfg.Paths.Templates, err)
		}
		return outputResources(out, format, listing)
	}

	sc, err := a.scanner()
	if err != nil {
		return err
	}

	if opts.locales {
		locales, err := sc.Locales()
		if err != nil {
			return err
		}
		return outputStrings(out, format, "LOCALE", locales)
	}

	emails, err := sc.ScanAll()
	if err != nil {
		return err
	}
	if len(emails) == 0 && format == "table" {
		fmt.Fprintln(out, "No emails found.")
		return nil
	}
	listings := groupEmails(emails)

	switch format {
	case "json":
		return writeJSON(out, listings)
	case "yaml":
		return writeYAML(out, listings)
	default:
		w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "NAME\tLOCALES")
		for _, listing := range listings {
			fmt.Fprintf(w, "%s\t%s\n", listing.Name, strings.Join(listing.Locales, ", "))
		}
		if err := w.Flush(); err != nil {
			return err
		}
		fmt.Fprintf(out, "\n%d emails, %d documents\n", len(listings), len(emails))
		return nil
	}
}

// groupEmails groups documents by email name, sorted by name then locale.
func groupEmails(emails []types.Email) []emailListing {
	byName := make(map[string]*emailListing)
	for _, email := range emails {
		listing, ok := byName[email.Name]
		if !ok {
			listing = &emailListing{Name: email.Name}
			byName[email.Name] = listing
		}
		listing.Locales = append(listing.Locales, email.Locale)
		listing.Paths = append(listing.Paths, email.Path)
	}

	listings := make([]emailListing, 0, len(byName))
	for _, listing := range byName {
		sort.Sort(byLocale{listing})
		listings = append(listings, *listing)
	}
	sort.Slice(listings, func(i, j int) bool { return listings[i].Name < listings[j].Name })
	return listings
}

// byLocale sorts the locales of a listing together with their paths.
type byLocale struct{ *emailListing }

func (b byLocale) Len() int           { return len(b.Locales) }
func (b byLocale) Less(i, j int) bool { return b.Locales[i] < b.Locales[j] }
func (b byLocale) Swap(i, j int) {
	b.Locales[i], b.Locales[j] = b.Locales[j], b.Locales[i]
	b.Paths[i], b.Paths[j] = b.Paths[j], b.Paths[i]
}

func outputStrings(out io.Writer, format, header string, values []string) error {
	if values == nil {
		values = []string{}
	}
	switch format {
	case "json":
		return writeJSON(out, values)
	case "yaml":
		return writeYAML(out, values)
	default:
		fmt.Fprintln(out, header)
		for _, value := range values {
			fmt.Fprintln(out, value)
		}
		return nil
	}
}

func outputResources(out io.Writer, format string, listing renderer.Listing) error {
	switch format {
	case "json":
		return writeJSON(out, listing)
	case "yaml":
		return writeYAML(out, listing)
	}

	dirs := make([]string, 0, len(listing.Templates))
	for dir := range listing.Templates {
		dirs = append(dirs, dir)
	}
	sort.Strings(dirs)

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "DIRECTORY\tTEMPLATES")
	for _, dir := range dirs {
		label := dir
		if label == "" {
			label = "."
		}
		fmt.Fprintf(w, "%s\t%s\n", label, strings.Join(listing.Templates[dir], ", "))
	}
	if err := w.Flush(); err != nil {
		return err
	}
	fmt.Fprintf(out, "\nStyles: %s\n", strings.Join(listing.Styles, ", "))
	return nil
}

func writeJSON(out io.Writer, v interface{}) error {
	encoder := json.NewEncoder(out)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}

func writeYAML(out io.Writer, v interface{}) error {
	encoder := yaml.NewEncoder(out)
	encoder.SetIndent(2)
	if err := encoder.Encode(v); err != nil {
		return err
	}
	return encoder.Close()
}
