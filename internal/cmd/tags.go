package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/goccy/go-json"
	"github.com/spf13/cobra"

	"github.com/harrison/preproc/internal/fileutil"
	"github.com/harrison/preproc/internal/tag"
)

// fileTags is the listing of one file
type fileTags struct {
	File string        `json:"file"`
	Tags []tag.Summary `json:"tags"`
}

// NewTagsCommand creates the tags command
func NewTagsCommand() *cobra.Command {
	var (
		names  []string
		asJSON bool
	)

	cmd := &cobra.Command{
		Use:   "tags FILE...",
		Short: "List the tagged regions of files",
		Long: `List the top-level regions of one or more tags in each file: where the
region opens, its inline path test, the size of its content and how many
same-name regions it nests. Glob patterns are expanded.

Examples:
  preproc tags src/index.html
  preproc tags --tag DEBUG --tag DOC 'src/**/*.js'
  preproc tags --json src/*.html`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return listTags(args, names, asJSON, cmd.OutOrStdout())
		},
	}

	cmd.Flags().StringArrayVar(&names, "tag", nil, "Tag to list (repeatable, default SPEC)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the listing as JSON")

	return cmd
}

// listTags prints the regions of names in every file matched by patterns.
func listTags(patterns, names []string, asJSON bool, output io.Writer) error {
	files, err := fileutil.ExpandSources(".", patterns)
	if err != nil {
		return err
	}

	engine := tag.NewEngine()
	var listing []fileTags
	for _, file := range files {
		data, err := os.ReadFile(file)
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", file, err)
		}
		summaries, err := engine.Summarize(string(data), names...)
		if err != nil {
			return fmt.Errorf("%s: %w", file, err)
		}
		listing = append(listing, fileTags{File: file, Tags: summaries})
	}

	if asJSON {
		enc := json.NewEncoder(output)
		enc.SetIndent("", "  ")
		return enc.Encode(listing)
	}

	for _, ft := range listing {
		fmt.Fprintf(output, "%s:\n", ft.File)
		for _, s := range ft.Tags {
			fmt.Fprintf(output, "  %s: %d region(s)\n", s.Tag, len(s.Regions))
			for _, r := range s.Regions {
				line := fmt.Sprintf("    %s  %d bytes", r.Pos, r.Length)
				if r.Test != "" {
					line += fmt.Sprintf("  test %q", r.Test)
				}
				if r.Nested > 0 {
					line += fmt.Sprintf("  %d nested", r.Nested)
				}
				fmt.Fprintln(output, line)
			}
		}
	}
	return nil
}
