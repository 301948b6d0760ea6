package cmd

import (
	"github.com/spf13/cobra"
)

// Version is injected at build time via -ldflags
var Version = "dev"

// NewRootCommand creates and returns the root cobra command for preproc
func NewRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "preproc",
		Short: "Build-time text preprocessor for tagged regions",
		Long: `Preproc transforms text files by acting on regions delimited by tags
embedded in their comments, such as /* [DEBUG/] */ ... /* [/DEBUG] */.

Each target joins its source files and runs a pipeline of up to three
steps: pick keeps only the first region of a tag, replace substitutes
regions with fixed text, and remove deletes them. Replace and remove can
be limited to sources whose path matches a path test.

Targets are configured in .preproc/config.yaml.`,
		Version: Version,
		// Silence usage on errors to avoid duplicate help text
		SilenceUsage: true,
	}

	// Add subcommands
	cmd.AddCommand(NewRunCommand())
	cmd.AddCommand(NewApplyCommand())
	cmd.AddCommand(NewValidateCommand())
	cmd.AddCommand(NewTagsCommand())

	return cmd
}
