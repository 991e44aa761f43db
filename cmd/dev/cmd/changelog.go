package cmd

import (
	"fmt"
	"log/slog"
	"os"
	"os/exec"

	"github.com/spf13/cobra"
)

const defaultChangelog = "CHANGELOG.md"

type changelogOpts struct {
	next   string
	output string
	tag    string
}

// args builds the git-chglog command line.
func (o changelogOpts) args() []string {
	var args []string
	if o.next != "" {
		args = append(args, "--next-tag", o.next)
	}
	output := o.output
	if output == "" {
		output = defaultChangelog
	}
	args = append(args, "--output", output)
	if o.tag != "" {
		args = append(args, o.tag)
	}
	return args
}

func ChangelogCmd() *cobra.Command {
	var opts changelogOpts
	cmd := &cobra.Command{
		Use:   "changelog",
		Short: "Generate or update CHANGELOG.md from git history",
		Long: `Generate CHANGELOG.md with git-chglog from conventional commits
(<type>[optional scope]: <description>).

Install git-chglog first:
  go install github.com/git-chglog/git-chglog/cmd/git-chglog@latest

Examples:
  dev changelog
  dev changelog --next v1.2.0
  dev changelog --tag v1.0.0 --output CHANGES.md`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := exec.LookPath("git-chglog"); err != nil {
				slog.Error("git-chglog not found in PATH")
				return fmt.Errorf("git-chglog not installed: %w", err)
			}
			chglogArgs := opts.args()
			slog.Info("running git-chglog", "args", chglogArgs)
			gitChglog := exec.CommandContext(cmd.Context(), "git-chglog", chglogArgs...)
			gitChglog.Stdout = os.Stdout
			gitChglog.Stderr = os.Stderr
			if err := gitChglog.Run(); err != nil {
				return fmt.Errorf("failed to generate changelog: %w", err)
			}
			slog.Info("changelog generated", "next", opts.next, "tag", opts.tag)
			return nil
		},
	}
	cmd.Flags().StringVar(&opts.next, "next", "", "Next version tag (e.g., v1.2.0)")
	cmd.Flags().StringVar(&opts.output, "output", defaultChangelog, "Output file path")
	cmd.Flags().StringVar(&opts.tag, "tag", "", "Generate changelog for specific tag")
	return cmd
}
