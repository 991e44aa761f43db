package cmd

import (
	"fmt"

	"github.com/gophertribe/devtool/test"
	"github.com/spf13/cobra"
)

func qualityCmd(use, short string, run func() error) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := run(); err != nil {
				return fmt.Errorf("%s failed: %w", use, err)
			}
			return nil
		},
	}
}

// QualityCmds returns the test, lint and integration-test commands.
func QualityCmds() []*cobra.Command {
	return []*cobra.Command{
		qualityCmd("test", "Run unit tests", func() error { return test.Test() }),
		qualityCmd("lint", "Run linting", func() error { return test.Lint() }),
		qualityCmd("integration-test", "Run integration tests against attached hardware", func() error { return test.Integ() }),
	}
}
