package commands

import (
	"github.com/spf13/cobra"

	"ptc/internal/config"
)

// ChangedCommand handles the changed command
type ChangedCommand struct {
	config *config.Config
	deps   *Dependencies
}

// NewChangedCommand creates a new ChangedCommand
func NewChangedCommand(cfg *config.Config, deps *Dependencies) *ChangedCommand {
	return &ChangedCommand{
		config: cfg,
		deps:   deps,
	}
}

// Execute runs the command
func (cc *ChangedCommand) Execute(cmd *cobra.Command, args []string) error {
	report, err := buildChangeReport(cmd.Context(), cc.config, cc.deps)
	if err != nil {
		return err
	}

	cc.deps.Formatter.PrintChangeSet(report.Set, report.Fingerprint)
	return nil
}
