package commands

import (
	"github.com/spf13/cobra"

	"ptc/internal/config"
)

// FaillsCommand handles the faills command
type FaillsCommand struct {
	config *config.Config
	deps   *Dependencies
}

// NewFaillsCommand creates a new FaillsCommand
func NewFaillsCommand(cfg *config.Config, deps *Dependencies) *FaillsCommand {
	return &FaillsCommand{
		config: cfg,
		deps:   deps,
	}
}

// Execute runs the command
func (fc *FaillsCommand) Execute(cmd *cobra.Command, args []string) error {
	results, err := fc.deps.Storage.Load()
	if err != nil {
		return err
	}

	return fc.deps.Viewer.View(results)
}
