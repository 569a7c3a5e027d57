// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package main

import (
	"github.com/spf13/cobra"

	"github.com/holomush/modreg/internal/config"
)

// NewRootCmd creates the root command for the modreg CLI.
func NewRootCmd() *cobra.Command {
	return newRootCmd(nil)
}

// newRootCmd builds the command tree with injectable dependencies.
// If deps is nil, default implementations are used.
func newRootCmd(deps *Deps) *cobra.Command {
	deps = deps.withDefaults()

	cmd := &cobra.Command{
		Use:   "modreg",
		Short: "modreg - runtime module registry",
		Long: `modreg discovers modules from descriptor files in search directories,
tracks which of them are installed and drives their install, uninstall and
boot lifecycle.`,
		SilenceErrors: true,
		SilenceUsage:  true,
	}

	cmd.PersistentFlags().String("config", "", "config file path (default: XDG_CONFIG_HOME/modreg/config.yaml)")
	config.RegisterFlags(cmd.PersistentFlags())

	cmd.AddCommand(newListCmd(deps))
	cmd.AddCommand(newInstallCmd(deps))
	cmd.AddCommand(newUninstallCmd(deps))
	cmd.AddCommand(newBootCmd(deps))
	cmd.AddCommand(newServeCmd(deps))
	cmd.AddCommand(newMigrateCmd(deps))
	cmd.AddCommand(newSchemaCmd())
	cmd.AddCommand(newValidateCmd())

	return cmd
}
