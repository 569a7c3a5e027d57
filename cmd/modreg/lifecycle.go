// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package main

import (
	"log/slog"

	"github.com/samber/oops"
	"github.com/spf13/cobra"

	"github.com/holomush/modreg/internal/module"
)

// transitionConfig holds configuration for install and uninstall.
type transitionConfig struct {
	all bool
}

func newInstallCmd(deps *Deps) *cobra.Command {
	cfg := &transitionConfig{}

	cmd := &cobra.Command{
		Use:   "install <name>... | --all",
		Short: "Install modules",
		Long: `Install the named modules in order, running each installer hook. With
--all, every uninstalled module is installed in discovery order. The first
failure stops the command.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTransition(cmd, cfg, deps, args, true)
		},
	}
	cmd.Flags().BoolVar(&cfg.all, "all", false, "install every uninstalled module")
	return cmd
}

func newUninstallCmd(deps *Deps) *cobra.Command {
	cfg := &transitionConfig{}

	cmd := &cobra.Command{
		Use:   "uninstall <name>... | --all",
		Short: "Uninstall modules",
		Long: `Uninstall the named modules in order, running each uninstaller hook.
Protected modules cannot be uninstalled. With --all, every installed module
is uninstalled in discovery order; if any installed module is protected the
command fails before uninstalling anything.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTransition(cmd, cfg, deps, args, false)
		},
	}
	cmd.Flags().BoolVar(&cfg.all, "all", false, "uninstall every installed module")
	return cmd
}

// validateTransitionArgs requires either names or --all, never both.
func validateTransitionArgs(all bool, args []string) error {
	switch {
	case all && len(args) > 0:
		return oops.Code("INVALID_ARGS").Errorf("module names cannot be combined with --all")
	case !all && len(args) == 0:
		return oops.Code("INVALID_ARGS").Errorf("at least one module name or --all is required")
	}
	return nil
}

func runTransition(cmd *cobra.Command, cfg *transitionConfig, deps *Deps, args []string, install bool) error {
	if err := validateTransitionArgs(cfg.all, args); err != nil {
		return err
	}

	a, err := setup(cmd, deps)
	if err != nil {
		return err
	}
	defer a.Close()

	ctx := cmd.Context()
	r := a.registry

	if cfg.all {
		before := r.Installed()
		if install {
			err = r.InstallAll(ctx)
		} else {
			err = r.UninstallAll(ctx)
		}
		changed := transitioned(r.Names(), before, r.Installed(), install)
		verb := transitionVerb(install)
		for _, name := range changed {
			cmd.Printf("%s %s\n", verb, name)
		}
		slog.Info("modules "+verb, "count", len(changed))
		cmd.Printf("%s %d module(s)\n", verb, len(changed))
		return err
	}

	for _, name := range args {
		if install {
			err = r.Install(ctx, name)
		} else {
			err = r.Uninstall(ctx, name)
		}
		if err != nil {
			return err
		}
		cmd.Printf("%s %s\n", transitionVerb(install), name)
	}
	return nil
}

// transitioned returns, in discovery order, the names that moved into the
// installed partition (install) or out of it (uninstall) between before and
// after. Moves in the opposite direction made by re-entrant hooks are not
// counted.
func transitioned(order []string, before, after map[string]*module.Module, install bool) []string {
	var out []string
	for _, name := range order {
		_, was := before[name]
		_, is := after[name]
		if was != is && is == install {
			out = append(out, name)
		}
	}
	return out
}

func transitionVerb(install bool) string {
	if install {
		return "installed"
	}
	return "uninstalled"
}

func newBootCmd(deps *Deps) *cobra.Command {
	return &cobra.Command{
		Use:   "boot",
		Short: "Boot installed modules",
		Long: `Reload the search directories, then register the providers and load the
files of every installed module.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := setup(cmd, deps)
			if err != nil {
				return err
			}
			defer a.Close()

			if err := a.registry.Boot(cmd.Context()); err != nil {
				return err
			}
			cmd.Printf("booted %d module(s)\n", len(a.registry.Installed()))
			return nil
		},
	}
}
