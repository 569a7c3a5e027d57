// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package main

import (
	"encoding/json"
	"fmt"
	"maps"
	"slices"
	"text/tabwriter"

	"github.com/samber/oops"
	"github.com/spf13/cobra"

	"github.com/holomush/modreg/internal/module"
)

// ModuleStatus is one row of the list output.
type ModuleStatus struct {
	Name      string `json:"name"`
	Installed bool   `json:"installed"`
	Protected bool   `json:"protected"`
	Path      string `json:"path"`
}

// listConfig holds configuration for the list command.
type listConfig struct {
	installed   bool
	uninstalled bool
	jsonOutput  bool
}

func newListCmd(deps *Deps) *cobra.Command {
	cfg := &listConfig{}

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List discovered modules",
		Long:  `Reload the search directories and list every module with its installation state.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runList(cmd, cfg, deps)
		},
	}

	cmd.Flags().BoolVar(&cfg.installed, "installed", false, "only list installed modules")
	cmd.Flags().BoolVar(&cfg.uninstalled, "uninstalled", false, "only list uninstalled modules")
	cmd.Flags().BoolVar(&cfg.jsonOutput, "json", false, "output as JSON")
	cmd.MarkFlagsMutuallyExclusive("installed", "uninstalled")

	return cmd
}

func runList(cmd *cobra.Command, cfg *listConfig, deps *Deps) error {
	a, err := setup(cmd, deps)
	if err != nil {
		return err
	}
	defer a.Close()

	var modules map[string]*module.Module
	switch {
	case cfg.installed:
		modules = a.registry.Installed()
	case cfg.uninstalled:
		modules = a.registry.Uninstalled()
	default:
		modules = a.registry.All()
	}

	statuses := moduleStatuses(modules)
	if cfg.jsonOutput {
		data, err := json.MarshalIndent(statuses, "", "  ")
		if err != nil {
			return oops.Wrapf(err, "marshal module list")
		}
		_, _ = fmt.Fprintln(cmd.OutOrStdout(), string(data))
		return nil
	}

	_, _ = fmt.Fprint(cmd.OutOrStdout(), formatModuleTable(statuses))
	return nil
}

// moduleStatuses returns one status per module, sorted by name.
func moduleStatuses(modules map[string]*module.Module) []ModuleStatus {
	statuses := make([]ModuleStatus, 0, len(modules))
	for _, name := range slices.Sorted(maps.Keys(modules)) {
		m := modules[name]
		statuses = append(statuses, ModuleStatus{
			Name:      m.Name(),
			Installed: m.IsInstalled(),
			Protected: m.IsProtected(),
			Path:      m.Path(),
		})
	}
	return statuses
}

// formatModuleTable formats statuses as a human-readable table.
func formatModuleTable(statuses []ModuleStatus) string {
	var buf []byte
	w := tabwriter.NewWriter((*byteWriter)(&buf), 0, 0, 2, ' ', 0)

	_, _ = fmt.Fprintln(w, "NAME\tSTATE\tPROTECTED\tPATH")
	for _, s := range statuses {
		state := "uninstalled"
		if s.Installed {
			state = "installed"
		}
		protected := "-"
		if s.Protected {
			protected = "yes"
		}
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", s.Name, state, protected, s.Path)
	}

	_ = w.Flush()
	return string(buf)
}

// byteWriter is a simple writer that appends to a byte slice.
type byteWriter []byte

func (w *byteWriter) Write(p []byte) (int, error) {
	*w = append(*w, p...)
	return len(p), nil
}
