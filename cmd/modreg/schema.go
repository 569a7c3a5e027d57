// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/samber/oops"
	"github.com/spf13/cobra"

	"github.com/holomush/modreg/internal/module"
)

func newSchemaCmd() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "schema",
		Short: "Print the module descriptor JSON Schema",
		Long:  `Print the module descriptor JSON Schema, or write it to --output.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			data, err := module.GenerateSchema()
			if err != nil {
				return oops.Code("SCHEMA_FAILED").Wrap(err)
			}
			if output == "" {
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), string(data))
				return nil
			}
			if err := writeSchema(output, data); err != nil {
				return err
			}
			cmd.Printf("Generated %s\n", output)
			return nil
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "write the schema to this file")
	return cmd
}

func writeSchema(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return oops.Code("SCHEMA_FAILED").With("path", path).Wrapf(err, "create directory")
	}
	if err := os.WriteFile(path, append(data, '\n'), 0o600); err != nil {
		return oops.Code("SCHEMA_FAILED").With("path", path).Wrapf(err, "write schema")
	}
	return nil
}

func newValidateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate <descriptor>...",
		Short: "Validate module descriptor files",
		Long:  `Check each descriptor file against the descriptor JSON Schema and parse it.`,
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var failed int
			for _, path := range args {
				if err := validateDescriptor(path); err != nil {
					failed++
					cmd.Printf("%s: %s\n", path, module.FormatSchemaError(err))
					continue
				}
				cmd.Printf("%s: ok\n", path)
			}
			if failed > 0 {
				return oops.Code("DESCRIPTOR_INVALID").With("failed", failed).Errorf("%d of %d descriptor(s) invalid", failed, len(args))
			}
			return nil
		},
	}
}

func validateDescriptor(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return oops.With("path", path).Wrap(err)
	}
	if err := module.ValidateSchema(data); err != nil {
		return err
	}
	_, err = module.LoadDescriptor(path)
	return err
}
