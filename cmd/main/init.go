package main

import (
	"fmt"
	"os"

	"github.com/CTAG07/routepages/pkg/pagegen"
	"github.com/spf13/cobra"
)

func newInitCmd(root *rootOptions) *cobra.Command {
	var (
		variant string
		force   bool
	)

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Writes a config file with every setting of a preset spelled out.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := os.Stat(root.configPath); err == nil && !force {
				return fmt.Errorf("%s already exists (use --force to overwrite)", root.configPath)
			}
			config, err := ExpandedConfig(variant)
			if err != nil {
				return err
			}
			if err = WriteConfig(root.configPath, config); err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s config to %s\n", variant, root.configPath)
			return nil
		},
	}

	cmd.Flags().StringVar(&variant, "variant", pagegen.VariantRoute, fmt.Sprintf("Preset to write %v.", pagegen.Variants()))
	cmd.Flags().BoolVar(&force, "force", false, "Overwrite an existing config file.")
	return cmd
}
