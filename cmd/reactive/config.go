package main

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/vango-dev/reactive/internal/config"
	"github.com/vango-dev/reactive/internal/errors"
)

func configCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Create or inspect reactive.json",
	}
	cmd.AddCommand(configInitCmd(), configShowCmd())
	return cmd
}

func configInitCmd() *cobra.Command {
	var (
		asYAML bool
		force  bool
	)

	cmd := &cobra.Command{
		Use:   "init [dir]",
		Short: "Write a default configuration file",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "."
			if len(args) == 1 {
				dir = args[0]
			}
			name := config.ConfigFileName
			if asYAML {
				name = "reactive.yaml"
			}
			path := filepath.Join(dir, name)

			if _, err := os.Stat(path); err == nil && !force {
				return errors.New("C120").
					WithDetail(path + " already exists").
					WithSuggestion("Use --force to overwrite it")
			}
			if err := config.New().SaveTo(path); err != nil {
				return err
			}
			success("Created %s", path)
			return nil
		},
	}

	cmd.Flags().BoolVar(&asYAML, "yaml", false, "Write reactive.yaml instead of reactive.json")
	cmd.Flags().BoolVarP(&force, "force", "f", false, "Overwrite an existing file")

	return cmd
}

func configShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if cfg.Path() != "" {
				info("loaded from %s", cfg.Path())
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(cfg)
		},
	}
}
