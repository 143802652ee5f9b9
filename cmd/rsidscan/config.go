package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ZanMander/Forensic-linguistics/internal/config"
	"github.com/ZanMander/Forensic-linguistics/internal/report"
)

func (c *cli) schemaCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "schema",
		Short: "Print the JSON schema of the analysis report",
		Args:  noArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := c.stdout.Write(report.Schema())
			return err
		},
	}
}

func (c *cli) configCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage configuration",
	}

	var force bool
	initCmd := &cobra.Command{
		Use:   "init",
		Short: "Write a default configuration file",
		Args:  noArgs,
		// init must work even when the existing file is invalid.
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error { return nil },
		RunE: func(cmd *cobra.Command, args []string) error {
			path := c.configPath
			if path == "" {
				path = config.ConfigPath()
			}

			if force {
				if err := config.Save(config.DefaultConfig(), path); err != nil {
					return err
				}
				fmt.Fprintf(c.stdout, "Configuration written to %s\n", path)
				return nil
			}

			if _, err := os.Stat(path); err == nil {
				fmt.Fprintf(c.stdout, "Configuration already exists at %s (use --force to overwrite)\n", path)
				return nil
			}
			if _, _, err := config.LoadOrCreate(path); err != nil {
				return err
			}
			fmt.Fprintf(c.stdout, "Configuration initialized at %s\n", path)
			return nil
		},
	}
	initCmd.Flags().BoolVar(&force, "force", false, "overwrite an existing file")

	var format string
	showCmd := &cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration",
		Args:  noArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			switch format {
			case "toml", "json", "yaml", "yml":
			default:
				return usageErrorf("unknown config format %q (want toml, json or yaml)", format)
			}
			data, err := config.Encode(c.cfg, format)
			if err != nil {
				return fmt.Errorf("encode config: %w", err)
			}
			_, err = c.stdout.Write(data)
			return err
		},
	}
	showCmd.Flags().StringVar(&format, "format", "toml", "output format: toml, json, yaml")

	cmd.AddCommand(initCmd, showCmd)
	return cmd
}
