package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"reelgraph/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage the configuration file",
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a config file with default values",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		path, _ := cmd.Flags().GetString("path")
		force, _ := cmd.Flags().GetBool("force")
		if path == "" {
			path = config.DefaultConfigPath()
		}

		if _, err := os.Stat(path); err == nil && !force {
			return fmt.Errorf("%s already exists (use --force to overwrite)", path)
		}
		if err := config.DefaultConfig().Save(path); err != nil {
			return err
		}

		st := styleFor(cmd.OutOrStdout())
		fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", st.success.Render("wrote"), path)
		return nil
	},
}

func init() {
	configInitCmd.Flags().String("path", "", "where to write the file (default: user config dir)")
	configInitCmd.Flags().Bool("force", false, "overwrite an existing file")
	configCmd.AddCommand(configInitCmd)
}
