package main

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"reelgraph/internal/config"
	"reelgraph/internal/loader"
	"reelgraph/internal/repository/sqlite"
)

var importCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Archive a dataset file under a name",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		path := args[0]
		name, _ := cmd.Flags().GetString("name")
		if name == "" {
			name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
		}

		fragment, err := loader.LoadFile(path)
		if err != nil {
			return err
		}

		return withRepo(cmd.Context(), cfg, func(ctx context.Context, repo *sqlite.Repository) error {
			if err := repo.SaveDataset(ctx, name, path, fragment); err != nil {
				return err
			}
			st := styleFor(cmd.OutOrStdout())
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s (%d nodes, %d edges)\n",
				st.success.Render("archived"), name, len(fragment.Nodes), len(fragment.Edges))
			return nil
		})
	},
}

var datasetsCmd = &cobra.Command{
	Use:   "datasets",
	Short: "Manage the dataset archive",
}

var datasetsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List archived datasets",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		return withRepo(cmd.Context(), cfg, func(ctx context.Context, repo *sqlite.Repository) error {
			infos, err := repo.ListDatasets(ctx)
			if err != nil {
				return err
			}
			return renderDatasets(cmd.OutOrStdout(), infos)
		})
	},
}

var datasetsShowCmd = &cobra.Command{
	Use:   "show <name>",
	Short: "Print an archived dataset as JSON or YAML",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		format, _ := cmd.Flags().GetString("format")
		return withRepo(cmd.Context(), cfg, func(ctx context.Context, repo *sqlite.Repository) error {
			fragment, err := repo.GetDataset(ctx, args[0])
			if err != nil {
				return err
			}
			data, err := loader.Encode(fragment, format)
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(data)
			return err
		})
	},
}

var datasetsDeleteCmd = &cobra.Command{
	Use:   "delete <name>",
	Short: "Remove an archived dataset",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		return withRepo(cmd.Context(), cfg, func(ctx context.Context, repo *sqlite.Repository) error {
			if err := repo.DeleteDataset(ctx, args[0]); err != nil {
				return err
			}
			st := styleFor(cmd.OutOrStdout())
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", st.danger.Render("deleted"), args[0])
			return nil
		})
	},
}

func init() {
	importCmd.Flags().String("name", "", "archive name (default: file name without extension)")
	datasetsShowCmd.Flags().String("format", "json", "output format: json or yaml")
	datasetsCmd.AddCommand(datasetsListCmd, datasetsShowCmd, datasetsDeleteCmd)
}

func withRepo(ctx context.Context, cfg *config.Config, fn func(context.Context, *sqlite.Repository) error) error {
	if ctx == nil {
		ctx = context.Background()
	}
	repo, err := sqlite.New(cfg.Database.Path)
	if err != nil {
		return fmt.Errorf("failed to open dataset archive: %w", err)
	}
	defer repo.Close()
	return fn(ctx, repo)
}
