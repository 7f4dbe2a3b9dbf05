package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"reelgraph/internal/analytics"
	"reelgraph/internal/codec"
	"reelgraph/internal/loader"
	"reelgraph/internal/store"
)

var statsCmd = &cobra.Command{
	Use:   "stats <file>",
	Short: "Print graph metrics for a dataset file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, load, err := loadStore(args[0])
		if err != nil {
			return err
		}
		report := analytics.Summarize(s)

		if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(report)
		}
		return renderStats(cmd.OutOrStdout(), args[0], load, report)
	},
}

var largestCmd = &cobra.Command{
	Use:   "largest <file>",
	Short: "Extract the largest connected component of a dataset file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, _, err := loadStore(args[0])
		if err != nil {
			return err
		}
		g, err := analytics.LargestConnectedComponent(s)
		if err != nil {
			return err
		}

		out, _ := cmd.Flags().GetString("output")
		if out == "" {
			return codec.NewJSONCodec().Export(g.Fragment(), cmd.OutOrStdout())
		}
		if err := loader.SaveFile(out, g.Fragment()); err != nil {
			return err
		}
		st := styleFor(cmd.OutOrStdout())
		fmt.Fprintf(cmd.OutOrStdout(), "%s %d nodes, %d edges -> %s\n",
			st.success.Render("wrote"), g.NodeCount(), g.EdgeCount(), out)
		return nil
	},
}

func init() {
	statsCmd.Flags().Bool("json", false, "print the report as JSON")
	largestCmd.Flags().StringP("output", "o", "", "write the component to this file (.json, .yaml, .yml) instead of stdout")
}

// loadStore reads a dataset file into a fresh store
func loadStore(path string) (*store.Store, store.LoadReport, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, store.LoadReport{}, err
	}
	fragment, err := loader.LoadFile(path)
	if err != nil {
		return nil, store.LoadReport{}, err
	}
	s, report := store.FromFragment(fragment)
	return s, report, nil
}
