package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"reelgraph/internal/config"
	"reelgraph/internal/logging"
)

var version = "dev"

var (
	cfgFile string
	vp      *viper.Viper
)

var rootCmd = &cobra.Command{
	Use:   "reelgraph",
	Short: "Interactive movie graph server and analytics",
	Long: `reelgraph loads a movie graph, serves it to browsers for live editing,
and reports degree, density, component and path metrics.`,
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, styleFor(os.Stderr).danger.Render("error: ")+err.Error())
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&cfgFile, "config", "", "config file (default: first of $REELGRAPH_CONFIG, ./reelgraph.yaml, XDG, /etc)")
	flags.String("log-level", "", "log level: debug, info, warn, error")
	flags.String("log-format", "", "log format: text or json")
	flags.String("db", "", "dataset archive path")

	rootCmd.AddCommand(serveCmd, statsCmd, largestCmd, importCmd, datasetsCmd, configCmd)
}

// flagKeys maps flag names to config keys. Flags absent from a command are
// skipped when binding.
var flagKeys = map[string]string{
	"log-level":    "log.level",
	"log-format":   "log.format",
	"db":           "database.path",
	"addr":         "server.addr",
	"dataset":      "dataset.path",
	"dataset-name": "dataset.name",
	"watch":        "dataset.watch",
	"otlp":         "telemetry.endpoint",
	"metrics":      "metrics.enabled",
}

func initConfig() {
	vp = config.NewViper(cfgFile)
}

// loadConfig binds the running command's flags and decodes the merged
// configuration
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	if vp == nil {
		initConfig()
	}
	cmd.Flags().VisitAll(func(f *pflag.Flag) {
		if key, ok := flagKeys[f.Name]; ok {
			_ = vp.BindPFlag(key, f)
		}
	})
	return config.FromViper(vp)
}

func newLogger(cfg *config.Config) *slog.Logger {
	logger := logging.New(cfg.Log.Level, cfg.Log.Format, os.Stderr)
	slog.SetDefault(logger)
	return logger
}
