package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pders01/timewarp/internal/config"
	"github.com/pders01/timewarp/internal/logging"
)

var (
	cfgFile       string
	workspaceRoot string
)

var rootCmd = &cobra.Command{
	Use:   "timewarp",
	Short: "Snapshot, travel back to and return from earlier workspace states",
	Long: `timewarp snapshots a workspace at session start and lets you swap the
live tree for any stored snapshot, then return to exactly what was there
before the swap.

Problems found along the way are filed as issues pinned to the session
snapshot, together with a redacted chat transcript and an experiment
notes document.`,
	SilenceErrors: true,
	SilenceUsage:  true,
}

// Execute runs the root command and exits non-zero on failure.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		if err != errReported {
			printError(os.Stderr, err)
		}
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)
	config.SetDefaults(viper.GetViper())

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.config/timewarp/config.toml)")
	rootCmd.PersistentFlags().StringVar(&workspaceRoot, "root", "", "workspace root (default is the current directory)")
}

func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}

		viper.AddConfigPath(filepath.Join(home, ".config", "timewarp"))
		viper.SetConfigType("toml")
		viper.SetConfigName("config")
	}

	viper.SetEnvPrefix("TIMEWARP")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	readErr := viper.ReadInConfig()
	logging.Configure(config.GetLogLevel(), config.GetLogFormat())

	log := logging.NewLogger("cli")
	if readErr == nil {
		log.WithField("file", viper.ConfigFileUsed()).Debug("using config file")
	} else if _, ok := readErr.(viper.ConfigFileNotFoundError); !ok {
		log.WithError(readErr).Warn("failed to read config file")
	}
}
