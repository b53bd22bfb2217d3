package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/pders01/timewarp/internal/config"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize timewarp in the current workspace",
	Long: `Create the .timewarp control directory and a default configuration.

This command:
  - Creates .timewarp/ with its snapshots/ and issues/ directories
  - Creates a default config file if it doesn't exist

Running it again is harmless; existing files are left alone.`,
	RunE: runInit,
}

func init() {
	rootCmd.AddCommand(initCmd)
}

func runInit(cmd *cobra.Command, args []string) error {
	ws, err := openWorkspace()
	if err != nil {
		return err
	}

	p := ws.Paths()
	for _, dir := range []string{p.Control, p.Snapshots, p.Issues} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create %s: %w", dir, err)
		}
	}
	fmt.Fprintf(out, "✓ Control directory ready: %s\n", p.Control)

	configPath, err := defaultConfigPath()
	if err != nil {
		return err
	}

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		if err := os.MkdirAll(filepath.Dir(configPath), 0o755); err != nil {
			return fmt.Errorf("failed to create config directory: %w", err)
		}

		data, err := config.Default().Encode()
		if err != nil {
			return fmt.Errorf("failed to encode default config: %w", err)
		}
		if err := os.WriteFile(configPath, data, 0o644); err != nil {
			return fmt.Errorf("failed to create config file: %w", err)
		}

		fmt.Fprintf(out, "✓ Created default config: %s\n", configPath)
	} else {
		fmt.Fprintf(out, "Config already exists: %s\n", configPath)
	}

	fmt.Fprintln(out, "\n✓ timewarp initialized successfully!")
	fmt.Fprintln(out, "  Snapshot the workspace with: timewarp session-start")

	return nil
}

// defaultConfigPath returns --config if set, else the per-user config file.
func defaultConfigPath() (string, error) {
	if cfgFile != "" {
		return cfgFile, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(home, ".config", "timewarp", "config.toml"), nil
}
