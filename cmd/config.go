package cmd

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/LiaBanuta/capstone-software-dev/internal/config"
	"github.com/LiaBanuta/capstone-software-dev/internal/usecase"
)

var configCmd = &cobra.Command{
	Use:   "gen-config <path|->",
	Short: "Writes a sample config file",
	Long:  `Writes a sample TOML config listing every metric with its default counting policy. Pass - to print it.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if args[0] == "-" {
			return writeSampleConfig(cmd.OutOrStdout())
		}
		path, err := filepath.Abs(args[0])
		if err != nil {
			return err
		}
		f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o600)
		if err != nil {
			return fmt.Errorf("failed to create config file: %w", err)
		}
		defer f.Close()
		if err := writeSampleConfig(f); err != nil {
			return err
		}
		fmt.Fprintf(cmd.ErrOrStderr(), "Wrote %s\n", path)
		return nil
	},
}

func writeSampleConfig(w io.Writer) error {
	catalogue := usecase.Catalogue()
	names := make([]string, 0, len(catalogue))
	defaults := make(map[string]config.MetricConfig, len(catalogue))
	for _, m := range catalogue {
		names = append(names, m.Name)
		// Caps stay unset so max_sample and --max-sample still apply.
		defaults[m.Name] = config.MetricConfig{Policy: m.Policy.String()}
	}
	return config.WriteSample(w, names, defaults)
}

func init() {
	rootCmd.AddCommand(configCmd)
}
