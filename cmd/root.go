// Package cmd contains all the CLI commands for the application,
// built using the Cobra library.
package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/LiaBanuta/capstone-software-dev/internal/config"
)

// veep collects flags, environment and config file settings for every command.
var veep = config.New()

var rootConfig struct {
	cfgFile string
}

var rootCmd = &cobra.Command{
	Use:   "prsample",
	Short: "Samples pull request metrics from a GitHub repository.",
	Long: `prsample estimates pull request cycle time, response time, iteration count,
review coverage and comment depth for a GitHub repository by sampling a bounded
number of pull requests from a date window.`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&rootConfig.cfgFile, "config", "c", "",
		"config file (default is $HOME/"+config.FileName+".toml)")
	// Add a persistent flag for verbose output, available to all commands.
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose/debug logging")
	if err := veep.BindPFlag(config.KeyVerbose, rootCmd.PersistentFlags().Lookup("verbose")); err != nil {
		logrus.WithError(err).Fatal("config binding error")
	}
}

// newLogger logs progress to standard error, and debug traces when verbose.
func newLogger(verbose bool) *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(os.Stderr)
	logger.SetFormatter(&logrus.TextFormatter{DisableTimestamp: !verbose, FullTimestamp: verbose})
	if verbose {
		logger.SetLevel(logrus.DebugLevel)
	}
	return logger
}
