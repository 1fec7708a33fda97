package cli

import (
	"fmt"
	"os"

	"github.com/apex/log"
	clihandler "github.com/apex/log/handlers/cli"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	cfgFile string
	verbose bool
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "unify",
	Short: "Unify - canonical unification of humanitarian data providers",
	Long: `Unify ingests heterogeneous humanitarian and statistical records from
independent providers and produces one canonical dataset with bounded
quality scores, derived temporal and spatial context, and partitioned
on-disk output suitable for incremental loading.

Provider fetching, file-format extraction and dashboard rendering are
external collaborators: unify consumes arrays of raw records plus a small
metadata object, and emits canonical JSON.`,
	SilenceErrors: true,
	SilenceUsage:  true,
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

// versionCmd represents the version command
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("unify v0.2.0")
	},
}

func init() {
	cobra.OnInitialize(initConfig, initLogger)

	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: $HOME/.unify/config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")

	// Bind flags to viper
	_ = viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose"))

	// Add subcommands
	rootCmd.AddCommand(versionCmd)
}

// newLogger builds the logger handed explicitly into the pipeline
func newLogger() log.Interface {
	logger := &log.Logger{
		Handler: clihandler.New(os.Stderr),
		Level:   log.InfoLevel,
	}
	if verbose {
		logger.Level = log.DebugLevel
	}
	return logger
}

func initLogger() {
	// Default handler for code paths that fall back to log.Log
	log.SetHandler(clihandler.New(os.Stderr))
	if verbose {
		log.SetLevel(log.DebugLevel)
	}
}

// initConfig reads in config file and ENV variables
func initConfig() {
	if cfgFile != "" {
		// Use config file from the flag
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error finding home directory: %v\n", err)
			return
		}

		// Search for config in home directory
		viper.AddConfigPath(home + "/.unify")
		viper.SetConfigType("yaml")
		viper.SetConfigName("config")
	}

	// Read in environment variables that match UNIFY_*
	viper.SetEnvPrefix("UNIFY")
	viper.AutomaticEnv()

	// If a config file is found, read it in
	if err := viper.ReadInConfig(); err == nil && verbose {
		fmt.Fprintf(os.Stderr, "Using config file: %s\n", viper.ConfigFileUsed())
	}
}
