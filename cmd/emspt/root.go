package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/228Abobus228/SPTOVZ/internal/emspt"
	"github.com/228Abobus228/SPTOVZ/internal/emspt/configstore"
	"github.com/228Abobus228/SPTOVZ/internal/report"
)

var rootCmd = &cobra.Command{
	Use:   "emspt",
	Short: "EMSPT scoring and configuration tool",
	Long: `emspt scores EMSPT answer sets offline and checks a scoring
configuration root (keys, lie correction, norms, sten tables) for
profiles that cannot be scored.`,
	SilenceUsage: true,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config-root", "./config/emspt", "Scoring configuration root")
	rootCmd.PersistentFlags().StringP("format", "f", report.FormatConsole, "Output format (console|json)")
	rootCmd.PersistentFlags().Bool("no-color", false, "Disable colored output")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Log configuration gaps hit while scoring")

	viper.BindPFlag("config-root", rootCmd.PersistentFlags().Lookup("config-root"))
	viper.BindPFlag("format", rootCmd.PersistentFlags().Lookup("format"))
	viper.BindPFlag("no-color", rootCmd.PersistentFlags().Lookup("no-color"))
	viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose"))

	rootCmd.AddCommand(newScoreCmd(), newCheckCmd())
}

// initConfig reads .emspt.yaml if present; EMSPT_* env vars override it.
func initConfig() {
	viper.SetEnvPrefix("EMSPT")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()

	for _, path := range []string{".emspt.yaml", ".emspt.yml"} {
		if _, err := os.Stat(path); err == nil {
			viper.SetConfigFile(path)
			if err := viper.ReadInConfig(); err != nil {
				fmt.Fprintf(os.Stderr, "Error reading config file: %v\n", err)
				os.Exit(1)
			}
			break
		}
	}
}

// settings are the values shared by every subcommand.
type settings struct {
	ConfigRoot string `mapstructure:"config-root"`
	Format     string `mapstructure:"format"`
	NoColor    bool   `mapstructure:"no-color"`
	Verbose    bool   `mapstructure:"verbose"`
}

func loadSettings() (settings, error) {
	var s settings
	if err := viper.Unmarshal(&s); err != nil {
		return settings{}, fmt.Errorf("error unmarshaling config: %w", err)
	}
	return s, nil
}

func loadStore(root string) (*configstore.Store, error) {
	store, err := configstore.Load(root)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", root, err)
	}
	return store, nil
}

func newEngine(store *configstore.Store, verbose bool) *emspt.Engine {
	if verbose {
		return emspt.NewEngine(store)
	}
	return emspt.NewEngine(store, emspt.WithLogger(nil))
}
