package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"tickerbot/internal/config"
	"tickerbot/internal/ticker"
)

var Version = "dev"

var configFile string

func main() {
	// .env is optional; deployments set the environment directly.
	_ = godotenv.Load()

	rootCmd := &cobra.Command{
		Use:     "tickerbot",
		Short:   "Stock ticker DD notification pipeline",
		Version: Version,
	}
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "configs/config.yaml", "path to the config file")

	rootCmd.AddCommand(runCmd())
	rootCmd.AddCommand(deliverCmd())
	rootCmd.AddCommand(inboxCmd())
	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(checkCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func loadConfig() (*config.Config, error) {
	return config.Load(configFile)
}

// loadDictionary picks the symbol directory: a configured file when present,
// otherwise the embedded one.
func loadDictionary(cfg *config.Config) (*ticker.Dictionary, error) {
	if cfg.Pipeline.SymbolFile != "" {
		return ticker.Load(cfg.Pipeline.SymbolFile)
	}
	return ticker.Default(), nil
}
