package cli

import (
	"log"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var (
	port        string
	configPath  string
	catalogPath string
)

// Execute runs the CLI.
func Execute() error {
	return newRootCmd().Execute()
}

func newRootCmd() *cobra.Command {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("load .env: %v", err)
	}

	envPort := os.Getenv("PORT")
	envConfig := os.Getenv("CONFIG_PATH")
	if envConfig == "" {
		envConfig = "config/config.yaml"
	}

	cmd := &cobra.Command{
		Use:          "proficiency-test",
		Short:        "English CEFR proficiency test served over WebSocket",
		SilenceUsage: true,
	}

	cmd.PersistentFlags().StringVar(&port, "port", envPort, "port to listen on (overrides config, default 8080)")
	cmd.PersistentFlags().StringVar(&configPath, "config", envConfig, "path to YAML config")
	cmd.PersistentFlags().StringVar(&catalogPath, "catalog", os.Getenv("CATALOG_PATH"), "path to a YAML catalog (default: embedded reference catalog)")
	cmd.AddCommand(NewStartCmd(&configPath, &port, &catalogPath))
	cmd.AddCommand(NewMigrateCmd(&configPath))
	cmd.AddCommand(NewSeedCmd(&configPath, &catalogPath))
	cmd.AddCommand(NewValidateCmd(&configPath, &catalogPath))
	return cmd
}
