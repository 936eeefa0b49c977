/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"github.com/ssargent/sagadb/pkg/api"
)

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the REST API server",
	Long: `Start the SagaDB REST API server. The notes table from the data
directory is registered and exposed for export, import, and clearing
under /api/v1/tables, protected by the configured API key.

Examples:
  saga serve
  saga serve --config=./saga.yaml --port=9000`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		if port, _ := cmd.Flags().GetInt("port"); port != 0 {
			cfg.Port = port
		}

		logger := newLogger(cfg.Logging.Level)
		slog.SetDefault(logger)

		notes, err := openNotes(cfg.DataDir)
		if err != nil {
			return err
		}
		defer notes.Close()

		registry := api.NewRegistry()
		if err := registry.Register("notes", notes); err != nil {
			return err
		}

		logger.Info("notes table loaded", "records", notes.Len(), "path", notesPath(cfg.DataDir))
		return api.StartServer(registry, api.ServerConfig{
			Port:   cfg.Port,
			Bind:   cfg.Bind,
			APIKey: cfg.Security.APIKey,
		}, logger)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().IntP("port", "p", 0, "Port to listen on (overrides config)")
}

// newLogger builds a text slog logger at the configured level.
func newLogger(level string) *slog.Logger {
	var l slog.Level
	switch level {
	case "debug":
		l = slog.LevelDebug
	case "warn":
		l = slog.LevelWarn
	case "error":
		l = slog.LevelError
	default:
		l = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: l}))
}
