package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	app "github.com/rocketscienceinc/tictactoe-rooms/internal"
	"github.com/rocketscienceinc/tictactoe-rooms/internal/config"
	"github.com/rocketscienceinc/tictactoe-rooms/internal/logger"
)

const defaultServerURL = "http://localhost:9090"

// NewRootCmd creates the root command
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "tictactoe",
		Short: "Multi-room tic-tac-toe server",
		Long: `tictactoe runs the room server and queries a running one.

The server speaks JSON over WebSocket to players and exposes a small
REST API with the lobby, match history and Prometheus metrics.`,
		SilenceUsage: true,
	}

	rootCmd.AddCommand(newServeCmd())
	rootCmd.AddCommand(newRoomsCmd())
	rootCmd.AddCommand(newHistoryCmd())

	return rootCmd
}

// Execute runs the root command
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newServeCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the WebSocket and REST servers",
		RunE: func(cmd *cobra.Command, args []string) error {
			conf, err := config.Load(configPath)
			if err != nil {
				return err
			}

			log, closer, err := logger.New(conf)
			if err != nil {
				return err
			}
			defer func() { _ = closer.Close() }()

			if err = app.RunApp(log, conf); err != nil {
				return fmt.Errorf("app run failed: %w", err)
			}

			return nil
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "config.yml", "Path to the YAML config file")

	return cmd
}

func newRoomsCmd() *cobra.Command {
	var serverURL string

	cmd := &cobra.Command{
		Use:   "rooms",
		Short: "List joinable rooms of a running server",
		RunE: func(cmd *cobra.Command, args []string) error {
			var result map[string]any
			if err := NewClient(serverURL).Get("/rooms", &result); err != nil {
				return err
			}

			return printJSON(cmd.OutOrStdout(), result)
		},
	}

	cmd.Flags().StringVar(&serverURL, "server", defaultServerURL, "REST server URL")

	return cmd
}

func newHistoryCmd() *cobra.Command {
	var (
		serverURL string
		limit     int
	)

	cmd := &cobra.Command{
		Use:   "history <room-id>",
		Short: "Show finished matches of a room",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := fmt.Sprintf("/rooms/%s/matches", args[0])
			if limit > 0 {
				path = fmt.Sprintf("%s?limit=%d", path, limit)
			}

			var result map[string]any
			if err := NewClient(serverURL).Get(path, &result); err != nil {
				return err
			}

			return printJSON(cmd.OutOrStdout(), result)
		},
	}

	cmd.Flags().StringVar(&serverURL, "server", defaultServerURL, "REST server URL")
	cmd.Flags().IntVar(&limit, "limit", 0, "Maximum number of matches, newest first")

	return cmd
}

func printJSON(out io.Writer, value any) error {
	encoder := json.NewEncoder(out)
	encoder.SetIndent("", "  ")

	return encoder.Encode(value)
}
