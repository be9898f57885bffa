// Package cli implements the speechcraft command-line client.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// Execute runs the CLI.
func Execute() int {
	rootCmd := newRootCmd()
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}

func newRootCmd() *cobra.Command {
	var (
		server string
		token  string
		userID string
		output string
	)

	client := &Client{}

	rootCmd := &cobra.Command{
		Use:           "speechcraft",
		Short:         "Speechcraft transcription CLI",
		Long:          "Command-line client for the speechcraft transcription API.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			// Precedence: flag > env > default
			if !cmd.Flags().Changed("server") {
				if v := os.Getenv("SPEECHCRAFT_SERVER"); v != "" {
					server = v
				}
			}
			if !cmd.Flags().Changed("token") {
				if v := os.Getenv("SPEECHCRAFT_TOKEN"); v != "" {
					token = v
				}
			}
			if !cmd.Flags().Changed("user") {
				if v := os.Getenv("SPEECHCRAFT_USER"); v != "" {
					userID = v
				}
			}
			if output != "table" && output != "json" {
				return fmt.Errorf("unsupported output format %q: use 'table' or 'json'", output)
			}
			client.BaseURL = server
			client.Token = token
			client.UserID = userID
			return nil
		},
	}

	rootCmd.PersistentFlags().StringVar(&server, "server", "http://localhost:8080", "API server URL")
	rootCmd.PersistentFlags().StringVar(&token, "token", "", "JWT bearer token")
	rootCmd.PersistentFlags().StringVarP(&userID, "user", "u", "", "User id to act as (when the server runs without auth)")
	rootCmd.PersistentFlags().StringVarP(&output, "output", "o", "table", "Output format (table, json)")

	rootCmd.AddCommand(newSubmitCmd(client))
	rootCmd.AddCommand(newStatusCmd(client))
	rootCmd.AddCommand(newHistoryCmd(client))
	rootCmd.AddCommand(newStatsCmd(client))
	rootCmd.AddCommand(newDeleteCmd(client))
	rootCmd.AddCommand(newWatchCmd(client))

	return rootCmd
}

func outputFormat(cmd *cobra.Command) string {
	v, _ := cmd.Root().PersistentFlags().GetString("output")
	return v
}
