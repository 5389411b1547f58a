// Package cli is the fake-braintree command line.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	configPath string
	rootCmd    *cobra.Command
)

func init() {
	rootCmd = &cobra.Command{
		Use:   "fake-braintree",
		Short: "A local stand-in for the Braintree payment gateway",
		Long: `fake-braintree serves the Braintree gateway API from memory so a test suite
can charge cards, vault customers and run subscriptions without network access.

Point the client library at this server with merchant id, public key and
private key all set to "xxx" (or whatever the config says).`,
		RunE:          runServe,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "YAML config file")
	addServeFlags(rootCmd)
}

// Execute runs the root command.
func Execute(version string) error {
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(cardsCmd)
	rootCmd.AddCommand(newVersionCmd(version))

	rootCmd.Version = version
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return err
	}
	return nil
}
