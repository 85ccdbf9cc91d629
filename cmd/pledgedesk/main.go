// Command pledgedesk serves the observer pledge workspace and exports pledge documents offline.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "pledgedesk",
	Short: "Observer pledge desk",
	Long: `pledgedesk fills the observer pledge form and exports it as a two-page A4 PDF.

Run "pledgedesk serve" for the operator workspace, or "pledgedesk export" to turn
record files into documents without a browser session.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(exportCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
