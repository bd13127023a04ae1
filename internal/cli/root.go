// Package cli wires the shipcore commands: the HTTP server and an offline
// CSV validation dry-run.
package cli

import "github.com/spf13/cobra"

var version = "0.1.0"

// NewRootCommand builds the shipcore command tree.
func NewRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:     "shipcore",
		Short:   "Bulk shipment batch service",
		Long:    "shipcore ingests shipment CSV batches, validates and prices records, and purchases labels.",
		Version: version,
	}
	root.CompletionOptions.DisableDefaultCmd = true
	root.AddCommand(newServeCommand())
	root.AddCommand(newValidateCommand())
	return root
}
