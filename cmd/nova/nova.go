// Package novacmder
package novacmder

import (
	"github.com/spf13/cobra"

	servecmder "github.com/novalabs/nova/cmd/nova/serve"
	versioncmder "github.com/novalabs/nova/cmd/version"
)

const novaLongDesc string = `Nova is a conversational backend with per-user semantic memory.

Run the backend using:
  nova serve    Run the HTTP API server`

const novaShortDesc string = "Nova - conversational backend with memory"

func NewNovaCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "nova",
		Short: novaShortDesc,
		Long:  novaLongDesc,
	}

	// Global flags
	cmd.PersistentFlags().BoolP("debug", "d", false, "Enable debug logging")

	// Add subcommands
	cmd.AddCommand(servecmder.NewServeCmd())
	cmd.AddCommand(versioncmder.NewVersionCmd())

	return cmd
}
