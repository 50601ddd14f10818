package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// Build-time variables, injected via ldflags:
//
//	go build -ldflags "-X github.com/nyashahama/dx-scoping-backend/internal/cli.Version=1.0.0
//	  -X github.com/nyashahama/dx-scoping-backend/internal/cli.Commit=$(git rev-parse --short HEAD)"
var (
	Version = "dev"
	Commit  = "none"
)

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "dxscope %s\n", Version)
			fmt.Fprintf(cmd.OutOrStdout(), "  commit:  %s\n", Commit)
		},
	}
}
