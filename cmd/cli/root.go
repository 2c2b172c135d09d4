package cli

import "github.com/spf13/cobra"

// RegisterRoutes attaches every command group defined in the cli package
// to the provided root command, the way the teacher's own cli package
// aggregates its command groups into one binary.
func RegisterRoutes(root *cobra.Command) {
	root.AddCommand(
		PoolsCmd,
		AdminCmd,
	)
}
