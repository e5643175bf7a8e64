package cli

import (
	"os"

	"github.com/spf13/cobra"
)

var port string

// Execute runs the CLI.
func Execute() error {
	return newRootCmd().Execute()
}

func newRootCmd() *cobra.Command {
	envPort := os.Getenv("PORT")
	if envPort == "" {
		envPort = "8080"
	}

	cmd := &cobra.Command{
		Use:   "assessment-service",
		Short: "Network+ exam preparation assessment service",
	}

	cmd.PersistentFlags().StringVar(&port, "port", envPort, "port to listen on")
	cmd.AddCommand(NewStartCmd(&port))
	cmd.AddCommand(NewMigrateCmd())
	cmd.AddCommand(NewSeedCmd())
	return cmd
}
