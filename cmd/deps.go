package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/xolan/haven/internal/cli"
)

// annotationOffline marks commands that run without opening storage.
const annotationOffline = "haven/offline"

// offline returns annotations that skip connecting to storage.
func offline() map[string]string {
	return map[string]string{annotationOffline: "true"}
}

// connect opens the services for cmd unless it is marked offline.
func connect(cmd *cobra.Command) error {
	if cmd.Annotations[annotationOffline] == "true" {
		return nil
	}
	switch cmd.Name() {
	case "help", cobra.ShellCompRequestCmd, cobra.ShellCompNoDescRequestCmd:
		return nil
	}
	deps := cli.GetDeps()
	if err := deps.Connect(cmd.Context()); err != nil {
		_, _ = fmt.Fprintln(deps.Stderr, "Error: Failed to open haven")
		_, _ = fmt.Fprintf(deps.Stderr, "Details: %v\n", err)
		_, _ = fmt.Fprintln(deps.Stderr, "Hint: Check your config file with 'haven config path' and 'haven config init'")
		cmd.SilenceUsage = true
		cmd.SilenceErrors = true
		return err
	}
	return nil
}

// disconnect closes services opened by connect.
func disconnect() {
	deps := cli.GetDeps()
	if err := deps.Close(); err != nil {
		_, _ = fmt.Fprintf(deps.Stderr, "Warning: Failed to close storage: %v\n", err)
	}
}
