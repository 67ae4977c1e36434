// Package app provides the entry point for the gitcred command-line application.
package app

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/gitcred/gitcred/pkg/logger"
)

var rootCmd = &cobra.Command{
	Use:               "gitcred",
	DisableAutoGenTag: true,
	Short:             "gitcred is a Git credential helper for Azure DevOps",
	Long: `gitcred is a Git credential helper for Azure DevOps (dev.azure.com and
*.visualstudio.com deployments).

It speaks the standard git credential protocol on stdin/stdout (the get,
store, and erase verbs), keeps personal access tokens in the operating
system keyring, and talks to the deployment's identity service to mint
and validate tokens.

Configure it in git with:

    git config --global credential.https://dev.azure.com.helper gitcred`,
	Run: func(cmd *cobra.Command, _ []string) {
		// If no subcommand is provided, print help
		if err := cmd.Help(); err != nil {
			logger.Errorf("Error displaying help: %v", err)
		}
	},
}

// NewRootCmd creates a new root command for the gitcred CLI.
func NewRootCmd() *cobra.Command {
	// Add persistent flags
	rootCmd.PersistentFlags().Bool("debug", false, "Enable debug mode")
	if err := viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug")); err != nil {
		logger.Errorf("failed to bind flag: %v", err)
	}

	// Reconfigure the logger after flags are parsed so --debug takes effect.
	rootCmd.PersistentPreRun = func(_ *cobra.Command, _ []string) {
		logger.Initialize()
	}

	// Add subcommands
	rootCmd.AddCommand(getCmd)
	rootCmd.AddCommand(storeCmd)
	rootCmd.AddCommand(eraseCmd)
	rootCmd.AddCommand(newTokenCmd())
	rootCmd.AddCommand(newValidateCmd())
	rootCmd.AddCommand(newVersionCmd())

	return rootCmd
}
