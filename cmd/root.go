/*
Copyright © 2026 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "gateway",
	Short: "Enrollment gateway for the biometric terminal backend",
	Long: `gateway fronts the biometric terminal's HTTP backend: it validates
user registrations, normalizes the backend's two response shapes, keeps
an audit trail of every relayed write, and optionally archives face
captures and publishes enrollment events for device-sync workers.`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}
