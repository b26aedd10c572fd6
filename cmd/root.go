package cmd

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "price-reconciler",
	Short: "Reconcile uploaded price lists against current ERP prices",
}

func init() {
	rootCmd.AddCommand(startCmd)
	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(reconcileCmd)
}

func Execute() error {
	return rootCmd.Execute()
}
