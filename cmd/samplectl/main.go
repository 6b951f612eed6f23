package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var (
	apiFlag      string
	emailFlag    string
	passwordFlag string
	rootCmd      = &cobra.Command{
		Use:   "samplectl",
		Short: "Operator CLI for the due-sample service",
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			_ = godotenv.Load()
		},
	}
)

func main() {
	rootCmd.PersistentFlags().StringVarP(&apiFlag, "api", "a", "http://localhost:5000", "Sample service base URL")
	rootCmd.PersistentFlags().StringVarP(&emailFlag, "email", "e", os.Getenv("SAMPLECTL_EMAIL"), "Login email")
	rootCmd.PersistentFlags().StringVarP(&passwordFlag, "password", "p", os.Getenv("SAMPLECTL_PASSWORD"), "Login password")

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
