package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// Version information set via ldflags at build time
var (
	Version   = "dev"
	BuildTime = ""
	GitCommit = ""
)

var rootCmd = &cobra.Command{
	Use:     "socialite",
	Short:   "socialite - social account link service",
	Long:    `A single-binary service that links third-party social accounts to application users via OAuth 2.0 authorization code with PKCE, and stores the resulting credentials.`,
	Version: Version,
}

func init() {
	rootCmd.SetVersionTemplate("socialite version {{.Version}}\n")
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
