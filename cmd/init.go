package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/markb/socialite/internal/db"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create the socialite database",
	Long:  `Creates the database file and the connections table.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		dbPath, _ := cmd.Flags().GetString("db")

		if _, err := os.Stat(dbPath); err == nil {
			force, _ := cmd.Flags().GetBool("force")
			if !force {
				return fmt.Errorf("database already exists at %s (use --force to reinitialize)", dbPath)
			}
		}

		database, err := db.New(dbPath)
		if err != nil {
			return fmt.Errorf("failed to create database: %w", err)
		}
		defer database.Close()

		if err := database.RunMigrations(); err != nil {
			return fmt.Errorf("failed to create schema: %w", err)
		}

		fmt.Printf("Initialized database at %s\n", dbPath)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(initCmd)
	initCmd.Flags().String("db", "socialite.db", "Path to database file")
	initCmd.Flags().Bool("force", false, "Reinitialize an existing database")
}
