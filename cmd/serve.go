package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/markb/socialite/internal/config"
	"github.com/markb/socialite/internal/db"
	"github.com/markb/socialite/internal/log"
	"github.com/markb/socialite/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the account link server",
	Long:  `Starts the HTTP server with the link initiator and callback endpoints.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		// .env is a development convenience; absence is fine.
		_ = godotenv.Load()

		cfg, err := config.Load()
		if err != nil {
			return err
		}
		if err := cfg.Validate(); err != nil {
			return err
		}

		log.Init(&log.Config{Level: cfg.LogLevel, Format: cfg.LogFormat})

		dbPath, _ := cmd.Flags().GetString("db")
		if _, err := os.Stat(dbPath); os.IsNotExist(err) {
			return fmt.Errorf("database not found at %s. Run 'socialite init' first", dbPath)
		}

		database, err := db.New(dbPath)
		if err != nil {
			return fmt.Errorf("failed to open database: %w", err)
		}
		defer database.Close()

		// Run migrations in case the schema is outdated
		if err := database.RunMigrations(); err != nil {
			return fmt.Errorf("failed to run migrations: %w", err)
		}

		srv := server.New(cfg, database)

		stop := make(chan os.Signal, 1)
		signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
		errCh := make(chan error, 1)

		useHTTPS, _ := cmd.Flags().GetBool("https")
		if useHTTPS {
			domain, _ := cmd.Flags().GetString("domain")
			certDir, _ := cmd.Flags().GetString("cert-dir")
			log.Info("starting socialite", "mode", "https", "domain", domain, "provider", cfg.Provider)
			go func() { errCh <- srv.ListenAndServeTLS(domain, certDir, ":443", ":80") }()
		} else {
			host, _ := cmd.Flags().GetString("host")
			port, _ := cmd.Flags().GetInt("port")
			addr := fmt.Sprintf("%s:%d", host, port)
			log.Info("starting socialite", "addr", addr, "provider", cfg.Provider)
			go func() { errCh <- srv.ListenAndServe(addr) }()
		}

		select {
		case err := <-errCh:
			return err
		case <-stop:
			log.Info("shutting down")
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			return srv.Shutdown(ctx)
		}
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().String("db", "socialite.db", "Path to database file")
	serveCmd.Flags().IntP("port", "p", 8080, "Port to listen on")
	serveCmd.Flags().String("host", "0.0.0.0", "Host to bind to")
	serveCmd.Flags().Bool("https", false, "Serve HTTPS with Let's Encrypt certificates")
	serveCmd.Flags().String("domain", "", "Public domain for the HTTPS certificate")
	serveCmd.Flags().String("cert-dir", "certs", "Directory to cache certificates")
}
