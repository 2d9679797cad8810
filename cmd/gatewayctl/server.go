package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/doodlesbykumbi/gateway-admin/pkg/config"
	"github.com/doodlesbykumbi/gateway-admin/pkg/db"
	"github.com/doodlesbykumbi/gateway-admin/pkg/logging"
	"github.com/doodlesbykumbi/gateway-admin/pkg/secretbox"
	"github.com/doodlesbykumbi/gateway-admin/pkg/server"
	"github.com/doodlesbykumbi/gateway-admin/pkg/server/endpoints"
)

const shutdownTimeout = 10 * time.Second

func defaultBindAddress() string {
	if addr := os.Getenv("BIND_ADDRESS"); addr != "" {
		return addr
	}
	return "0.0.0.0"
}

func defaultPort() string {
	if port := os.Getenv("PORT"); port != "" {
		return port
	}
	return "8000"
}

func defaultPortInt() int {
	if port := os.Getenv("PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			return p
		}
	}
	return 8000
}

// serverCmd represents the server command
var serverCmd = &cobra.Command{
	Use:   "server",
	Short: "Run the gateway admin API server",
	Long: `Run the gateway admin API server.

The server requires DATABASE_URL and GATEWAY_DATA_KEY, and GATEWAY_JWT_SECRET
unless auth_enabled is false.

By default, database migrations are run on startup. Use --no-migrate to skip.
SIGHUP reloads gateway.yml; SIGINT and SIGTERM shut down gracefully.`,
	Run: func(cmd *cobra.Command, args []string) {
		host, _ := cmd.Flags().GetString("bind-address")
		port, _ := cmd.Flags().GetString("port")
		noMigrate, _ := cmd.Flags().GetBool("no-migrate")

		if err := runServer(host, port, !noMigrate); err != nil {
			fmt.Fprintf(os.Stderr, "Server failed: %v\n", err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(serverCmd)

	serverCmd.Flags().StringP("port", "p", defaultPort(), "server listen port")
	serverCmd.Flags().StringP("bind-address", "b", defaultBindAddress(), "server bind address")
	serverCmd.Flags().Bool("no-migrate", false, "skip running database migrations on start")
}

func runServer(host, port string, migrateOnStart bool) error {
	// Validate required settings first (fail fast)
	if err := config.Reload(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	cfg := config.Get()

	logCloser, err := logging.Setup(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = logCloser.Close() }()

	cipher, err := secretbox.NewSymmetricFromEnv()
	if err != nil {
		return err
	}

	dbURL := db.URL()
	if dbURL == "" {
		return fmt.Errorf("DATABASE_URL environment variable is required")
	}
	dialect, err := db.Dialect(dbURL)
	if err != nil {
		return err
	}

	if migrateOnStart && dialect == db.DialectPostgres {
		log.Info("Running database migrations...")
		if err := runMigrations(); err != nil {
			return fmt.Errorf("migration failed: %w", err)
		}
	}

	database, err := db.Connect(db.Config{URL: dbURL})
	if err != nil {
		return err
	}
	if migrateOnStart && dialect == db.DialectSQLite {
		if err := db.AutoMigrate(database); err != nil {
			return err
		}
	}

	s, err := server.NewServer(cfg, database, cipher, host, port)
	if err != nil {
		return err
	}
	endpoints.RegisterAll(s)

	errCh := make(chan error, 1)
	go func() {
		errCh <- s.Start()
	}()

	signals := make(chan os.Signal, 1)
	signal.Notify(signals, syscall.SIGHUP, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(signals)

	for {
		select {
		case err := <-errCh:
			return err
		case sig := <-signals:
			if sig == syscall.SIGHUP {
				reloadConfiguration(s)
				continue
			}
			log.Infof("Received %s, shutting down...", sig)
			ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			err := s.Shutdown(ctx)
			cancel()
			return err
		}
	}
}

// reloadConfiguration keeps the running configuration when the new one is
// invalid. Listen address, auth and metrics settings need a restart.
func reloadConfiguration(s *server.Server) {
	if err := config.Reload(); err != nil {
		log.WithError(err).Error("configuration reload failed, keeping current configuration")
		return
	}
	cfg := config.Get()
	if level, err := log.ParseLevel(cfg.LogLevel); err == nil {
		log.SetLevel(level)
	}
	s.SetConfig(cfg)
	log.WithField("file", cfg.ConfigFilePath()).Info("configuration reloaded")
}
