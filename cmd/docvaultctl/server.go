package main

import (
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"github.com/docvault/docvault/pkg/audit"
	"github.com/docvault/docvault/pkg/config"
	"github.com/docvault/docvault/pkg/db"
	"github.com/docvault/docvault/pkg/enclave"
	"github.com/docvault/docvault/pkg/envelope"
	"github.com/docvault/docvault/pkg/identity"
	"github.com/docvault/docvault/pkg/ledger"
	ledgergorm "github.com/docvault/docvault/pkg/ledger/gorm"
	"github.com/docvault/docvault/pkg/ledger/memory"
	"github.com/docvault/docvault/pkg/server"
	"github.com/docvault/docvault/pkg/server/endpoints"
)

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
	Short: "Run the docvault application server",
	Long: `Run the docvault application server

To run the server requires the environment variables DOCVAULT_DATA_KEY and DATABASE_URL.

By default, database migrations are run on startup. Use --no-migrate to skip.
Use --dev to run with an in-memory store and a throwaway data key.`,
	Run: func(cmd *cobra.Command, args []string) {
		dev, _ := cmd.Flags().GetBool("dev")

		// Validate required environment variables first (fail fast)
		dataKeyB64, ok := os.LookupEnv("DOCVAULT_DATA_KEY")
		if !ok && !dev {
			fmt.Fprintln(os.Stderr, "DOCVAULT_DATA_KEY environment variable is required")
			os.Exit(1)
		}

		if os.Getenv("DATABASE_URL") == "" && !dev {
			fmt.Fprintln(os.Stderr, "DATABASE_URL environment variable is required")
			os.Exit(1)
		}

		cfg := config.Get()
		if err := cfg.Validate(); err != nil {
			fmt.Fprintln(os.Stderr, "Invalid configuration:", err)
			os.Exit(1)
		}
		audit.SetEnabled(cfg.AuditEnabled)

		var dataKey []byte
		var err error
		if dataKeyB64 != "" {
			dataKey, err = base64.StdEncoding.DecodeString(dataKeyB64)
			if err != nil {
				fmt.Println("Bad DOCVAULT_DATA_KEY:", err)
				os.Exit(1)
			}
		} else {
			log.Println("No DOCVAULT_DATA_KEY set, generating a throwaway key (dev mode)")
			dataKey, err = envelope.RandomBytes(32)
			if err != nil {
				fmt.Println("Unable to generate data key:", err)
				os.Exit(1)
			}
		}

		vault, err := enclave.NewVault(dataKey)
		if err != nil {
			fmt.Println("Unable to initiate vault:", err)
			os.Exit(1)
		}

		var store ledger.Store
		var database *gorm.DB
		if dev {
			store = memory.NewStore()
		} else {
			// Run migrations unless --no-migrate is set
			noMigrate, _ := cmd.Flags().GetBool("no-migrate")
			if !noMigrate {
				log.Println("Running database migrations...")
				if err := runMigrations(); err != nil {
					fmt.Fprintf(os.Stderr, "Migration failed: %v\n", err)
					os.Exit(1)
				}
			}

			database, err = db.Connect(db.Config{})
			if err != nil {
				fmt.Println("Unable to connect to DB:", err)
				os.Exit(1)
			}
			store = ledgergorm.NewStore(database)
		}

		docLedger := ledger.New(store, vault, contextAddress(dataKey))

		host, _ := cmd.Flags().GetString("bind-address")
		port, _ := cmd.Flags().GetString("port")
		s := server.NewServer(vault, docLedger, cfg, database, host, port)

		endpoints.RegisterAll(s)

		// SIGHUP reloads configuration, see `docvaultctl configuration apply`
		hup := make(chan os.Signal, 1)
		signal.Notify(hup, syscall.SIGHUP)
		go func() {
			for range hup {
				if err := config.Reload(); err != nil {
					log.Println("Configuration reload failed:", err)
					continue
				}
				audit.SetEnabled(config.Get().AuditEnabled)
				log.Println("Configuration reloaded")
			}
		}()

		if watch, _ := cmd.Flags().GetBool("watch-config"); watch {
			done := make(chan struct{})
			defer close(done)
			go func() {
				if err := config.Watch(done, func(cfg *config.Config) {
					audit.SetEnabled(cfg.AuditEnabled)
					log.Println("Configuration reloaded")
				}); err != nil {
					fmt.Fprintf(os.Stderr, "Config watch failed: %v\n", err)
				}
			}()
		}

		log.Printf("Running server at http://%s:%s...\n", host, port)
		log.Fatal(s.Start())
	},
}

// contextAddress derives the ledger context address from the data key, so
// restarts keep sealed handles bound to the same context.
func contextAddress(dataKey []byte) identity.ID {
	digest := sha256.Sum256(append([]byte("docvault/context/v1\x00"), dataKey...))

	var id identity.ID
	copy(id[:], digest[:identity.Size])
	return id
}

func init() {
	rootCmd.AddCommand(serverCmd)

	serverCmd.Flags().StringP("port", "p", defaultPort(), "server listen port")
	serverCmd.Flags().StringP("bind-address", "b", defaultBindAddress(), "server bind address")
	serverCmd.Flags().Bool("no-migrate", false, "skip running database migrations on start")
	serverCmd.Flags().Bool("dev", false, "run with an in-memory store and no database")
	serverCmd.Flags().Bool("watch-config", false, "reload configuration when the config file changes")
}
