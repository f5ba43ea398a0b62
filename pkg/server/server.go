package server

import (
	"net/http"
	"os"
	"time"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"gorm.io/gorm"

	"github.com/docvault/docvault/pkg/config"
	"github.com/docvault/docvault/pkg/enclave"
	"github.com/docvault/docvault/pkg/ledger"
	"github.com/docvault/docvault/pkg/server/middleware"
)

type Server struct {
	Vault  enclave.KeyVault
	Ledger *ledger.Ledger
	Config *config.Config
	Auth   *middleware.TokenAuthenticator
	Router *mux.Router
	DB     *gorm.DB
	srv    *http.Server
}

func NewServer(
	vault enclave.KeyVault,
	docLedger *ledger.Ledger,
	cfg *config.Config,
	db *gorm.DB,
	host string,
	port string,
) *Server {

	router := mux.NewRouter().UseEncodedPath()
	srv := &http.Server{
		Handler: handlers.LoggingHandler(os.Stdout, router),
		Addr:    host + ":" + port,
		// Good practice: enforce timeouts for servers you create!
		WriteTimeout: 15 * time.Second,
		ReadTimeout:  15 * time.Second,
	}

	return &Server{
		Vault:  vault,
		Ledger: docLedger,
		Config: cfg,
		Auth:   middleware.NewTokenAuthenticator(cfg),
		Router: router,
		DB:     db,
		srv:    srv,
	}
}

func (s Server) Start() error {
	return s.srv.ListenAndServe()
}
