// Package server provides the HTTP server for the docvault API.
//
// This package implements the core HTTP server that handles all docvault
// REST API requests. It uses gorilla/mux for routing and provides
// middleware for authentication and request handling.
//
// # Server Setup
//
//	srv := server.NewServer(vault, docLedger, cfg, db, host, port)
//	endpoints.RegisterAll(srv)
//	if err := srv.Start(); err != nil {
//	    log.Fatal(err)
//	}
//
// # Components
//
// The Server struct holds:
//
//   - Vault: sealed access-key storage and re-encryption
//   - Ledger: document records and editor sets
//   - Config: server configuration
//   - Auth: bearer token validation
//   - Router: HTTP request router
//   - DB: Database connection
//
// # Endpoints
//
// API endpoints are registered via the endpoints subpackage:
//
//	endpoints.RegisterAll(srv)
//
// This registers all standard docvault API endpoints including:
//
//   - /documents - Document creation
//   - /documents/{id} - Document read and body update
//   - /documents/{id}/editors - Editor grants
//   - /documents/owner/{identity} - Owned document listing
//   - /documents/editor/{identity} - Editable document listing
//   - /keys/{handle}/reencrypt - Access-key re-encryption
//   - /health - Health check
package server
