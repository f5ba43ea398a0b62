package endpoints

import (
	"github.com/docvault/docvault/pkg/server"
)

// RegisterAll registers all API endpoints on the server
func RegisterAll(srv *server.Server) {
	RegisterDocumentsEndpoints(srv)
	RegisterReencryptEndpoint(srv)
	RegisterStatusEndpoints(srv)
}
