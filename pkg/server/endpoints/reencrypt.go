package endpoints

import (
	"crypto/ed25519"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/docvault/docvault/pkg/audit"
	"github.com/docvault/docvault/pkg/config"
	"github.com/docvault/docvault/pkg/enclave"
	"github.com/docvault/docvault/pkg/identity"
	"github.com/docvault/docvault/pkg/server"
)

// ReencryptRequest is the body of POST /keys/{handle}/reencrypt. It is
// the wire form of the signed capability token the vault verifies; the
// server adds nothing and cannot forge it.
type ReencryptRequest struct {
	EphemeralPublicKey string `json:"ephemeral_public_key"`
	Context            string `json:"context"`
	StartAt            int64  `json:"start_at"`
	WindowSeconds      int64  `json:"window_seconds"`
	PublicKey          string `json:"public_key"`
	Signature          string `json:"signature"`
}

// ReencryptResponse carries the sealed value re-encrypted under the
// requester's ephemeral key.
type ReencryptResponse struct {
	Handle         string `json:"handle"`
	ReencryptedKey string `json:"reencrypted_key"`
}

// RegisterReencryptEndpoint registers the access-key re-encryption endpoint
func RegisterReencryptEndpoint(s *server.Server) {
	keysRouter := s.Router.PathPrefix("/keys").Subrouter()
	keysRouter.Use(s.Auth.Middleware)

	// POST /keys/{handle}/reencrypt - Re-encrypt a sealed access key
	keysRouter.HandleFunc("/{handle}/reencrypt", handleReencrypt(s.Vault, s.Config)).Methods("POST")
}

func handleReencrypt(vault enclave.KeyVault, cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		handle := enclave.Handle(mux.Vars(r)["handle"])

		var req ReencryptRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "malformed request body", http.StatusBadRequest)
			return
		}

		vaultReq, err := decodeReencryptRequest(req)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		requester, _ := identity.Get(r.Context())

		// A request may name any window up to the configured maximum.
		if vaultReq.Duration > cfg.ReencryptWindow() {
			audit.Log(audit.ReencryptEvent{
				Handle:       string(handle),
				Requester:    requester.String(),
				ClientIP:     identity.ClientIP(r.Context()),
				ErrorMessage: "requested validity window exceeds the server maximum",
			})
			respondWithError(w, http.StatusForbidden, "requested validity window exceeds the server maximum")
			return
		}

		blob, err := vault.Reencrypt(r.Context(), handle, vaultReq)
		if err != nil {
			audit.Log(audit.ReencryptEvent{
				Handle:       string(handle),
				Requester:    requester.String(),
				ClientIP:     identity.ClientIP(r.Context()),
				ErrorMessage: err.Error(),
			})
			respondWithLedgerError(w, err)
			return
		}

		audit.Log(audit.ReencryptEvent{
			Handle:    string(handle),
			Requester: requester.String(),
			ClientIP:  identity.ClientIP(r.Context()),
			Success:   true,
		})
		respondWithJSON(w, http.StatusOK, ReencryptResponse{
			Handle:         string(handle),
			ReencryptedKey: base64.StdEncoding.EncodeToString(blob),
		})
	}
}

type malformedFieldError string

func (e malformedFieldError) Error() string {
	return "malformed " + string(e)
}

func decodeReencryptRequest(req ReencryptRequest) (enclave.ReencryptRequest, error) {
	var out enclave.ReencryptRequest

	eph, err := base64.StdEncoding.DecodeString(req.EphemeralPublicKey)
	if err != nil || len(eph) != len(out.EphemeralPublicKey) {
		return out, malformedFieldError("ephemeral_public_key")
	}
	copy(out.EphemeralPublicKey[:], eph)

	out.Context, err = identity.Parse(req.Context)
	if err != nil {
		return out, malformedFieldError("context")
	}

	out.StartAt = time.Unix(req.StartAt, 0)
	out.Duration = time.Duration(req.WindowSeconds) * time.Second

	pub, err := base64.StdEncoding.DecodeString(req.PublicKey)
	if err != nil || len(pub) != ed25519.PublicKeySize {
		return out, malformedFieldError("public_key")
	}
	out.PublicKey = ed25519.PublicKey(pub)

	out.Signature, err = base64.StdEncoding.DecodeString(req.Signature)
	if err != nil {
		return out, malformedFieldError("signature")
	}

	return out, nil
}
