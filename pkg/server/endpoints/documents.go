package endpoints

import (
	"crypto/ed25519"
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"github.com/docvault/docvault/pkg/config"
	"github.com/docvault/docvault/pkg/enclave"
	"github.com/docvault/docvault/pkg/identity"
	"github.com/docvault/docvault/pkg/ledger"
	"github.com/docvault/docvault/pkg/server"
)

// CreateDocumentRequest is the body of POST /documents. The access key is
// sealed in the vault and never stored; the proof shows the caller holds it.
type CreateDocumentRequest struct {
	Name      string `json:"name"`
	AccessKey string `json:"access_key"`
	Proof     struct {
		PublicKey string `json:"public_key"`
		Signature string `json:"signature"`
	} `json:"proof"`
}

// UpdateDocumentRequest is the body of POST /documents/{id}.
type UpdateDocumentRequest struct {
	EncryptedBody string `json:"encrypted_body"`
}

// AllowEditorRequest is the body of POST /documents/{id}/editors.
type AllowEditorRequest struct {
	Editor string `json:"editor"`
}

// DocumentResponse is the JSON rendering of a document record.
type DocumentResponse struct {
	ID              uint64    `json:"id"`
	Name            string    `json:"name"`
	EncryptedBody   string    `json:"encrypted_body"`
	AccessKeyHandle string    `json:"access_key_handle"`
	Owner           string    `json:"owner"`
	LastEditor      string    `json:"last_editor"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

func documentResponse(doc *ledger.Document) DocumentResponse {
	return DocumentResponse{
		ID:              doc.ID,
		Name:            doc.Name,
		EncryptedBody:   doc.EncryptedBody,
		AccessKeyHandle: string(doc.AccessKeyHandle),
		Owner:           doc.Owner.String(),
		LastEditor:      doc.LastEditor.String(),
		CreatedAt:       doc.CreatedAt,
		UpdatedAt:       doc.UpdatedAt,
	}
}

// RegisterDocumentsEndpoints registers the document lifecycle endpoints
func RegisterDocumentsEndpoints(s *server.Server) {
	docLedger := s.Ledger
	cfg := s.Config

	docsRouter := s.Router.PathPrefix("/documents").Subrouter()
	docsRouter.Use(s.Auth.Middleware)

	// POST /documents - Create a document
	docsRouter.HandleFunc("", handleCreateDocument(docLedger)).Methods("POST")

	// GET /documents/owner/{identity} - List owned documents
	docsRouter.HandleFunc("/owner/{identity}", handleListByOwner(docLedger, cfg)).Methods("GET")

	// GET /documents/editor/{identity} - List editable documents
	docsRouter.HandleFunc("/editor/{identity}", handleListForEditor(docLedger, cfg)).Methods("GET")

	// GET /documents/{id} - Fetch a document
	docsRouter.HandleFunc("/{id:[0-9]+}", handleGetDocument(docLedger)).Methods("GET")

	// POST /documents/{id} - Replace the encrypted body
	docsRouter.HandleFunc("/{id:[0-9]+}", handleUpdateDocument(docLedger)).Methods("POST")

	// POST /documents/{id}/editors - Grant edit access
	docsRouter.HandleFunc("/{id:[0-9]+}/editors", handleAllowEditor(docLedger)).Methods("POST")

	// GET /documents/{id}/editors/{identity} - Check edit access
	docsRouter.HandleFunc("/{id:[0-9]+}/editors/{identity}", handleCheckEditor(docLedger)).Methods("GET")
}

func handleCreateDocument(docLedger *ledger.Ledger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req CreateDocumentRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "malformed request body", http.StatusBadRequest)
			return
		}

		accessKey, err := base64.StdEncoding.DecodeString(req.AccessKey)
		if err != nil {
			http.Error(w, "malformed access_key", http.StatusBadRequest)
			return
		}
		pub, err := base64.StdEncoding.DecodeString(req.Proof.PublicKey)
		if err != nil || len(pub) != ed25519.PublicKeySize {
			http.Error(w, "malformed proof public_key", http.StatusBadRequest)
			return
		}
		signature, err := base64.StdEncoding.DecodeString(req.Proof.Signature)
		if err != nil {
			http.Error(w, "malformed proof signature", http.StatusBadRequest)
			return
		}

		caller, _ := identity.Get(r.Context())
		doc, err := docLedger.CreateDocument(r.Context(), caller, req.Name, accessKey, enclave.Proof{
			PublicKey: ed25519.PublicKey(pub),
			Signature: signature,
		})
		if err != nil {
			respondWithLedgerError(w, err)
			return
		}

		respondWithJSON(w, http.StatusCreated, documentResponse(doc))
	}
}

func handleGetDocument(docLedger *ledger.Ledger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := documentID(r)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		doc, err := docLedger.GetDocument(id)
		if err != nil {
			respondWithLedgerError(w, err)
			return
		}

		respondWithJSON(w, http.StatusOK, documentResponse(doc))
	}
}

func handleUpdateDocument(docLedger *ledger.Ledger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := documentID(r)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		var req UpdateDocumentRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "malformed request body", http.StatusBadRequest)
			return
		}

		caller, _ := identity.Get(r.Context())
		if err := docLedger.UpdateDocument(r.Context(), caller, id, req.EncryptedBody); err != nil {
			respondWithLedgerError(w, err)
			return
		}

		w.WriteHeader(http.StatusNoContent)
	}
}

func handleAllowEditor(docLedger *ledger.Ledger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := documentID(r)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		var req AllowEditorRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "malformed request body", http.StatusBadRequest)
			return
		}
		editor, err := identity.Parse(req.Editor)
		if err != nil {
			http.Error(w, "malformed editor identity", http.StatusBadRequest)
			return
		}

		caller, _ := identity.Get(r.Context())
		if err := docLedger.AllowEditor(r.Context(), caller, id, editor); err != nil {
			respondWithLedgerError(w, err)
			return
		}

		w.WriteHeader(http.StatusNoContent)
	}
}

func handleCheckEditor(docLedger *ledger.Ledger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := documentID(r)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		editor, err := identity.Parse(mux.Vars(r)["identity"])
		if err != nil {
			http.Error(w, "malformed identity", http.StatusBadRequest)
			return
		}

		allowed, err := docLedger.IsEditor(id, editor)
		if err != nil {
			respondWithLedgerError(w, err)
			return
		}

		respondWithJSON(w, http.StatusOK, map[string]interface{}{
			"document_id": id,
			"editor":      editor.String(),
			"allowed":     allowed,
		})
	}
}

func handleListByOwner(docLedger *ledger.Ledger, cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		owner, err := identity.Parse(mux.Vars(r)["identity"])
		if err != nil {
			http.Error(w, "malformed identity", http.StatusBadRequest)
			return
		}

		ids, err := docLedger.DocumentsByOwner(owner)
		if err != nil {
			respondWithLedgerError(w, err)
			return
		}

		respondWithJSON(w, http.StatusOK, map[string]interface{}{
			"owner":        owner.String(),
			"document_ids": capList(ids, cfg.APIDocumentListLimitMax),
		})
	}
}

func handleListForEditor(docLedger *ledger.Ledger, cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		editor, err := identity.Parse(mux.Vars(r)["identity"])
		if err != nil {
			http.Error(w, "malformed identity", http.StatusBadRequest)
			return
		}

		ids, err := docLedger.DocumentsForEditor(editor)
		if err != nil {
			respondWithLedgerError(w, err)
			return
		}

		respondWithJSON(w, http.StatusOK, map[string]interface{}{
			"editor":       editor.String(),
			"document_ids": capList(ids, cfg.APIDocumentListLimitMax),
		})
	}
}

func documentID(r *http.Request) (uint64, error) {
	return strconv.ParseUint(mux.Vars(r)["id"], 10, 64)
}

func capList(ids []uint64, limit int) []uint64 {
	if limit > 0 && len(ids) > limit {
		return ids[:limit]
	}
	return ids
}

func respondWithLedgerError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ledger.ErrInvalidArgument):
		respondWithError(w, http.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, ledger.ErrNotFound), errors.Is(err, enclave.ErrUnknownHandle):
		respondWithError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, ledger.ErrNotAuthorized),
		errors.Is(err, enclave.ErrUnauthorized),
		errors.Is(err, enclave.ErrInvalidProof),
		errors.Is(err, enclave.ErrExpiredRequest):
		respondWithError(w, http.StatusForbidden, err.Error())
	default:
		respondWithError(w, http.StatusInternalServerError, err.Error())
	}
}
