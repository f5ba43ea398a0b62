package endpoints

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/docvault/docvault/pkg/config"
	"github.com/docvault/docvault/pkg/enclave"
	"github.com/docvault/docvault/pkg/identity"
	"github.com/docvault/docvault/pkg/ledger"
	"github.com/docvault/docvault/pkg/ledger/memory"
	"github.com/docvault/docvault/pkg/server"
	"github.com/docvault/docvault/pkg/server/middleware"
)

// newTestServer wires a server against the in-memory store and an
// in-process vault. No database is involved.
func newTestServer(t *testing.T) *server.Server {
	t.Helper()
	t.Setenv("DOCVAULT_CONFIG_PATH", t.TempDir())

	cfg, err := config.Load()
	require.NoError(t, err)

	dataKey := make([]byte, 32)
	for i := range dataKey {
		dataKey[i] = byte(i)
	}
	vault, err := enclave.NewVault(dataKey)
	require.NoError(t, err)

	docLedger := ledger.New(memory.NewStore(), vault, identity.ID{0x1d})

	srv := server.NewServer(vault, docLedger, cfg, nil, "", "0")
	RegisterAll(srv)
	return srv
}

func newTestKey(t *testing.T) *identity.SignerKey {
	t.Helper()
	key, err := identity.GenerateKey()
	require.NoError(t, err)
	return key
}

// doRequest performs a request against the server router as the given
// key's identity. A nil key sends no Authorization header.
func doRequest(t *testing.T, srv *server.Server, key *identity.SignerKey, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(encoded)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.RemoteAddr = "192.0.2.10:34567"
	if key != nil {
		token, err := middleware.IssueToken(key, time.Now())
		require.NoError(t, err)
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	srv.Router.ServeHTTP(rec, req)
	return rec
}

func createRequestBody(key *identity.SignerKey, name string, accessKey []byte) CreateDocumentRequest {
	req := CreateDocumentRequest{
		Name:      name,
		AccessKey: base64.StdEncoding.EncodeToString(accessKey),
	}
	req.Proof.PublicKey = base64.StdEncoding.EncodeToString(key.Public())
	req.Proof.Signature = base64.StdEncoding.EncodeToString(key.Sign(enclave.SealProofDomain, accessKey))
	return req
}

// createTestDocument creates a document through the API and returns its
// JSON representation.
func createTestDocument(t *testing.T, srv *server.Server, key *identity.SignerKey, name string, accessKey []byte) DocumentResponse {
	t.Helper()

	rec := doRequest(t, srv, key, "POST", "/documents", createRequestBody(key, name, accessKey))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var doc DocumentResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &doc))
	return doc
}
