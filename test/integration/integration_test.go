package integration

import (
	"bytes"
	"context"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/curve25519"

	"github.com/docvault/docvault/pkg/enclave"
	"github.com/docvault/docvault/pkg/identity"
	"github.com/docvault/docvault/pkg/server/endpoints"
	"github.com/docvault/docvault/pkg/server/middleware"
)

// TestDocumentLifecycle exercises the full flow against a real PostgreSQL
// database: create a document, grant an editor, update the body and
// recover the access key through the re-encryption endpoint.
//
// Requires Docker. Run with:
//
//	INTEGRATION_TEST=1 go test -v ./test/integration/...
func TestDocumentLifecycle(t *testing.T) {
	if os.Getenv("INTEGRATION_TEST") != "1" {
		t.Skip("INTEGRATION_TEST not set, skipping integration test")
	}

	ctx := context.Background()
	tc, err := NewTestContext(ctx)
	require.NoError(t, err)
	defer tc.Cleanup(ctx)

	owner, err := identity.GenerateKey()
	require.NoError(t, err)
	editor, err := identity.GenerateKey()
	require.NoError(t, err)

	accessKey := make([]byte, 32)
	_, err = rand.Read(accessKey)
	require.NoError(t, err)

	// Create a document.
	createBody := endpoints.CreateDocumentRequest{
		Name:      "integration notes",
		AccessKey: base64.StdEncoding.EncodeToString(accessKey),
	}
	createBody.Proof.PublicKey = base64.StdEncoding.EncodeToString(owner.Public())
	createBody.Proof.Signature = base64.StdEncoding.EncodeToString(owner.Sign(enclave.SealProofDomain, accessKey))

	rec := tc.request(t, owner, "POST", "/documents", createBody)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var doc endpoints.DocumentResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &doc))
	assert.Equal(t, owner.Address().String(), doc.Owner)

	// Grant the editor and let them update the body.
	rec = tc.request(t, owner, "POST", fmt.Sprintf("/documents/%d/editors", doc.ID),
		endpoints.AllowEditorRequest{Editor: editor.Address().String()})
	require.Equal(t, http.StatusNoContent, rec.Code, rec.Body.String())

	rec = tc.request(t, editor, "POST", fmt.Sprintf("/documents/%d", doc.ID),
		endpoints.UpdateDocumentRequest{EncryptedBody: "aW50ZWdyYXRpb24="})
	require.Equal(t, http.StatusNoContent, rec.Code, rec.Body.String())

	rec = tc.request(t, owner, "GET", fmt.Sprintf("/documents/%d", doc.ID), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &doc))
	assert.Equal(t, "aW50ZWdyYXRpb24=", doc.EncryptedBody)
	assert.Equal(t, editor.Address().String(), doc.LastEditor)

	// The editor recovers the access key through the handshake endpoint.
	var ephPriv [32]byte
	_, err = rand.Read(ephPriv[:])
	require.NoError(t, err)
	ephPub, err := curve25519.X25519(ephPriv[:], curve25519.Basepoint)
	require.NoError(t, err)

	vaultReq := enclave.ReencryptRequest{
		Context:   tc.Ledger.ContextAddress(),
		StartAt:   time.Unix(time.Now().Unix(), 0),
		Duration:  time.Hour,
		PublicKey: editor.Public(),
	}
	copy(vaultReq.EphemeralPublicKey[:], ephPub)
	vaultReq.Signature = editor.Sign(enclave.ReencryptDomain, vaultReq.SignedPayload())

	rec = tc.request(t, editor, "POST", fmt.Sprintf("/keys/%s/reencrypt", doc.AccessKeyHandle),
		endpoints.ReencryptRequest{
			EphemeralPublicKey: base64.StdEncoding.EncodeToString(ephPub),
			Context:            vaultReq.Context.String(),
			StartAt:            vaultReq.StartAt.Unix(),
			WindowSeconds:      int64(vaultReq.Duration / time.Second),
			PublicKey:          base64.StdEncoding.EncodeToString(editor.Public()),
			Signature:          base64.StdEncoding.EncodeToString(vaultReq.Signature),
		})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp endpoints.ReencryptResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	blob, err := base64.StdEncoding.DecodeString(resp.ReencryptedKey)
	require.NoError(t, err)

	recovered, err := enclave.OpenReencrypted(ephPriv, enclave.Handle(doc.AccessKeyHandle), blob)
	require.NoError(t, err)
	assert.Equal(t, accessKey, recovered)

	// Listings come back from the real database.
	rec = tc.request(t, owner, "GET", "/documents/owner/"+owner.Address().String(), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var listing struct {
		DocumentIDs []uint64 `json:"document_ids"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &listing))
	assert.Equal(t, []uint64{doc.ID}, listing.DocumentIDs)
}

func (tc *TestContext) request(t *testing.T, key *identity.SignerKey, method, path string, body interface{}) *httptest.ResponseRecorder {
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
	tc.Server.Router.ServeHTTP(rec, req)
	return rec
}
