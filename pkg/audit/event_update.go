package audit

import "fmt"

// UpdateEvent represents a document body update audit event. The body is
// opaque ciphertext and is carried verbatim so external consumers can
// index revisions without reading the ledger.
type UpdateEvent struct {
	DocumentID    uint64
	Editor        string
	EncryptedBody string
	ClientIP      string
	Success       bool
	ErrorMessage  string
}

func (e UpdateEvent) MessageID() string {
	return "update"
}

func (e UpdateEvent) Message() string {
	if e.Success {
		return fmt.Sprintf("%s updated document %d (%d ciphertext bytes)", e.Editor, e.DocumentID, len(e.EncryptedBody))
	}
	msg := fmt.Sprintf("%s tried to update document %d", e.Editor, e.DocumentID)
	if e.ErrorMessage != "" {
		msg += ": " + e.ErrorMessage
	}
	return msg
}

func (e UpdateEvent) Severity() Severity {
	if e.Success {
		return SeverityInfo
	}
	return SeverityWarning
}

func (e UpdateEvent) Facility() int {
	return FacilityAuthPriv
}

func (e UpdateEvent) StructuredData() map[string]map[string]string {
	sd := map[string]map[string]string{
		SDIDAuth: {
			"editor": e.Editor,
		},
		SDIDSubject: {
			"document": fmt.Sprintf("%d", e.DocumentID),
			"body":     e.EncryptedBody,
		},
		SDIDClient: {
			"ip": e.ClientIP,
		},
		SDIDAction: {
			"operation": "update",
		},
	}
	if e.Success {
		sd[SDIDAction]["result"] = "success"
	} else {
		sd[SDIDAction]["result"] = "failure"
	}
	return sd
}
