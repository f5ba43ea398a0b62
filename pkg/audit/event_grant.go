package audit

import "fmt"

// GrantEvent represents an editor grant audit event
type GrantEvent struct {
	DocumentID   uint64
	Owner        string
	Editor       string
	ClientIP     string
	Success      bool
	ErrorMessage string
}

func (e GrantEvent) MessageID() string {
	return "grant"
}

func (e GrantEvent) Message() string {
	if e.Success {
		return fmt.Sprintf("%s allowed %s to edit document %d", e.Owner, e.Editor, e.DocumentID)
	}
	msg := fmt.Sprintf("%s tried to allow %s to edit document %d", e.Owner, e.Editor, e.DocumentID)
	if e.ErrorMessage != "" {
		msg += ": " + e.ErrorMessage
	}
	return msg
}

func (e GrantEvent) Severity() Severity {
	if e.Success {
		return SeverityInfo
	}
	return SeverityWarning
}

func (e GrantEvent) Facility() int {
	return FacilityAuthPriv
}

func (e GrantEvent) StructuredData() map[string]map[string]string {
	sd := map[string]map[string]string{
		SDIDAuth: {
			"owner": e.Owner,
		},
		SDIDSubject: {
			"document": fmt.Sprintf("%d", e.DocumentID),
			"editor":   e.Editor,
		},
		SDIDClient: {
			"ip": e.ClientIP,
		},
		SDIDAction: {
			"operation": "grant",
		},
	}
	if e.Success {
		sd[SDIDAction]["result"] = "success"
	} else {
		sd[SDIDAction]["result"] = "failure"
	}
	return sd
}
