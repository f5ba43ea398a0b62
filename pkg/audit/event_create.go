package audit

import "fmt"

// CreateEvent represents a document creation audit event
type CreateEvent struct {
	DocumentID   uint64
	Owner        string
	Name         string
	ClientIP     string
	Success      bool
	ErrorMessage string
}

func (e CreateEvent) MessageID() string {
	return "create"
}

func (e CreateEvent) Message() string {
	if e.Success {
		return fmt.Sprintf("%s created document %d (%q)", e.Owner, e.DocumentID, e.Name)
	}
	msg := fmt.Sprintf("%s tried to create document %q", e.Owner, e.Name)
	if e.ErrorMessage != "" {
		msg += ": " + e.ErrorMessage
	}
	return msg
}

func (e CreateEvent) Severity() Severity {
	if e.Success {
		return SeverityInfo
	}
	return SeverityWarning
}

func (e CreateEvent) Facility() int {
	return FacilityAuthPriv
}

func (e CreateEvent) StructuredData() map[string]map[string]string {
	sd := map[string]map[string]string{
		SDIDAuth: {
			"owner": e.Owner,
		},
		SDIDSubject: {
			"document": fmt.Sprintf("%d", e.DocumentID),
			"name":     e.Name,
		},
		SDIDClient: {
			"ip": e.ClientIP,
		},
		SDIDAction: {
			"operation": "create",
		},
	}
	if e.Success {
		sd[SDIDAction]["result"] = "success"
	} else {
		sd[SDIDAction]["result"] = "failure"
	}
	return sd
}
