package audit

import "fmt"

// ReencryptEvent represents an access-key re-encryption audit event
type ReencryptEvent struct {
	Handle       string
	Requester    string
	ClientIP     string
	Success      bool
	ErrorMessage string
}

func (e ReencryptEvent) MessageID() string {
	return "reencrypt"
}

func (e ReencryptEvent) Message() string {
	if e.Success {
		return fmt.Sprintf("%s re-encrypted access key %s", e.Requester, e.Handle)
	}
	msg := fmt.Sprintf("%s tried to re-encrypt access key %s", e.Requester, e.Handle)
	if e.ErrorMessage != "" {
		msg += ": " + e.ErrorMessage
	}
	return msg
}

func (e ReencryptEvent) Severity() Severity {
	if e.Success {
		return SeverityInfo
	}
	return SeverityWarning
}

func (e ReencryptEvent) Facility() int {
	return FacilityAuthPriv
}

func (e ReencryptEvent) StructuredData() map[string]map[string]string {
	sd := map[string]map[string]string{
		SDIDAuth: {
			"requester": e.Requester,
		},
		SDIDSubject: {
			"handle": e.Handle,
		},
		SDIDClient: {
			"ip": e.ClientIP,
		},
		SDIDAction: {
			"operation": "reencrypt",
		},
	}
	if e.Success {
		sd[SDIDAction]["result"] = "success"
	} else {
		sd[SDIDAction]["result"] = "failure"
	}
	return sd
}
