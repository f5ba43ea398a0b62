package audit

import (
	"bytes"
	"strings"
	"testing"
)

func TestLoggerFormat(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger()
	logger.SetWriter(&buf)

	event := CreateEvent{
		DocumentID: 42,
		Owner:      "0x00112233445566778899aabbccddeeff00112233",
		Name:       "First Doc",
		ClientIP:   "192.168.1.1",
		Success:    true,
	}

	logger.Log(event)

	output := buf.String()

	// RFC5424 format components
	if !strings.Contains(output, "docvault") {
		t.Error("Expected app name 'docvault' in output")
	}
	if !strings.Contains(output, "create") {
		t.Error("Expected message ID 'create' in output")
	}
	if !strings.Contains(output, "0x00112233445566778899aabbccddeeff00112233") {
		t.Error("Expected owner identity in output")
	}
	if !strings.Contains(output, "192.168.1.1") {
		t.Error("Expected client IP in output")
	}
	if !strings.Contains(output, "created document 42") {
		t.Error("Expected success message in output")
	}
	if !strings.HasPrefix(output, "<") {
		t.Error("Expected RFC5424 PRI prefix")
	}
}

func TestEventMessages(t *testing.T) {
	tests := []struct {
		name    string
		event   Event
		msgid   string
		contain string
	}{
		{
			name: "grant success",
			event: GrantEvent{
				DocumentID: 7,
				Owner:      "0xaa",
				Editor:     "0xbb",
				Success:    true,
			},
			msgid:   "grant",
			contain: "allowed 0xbb to edit document 7",
		},
		{
			name: "grant denied",
			event: GrantEvent{
				DocumentID:   7,
				Owner:        "0xbb",
				Editor:       "0xcc",
				Success:      false,
				ErrorMessage: "caller is not the owner",
			},
			msgid:   "grant",
			contain: "caller is not the owner",
		},
		{
			name: "update success",
			event: UpdateEvent{
				DocumentID:    3,
				Editor:        "0xdd",
				EncryptedBody: "Y2lwaGVydGV4dA==",
				Success:       true,
			},
			msgid:   "update",
			contain: "updated document 3",
		},
		{
			name: "reencrypt failure",
			event: ReencryptEvent{
				Handle:       "cafebabe",
				Requester:    "0xee",
				Success:      false,
				ErrorMessage: "identity is not authorized for handle",
			},
			msgid:   "reencrypt",
			contain: "tried to re-encrypt access key cafebabe",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.event.MessageID(); got != tt.msgid {
				t.Errorf("MessageID() = %q, want %q", got, tt.msgid)
			}
			if msg := tt.event.Message(); !strings.Contains(msg, tt.contain) {
				t.Errorf("Message() = %q, want substring %q", msg, tt.contain)
			}
		})
	}
}

func TestUpdateEventCarriesBody(t *testing.T) {
	event := UpdateEvent{
		DocumentID:    3,
		Editor:        "0xdd",
		EncryptedBody: "Y2lwaGVydGV4dA==",
		Success:       true,
	}

	sd := event.StructuredData()
	if sd[SDIDSubject]["body"] != "Y2lwaGVydGV4dA==" {
		t.Errorf("structured data body = %q, want the ciphertext blob", sd[SDIDSubject]["body"])
	}

	var buf bytes.Buffer
	logger := NewLogger()
	logger.SetWriter(&buf)
	logger.Log(event)
	if !strings.Contains(buf.String(), "Y2lwaGVydGV4dA==") {
		t.Error("expected the encrypted body in the logged event")
	}
}

func TestFailureEventsAreWarnings(t *testing.T) {
	events := []Event{
		CreateEvent{Success: false},
		UpdateEvent{Success: false},
		GrantEvent{Success: false},
		ReencryptEvent{Success: false},
	}
	for _, event := range events {
		if event.Severity() != SeverityWarning {
			t.Errorf("%s failure should log at warning severity", event.MessageID())
		}
	}
}

func TestStructuredDataEscaping(t *testing.T) {
	escaped := escapeSDValue(`va"lue\with]specials`)
	if !strings.Contains(escaped, `\"`) || !strings.Contains(escaped, `\\`) || !strings.Contains(escaped, `\]`) {
		t.Errorf("special characters not escaped: %s", escaped)
	}
}
