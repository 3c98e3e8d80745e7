// ABOUTME: Tests for control protocol messages
// ABOUTME: Checks the wire names and envelope decoding
package protocol

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestMessageWireFormat(t *testing.T) {
	data, err := json.Marshal(Message{
		Type:    TypeState,
		Payload: StateUpdate{State: "playing", SessionID: "abc", Events: 11},
	})
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}

	got := string(data)
	for _, want := range []string{`"type":"soundscape/state"`, `"state":"playing"`, `"session_id":"abc"`, `"events":11`} {
		if !strings.Contains(got, want) {
			t.Errorf("expected %s in %s", want, got)
		}
	}
	if strings.Contains(got, "error") {
		t.Errorf("expected empty error to be omitted, got %s", got)
	}
}

func TestEnvelopeDecode(t *testing.T) {
	var env Envelope
	raw := `{"type":"client/hello","payload":{"client_id":"c1","name":"remote","version":1}}`
	if err := json.Unmarshal([]byte(raw), &env); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}
	if env.Type != TypeClientHello {
		t.Errorf("expected %s, got %s", TypeClientHello, env.Type)
	}

	var hello ClientHello
	if err := env.Decode(&hello); err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if hello.ClientID != "c1" || hello.Version != 1 {
		t.Errorf("unexpected hello %+v", hello)
	}
}

func TestEnvelopeDecodeEmptyPayload(t *testing.T) {
	tests := []string{
		`{"type":"soundscape/trigger"}`,
		`{"type":"soundscape/trigger","payload":null}`,
	}
	for _, raw := range tests {
		var env Envelope
		if err := json.Unmarshal([]byte(raw), &env); err != nil {
			t.Fatalf("Unmarshal failed: %v", err)
		}
		var trig Trigger
		if err := env.Decode(&trig); err != nil {
			t.Errorf("expected empty payload to decode, got %v", err)
		}
	}
}

func TestEnvelopeDecodeMismatch(t *testing.T) {
	env := Envelope{Type: TypeState, Payload: json.RawMessage(`"not an object"`)}
	var update StateUpdate
	if err := env.Decode(&update); err == nil {
		t.Error("expected decode error")
	}
}
