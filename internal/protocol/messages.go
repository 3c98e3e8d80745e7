// ABOUTME: Remote control message type definitions
// ABOUTME: Defines structs for every message exchanged with the control server
package protocol

import (
	"encoding/json"
	"fmt"
)

// Version is the control protocol version
const Version = 1

// Message types
const (
	TypeClientHello = "client/hello"
	TypeServerHello = "server/hello"
	TypeTrigger     = "soundscape/trigger"
	TypeRelease     = "soundscape/release"
	TypeState       = "soundscape/state"
)

// Message is the top-level wrapper for all protocol messages
type Message struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload"`
}

// Envelope is a received message whose payload is decoded once its type is known
type Envelope struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// Decode unmarshals the payload into v
func (e Envelope) Decode(v interface{}) error {
	if len(e.Payload) == 0 || string(e.Payload) == "null" {
		return nil
	}
	if err := json.Unmarshal(e.Payload, v); err != nil {
		return fmt.Errorf("failed to decode %s payload: %w", e.Type, err)
	}
	return nil
}

// ClientHello is sent by clients to initiate the handshake
type ClientHello struct {
	ClientID   string      `json:"client_id"`
	Name       string      `json:"name"`
	Version    int         `json:"version"`
	DeviceInfo *DeviceInfo `json:"device_info,omitempty"`
}

// DeviceInfo contains device identification
type DeviceInfo struct {
	ProductName     string `json:"product_name"`
	Manufacturer    string `json:"manufacturer"`
	SoftwareVersion string `json:"software_version"`
}

// ServerHello is the server's response to client/hello
type ServerHello struct {
	ServerID string   `json:"server_id"`
	Name     string   `json:"name"`
	Version  int      `json:"version"`
	Recipes  []string `json:"recipes"`
}

// Trigger asks the server to start the soundscape
type Trigger struct{}

// Release asks the server to stop the soundscape
type Release struct{}

// StateUpdate reports the session state to every client
type StateUpdate struct {
	State     string  `json:"state"` // "idle", "armed" or "playing"
	SessionID string  `json:"session_id,omitempty"`
	Recipe    string  `json:"recipe,omitempty"`
	Anchor    float64 `json:"anchor,omitempty"`
	Events    int     `json:"events,omitempty"`
	Error     string  `json:"error,omitempty"`
}

// TypeError reports a rejected connection or request
const TypeError = "server/error"

// ServerError is sent before the server drops a client
type ServerError struct {
	Code    string `json:"error"`
	Message string `json:"message"`
}
