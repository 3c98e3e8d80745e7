// ABOUTME: Websocket client for the soundscape control server
// ABOUTME: Handles connection, handshake, requests and state updates
package remote

import (
	"context"
	"fmt"
	"log"
	"net/url"
	"sync"
	"time"

	"github.com/frostbloom/frostbloom-go/internal/protocol"
	"github.com/gorilla/websocket"
)

const handshakeTimeout = 5 * time.Second

// ClientConfig holds client configuration
type ClientConfig struct {
	ServerAddr string // host:port
	Path       string
	ClientID   string
	Name       string
	DeviceInfo *protocol.DeviceInfo
}

// Client is a remote control connection
type Client struct {
	config  ClientConfig
	conn    *websocket.Conn
	mu      sync.RWMutex
	writeMu sync.Mutex

	server protocol.ServerHello
	states chan protocol.StateUpdate

	connected bool
	ctx       context.Context
	cancel    context.CancelFunc
}

// NewClient creates a client; call Connect to dial
func NewClient(config ClientConfig) *Client {
	if config.Path == "" {
		config.Path = Path
	}
	ctx, cancel := context.WithCancel(context.Background())

	return &Client{
		config: config,
		states: make(chan protocol.StateUpdate, 16),
		ctx:    ctx,
		cancel: cancel,
	}
}

// Connect dials the server and performs the handshake
func (c *Client) Connect() error {
	u := url.URL{Scheme: "ws", Host: c.config.ServerAddr, Path: c.config.Path}
	log.Printf("Connecting to %s", u.String())

	conn, _, err := websocket.DefaultDialer.DialContext(c.ctx, u.String(), nil)
	if err != nil {
		return fmt.Errorf("dial failed: %w", err)
	}

	c.mu.Lock()
	c.conn = conn
	c.connected = true
	c.mu.Unlock()

	if err := c.handshake(); err != nil {
		c.Close()
		return fmt.Errorf("handshake failed: %w", err)
	}

	go c.readMessages()

	return nil
}

func (c *Client) handshake() error {
	hello := protocol.ClientHello{
		ClientID:   c.config.ClientID,
		Name:       c.config.Name,
		Version:    protocol.Version,
		DeviceInfo: c.config.DeviceInfo,
	}
	if err := c.send(protocol.TypeClientHello, hello); err != nil {
		return fmt.Errorf("failed to send %s: %w", protocol.TypeClientHello, err)
	}

	c.conn.SetReadDeadline(time.Now().Add(handshakeTimeout))
	defer c.conn.SetReadDeadline(time.Time{})

	var msg protocol.Envelope
	if err := c.conn.ReadJSON(&msg); err != nil {
		return fmt.Errorf("failed to read %s: %w", protocol.TypeServerHello, err)
	}

	switch msg.Type {
	case protocol.TypeServerHello:
	case protocol.TypeError:
		var serverErr protocol.ServerError
		if err := msg.Decode(&serverErr); err != nil {
			return err
		}
		return fmt.Errorf("server rejected hello: %s: %s", serverErr.Code, serverErr.Message)
	default:
		return fmt.Errorf("expected %s, got %s", protocol.TypeServerHello, msg.Type)
	}

	var server protocol.ServerHello
	if err := msg.Decode(&server); err != nil {
		return err
	}
	if server.Version != protocol.Version {
		return fmt.Errorf("server speaks protocol version %d, want %d", server.Version, protocol.Version)
	}

	c.mu.Lock()
	c.server = server
	c.mu.Unlock()

	log.Printf("Handshake complete with %s", server.Name)
	return nil
}

// Server returns the server's hello
func (c *Client) Server() protocol.ServerHello {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.server
}

// States delivers state updates from the server. It is closed when an
// established connection ends.
func (c *Client) States() <-chan protocol.StateUpdate {
	return c.states
}

// Trigger asks the server to start the soundscape
func (c *Client) Trigger() error {
	return c.send(protocol.TypeTrigger, protocol.Trigger{})
}

// Release asks the server to stop the soundscape
func (c *Client) Release() error {
	return c.send(protocol.TypeRelease, protocol.Release{})
}

func (c *Client) send(msgType string, payload interface{}) error {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if !c.connected {
		return fmt.Errorf("not connected")
	}

	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	return c.conn.WriteJSON(protocol.Message{Type: msgType, Payload: payload})
}

// readMessages routes incoming messages until the connection ends
func (c *Client) readMessages() {
	defer close(c.states)
	defer c.Close()

	for {
		var msg protocol.Envelope
		if err := c.conn.ReadJSON(&msg); err != nil {
			if c.ctx.Err() == nil {
				log.Printf("Read error: %v", err)
			}
			return
		}

		switch msg.Type {
		case protocol.TypeState:
			var update protocol.StateUpdate
			if err := msg.Decode(&update); err != nil {
				log.Printf("%v", err)
				continue
			}
			select {
			case c.states <- update:
			default:
				log.Printf("Dropping state update %s: reader is behind", update.State)
			}

		case protocol.TypeError:
			var serverErr protocol.ServerError
			if err := msg.Decode(&serverErr); err == nil {
				log.Printf("Server error: %s: %s", serverErr.Code, serverErr.Message)
			}

		default:
			log.Printf("Unknown message type: %s", msg.Type)
		}
	}
}

// Close closes the connection
func (c *Client) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.connected {
		c.connected = false
		c.cancel()
		c.conn.Close()
		log.Printf("Connection closed")
	}
}

// IsConnected returns connection status
func (c *Client) IsConnected() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.connected
}
