// ABOUTME: Websocket control server for a running soundscape session
// ABOUTME: Maps trigger and release requests to the session and broadcasts state changes
package remote

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/frostbloom/frostbloom-go/internal/discovery"
	"github.com/frostbloom/frostbloom-go/internal/protocol"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

// Path is the websocket endpoint served by the control server
const Path = "/frostbloom"

const (
	triggerTimeout = 5 * time.Second
	writeDeadline  = 10 * time.Second
	pingInterval   = 30 * time.Second
)

// Controller is the soundscape the server drives
type Controller interface {
	Trigger(ctx context.Context) error
	Release()
	Status() protocol.StateUpdate
}

// Config holds server configuration
type Config struct {
	Addr       string // listen address, e.g. ":8937"
	Name       string
	Recipes    []string
	EnableMDNS bool

	// OnClientsChange is called with the client count after every connect
	// and disconnect.
	OnClientsChange func(count int)
}

// Server accepts control clients over websocket
type Server struct {
	config     Config
	serverID   string
	controller Controller

	upgrader websocket.Upgrader
	router   *gin.Engine

	httpServer *http.Server
	listener   net.Listener
	mdns       *discovery.Manager

	clients   map[string]*client
	clientsMu sync.RWMutex

	ctx      context.Context
	cancel   context.CancelFunc
	stopOnce sync.Once
	wg       sync.WaitGroup
}

type client struct {
	id       string
	name     string
	conn     *websocket.Conn
	sendChan chan protocol.Message
}

// NewServer creates a control server for controller
func NewServer(config Config, controller Controller) *Server {
	ctx, cancel := context.WithCancel(context.Background())

	s := &Server{
		config:     config,
		serverID:   uuid.New().String(),
		controller: controller,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				// Control is meant for trusted local networks
				if origin := r.Header.Get("Origin"); origin != "" {
					log.Printf("Accepting control connection from origin: %s", origin)
				}
				return true
			},
		},
		clients: make(map[string]*client),
		ctx:     ctx,
		cancel:  cancel,
	}
	s.router = s.newRouter()
	return s
}

// Handler returns the HTTP handler serving the websocket and JSON endpoints
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start listens on the configured address and serves in the background
func (s *Server) Start() error {
	listener, err := net.Listen("tcp", s.config.Addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.config.Addr, err)
	}
	s.listener = listener
	s.httpServer = &http.Server{Handler: s.router}

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		if err := s.httpServer.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Printf("Control server error: %v", err)
		}
	}()

	log.Printf("Control server listening on %s%s", listener.Addr(), Path)

	if s.config.EnableMDNS {
		port := listener.Addr().(*net.TCPAddr).Port
		s.mdns = discovery.NewManager(discovery.Config{
			ServiceName: s.config.Name,
			Port:        port,
			Path:        Path,
		})
		if err := s.mdns.Advertise(); err != nil {
			// Direct connections still work without advertisement
			log.Printf("mDNS advertisement failed: %v", err)
		}
	}

	return nil
}

// Addr returns the listening address once started
func (s *Server) Addr() string {
	if s.listener == nil {
		return s.config.Addr
	}
	return s.listener.Addr().String()
}

// Clients returns the number of connected clients
func (s *Server) Clients() int {
	s.clientsMu.RLock()
	defer s.clientsMu.RUnlock()
	return len(s.clients)
}

// Stop shuts the server down and disconnects every client
func (s *Server) Stop() {
	s.stopOnce.Do(func() {
		s.cancel()

		if s.mdns != nil {
			s.mdns.Stop()
		}
		if s.httpServer != nil {
			ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			if err := s.httpServer.Shutdown(ctx); err != nil {
				log.Printf("Control server shutdown: %v", err)
			}
		}

		// Hijacked websocket connections are not closed by Shutdown
		s.clientsMu.RLock()
		for _, c := range s.clients {
			c.conn.Close()
		}
		s.clientsMu.RUnlock()

		s.wg.Wait()
		log.Printf("Control server stopped")
	})
}

// NotifyState broadcasts the controller's current status to every client
func (s *Server) NotifyState() {
	s.Broadcast(s.controller.Status())
}

// Broadcast sends a state update to every client
func (s *Server) Broadcast(update protocol.StateUpdate) {
	s.clientsMu.RLock()
	defer s.clientsMu.RUnlock()

	for _, c := range s.clients {
		if err := s.sendMessage(c, protocol.TypeState, update); err != nil {
			log.Printf("Dropping state update for %s: %v", c.name, err)
		}
	}
}

// handleWebSocket handles websocket upgrades
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("WebSocket upgrade error: %v", err)
		return
	}

	log.Printf("New control connection from %s", r.RemoteAddr)

	s.wg.Add(1)
	defer s.wg.Done()
	s.handleConnection(conn)
}

// handleConnection runs the handshake and the read loop for one client
func (s *Server) handleConnection(conn *websocket.Conn) {
	defer conn.Close()

	if s.ctx.Err() != nil {
		log.Printf("Rejecting connection during shutdown")
		return
	}

	conn.SetReadDeadline(time.Now().Add(writeDeadline))
	hello, err := readHello(conn)
	if err != nil {
		log.Printf("Handshake failed: %v", err)
		writeError(conn, "bad_hello", err.Error())
		return
	}
	conn.SetReadDeadline(time.Time{})

	log.Printf("Client hello: %s (ID: %s)", hello.Name, hello.ClientID)

	c := &client{
		id:       hello.ClientID,
		name:     hello.Name,
		conn:     conn,
		sendChan: make(chan protocol.Message, 32),
	}

	serverHello := protocol.ServerHello{
		ServerID: s.serverID,
		Name:     s.config.Name,
		Version:  protocol.Version,
		Recipes:  s.config.Recipes,
	}
	// Queued before registration so broadcasts cannot overtake the hello
	s.sendMessage(c, protocol.TypeServerHello, serverHello)
	s.sendMessage(c, protocol.TypeState, s.controller.Status())

	s.clientsMu.Lock()
	if existing, ok := s.clients[c.id]; ok {
		s.clientsMu.Unlock()
		log.Printf("Client ID %s already connected (name: %s), rejecting duplicate", c.id, existing.name)
		writeError(conn, "duplicate_client_id", "Client ID already connected")
		return
	}
	s.clients[c.id] = c
	count := len(s.clients)
	s.clientsMu.Unlock()
	s.clientsChanged(count)

	writerDone := make(chan struct{})
	defer func() {
		s.clientsMu.Lock()
		delete(s.clients, c.id)
		count := len(s.clients)
		close(c.sendChan)
		s.clientsMu.Unlock()
		<-writerDone
		log.Printf("Client disconnected: %s", c.name)
		s.clientsChanged(count)
	}()

	go func() {
		defer close(writerDone)
		clientWriter(c)
	}()

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseAbnormalClosure) {
				log.Printf("WebSocket error: %v", err)
			}
			return
		}
		s.handleClientMessage(c, data)
	}
}

// handleClientMessage processes requests from a client
func (s *Server) handleClientMessage(c *client, data []byte) {
	var msg protocol.Envelope
	if err := json.Unmarshal(data, &msg); err != nil {
		log.Printf("Error unmarshaling message: %v", err)
		return
	}

	switch msg.Type {
	case protocol.TypeTrigger:
		log.Printf("Trigger requested by %s", c.name)
		ctx, cancel := context.WithTimeout(s.ctx, triggerTimeout)
		err := s.controller.Trigger(ctx)
		cancel()
		if err != nil {
			log.Printf("Trigger from %s failed: %v", c.name, err)
			update := s.controller.Status()
			update.Error = err.Error()
			if err := s.sendMessage(c, protocol.TypeState, update); err != nil {
				log.Printf("Dropping error report for %s: %v", c.name, err)
			}
		}

	case protocol.TypeRelease:
		log.Printf("Release requested by %s", c.name)
		s.controller.Release()

	default:
		log.Printf("Unknown message type from %s: %s", c.name, msg.Type)
	}
}

// sendMessage queues a message for the client's writer. The channel is
// closed by the connection goroutine under clientsMu, so other goroutines
// must hold clientsMu while sending.
func (s *Server) sendMessage(c *client, msgType string, payload interface{}) error {
	select {
	case c.sendChan <- protocol.Message{Type: msgType, Payload: payload}:
		return nil
	default:
		return fmt.Errorf("client send buffer full")
	}
}

func (s *Server) clientsChanged(count int) {
	if s.config.OnClientsChange != nil {
		s.config.OnClientsChange(count)
	}
}

// clientWriter sends queued messages and keepalive pings
func clientWriter(c *client) {
	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()

	for {
		select {
		case msg, ok := <-c.sendChan:
			if !ok {
				return
			}
			c.conn.SetWriteDeadline(time.Now().Add(writeDeadline))
			if err := c.conn.WriteJSON(msg); err != nil {
				log.Printf("Error writing to %s: %v", c.name, err)
				c.conn.Close()
				drain(c.sendChan)
				return
			}

		case <-ticker.C:
			if err := c.conn.WriteControl(websocket.PingMessage, []byte{}, time.Now().Add(writeDeadline)); err != nil {
				c.conn.Close()
				drain(c.sendChan)
				return
			}
		}
	}
}

func drain(ch <-chan protocol.Message) {
	for range ch {
	}
}

func readHello(conn *websocket.Conn) (protocol.ClientHello, error) {
	var hello protocol.ClientHello

	_, data, err := conn.ReadMessage()
	if err != nil {
		return hello, fmt.Errorf("failed to read hello: %w", err)
	}

	var msg protocol.Envelope
	if err := json.Unmarshal(data, &msg); err != nil {
		return hello, fmt.Errorf("failed to parse hello: %w", err)
	}
	if msg.Type != protocol.TypeClientHello {
		return hello, fmt.Errorf("expected %s, got %s", protocol.TypeClientHello, msg.Type)
	}
	if err := msg.Decode(&hello); err != nil {
		return hello, err
	}
	if hello.ClientID == "" {
		return hello, fmt.Errorf("client hello missing client_id")
	}
	if hello.Name == "" {
		return hello, fmt.Errorf("client hello missing name")
	}
	return hello, nil
}

func writeError(conn *websocket.Conn, code, message string) {
	msg := protocol.Message{
		Type:    protocol.TypeError,
		Payload: protocol.ServerError{Code: code, Message: message},
	}
	conn.SetWriteDeadline(time.Now().Add(writeDeadline))
	if err := conn.WriteJSON(msg); err != nil {
		log.Printf("Error sending %s: %v", code, err)
	}
}
