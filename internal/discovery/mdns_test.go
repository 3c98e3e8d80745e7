// ABOUTME: Tests for mDNS discovery
// ABOUTME: Tests manager setup and service entry conversion
package discovery

import (
	"net"
	"testing"

	"github.com/hashicorp/mdns"
)

func TestNewManager(t *testing.T) {
	config := Config{
		ServiceName: "Frostbloom",
		Port:        8927,
	}

	mgr := NewManager(config)
	if mgr == nil {
		t.Fatal("expected manager to be created")
	}
	if mgr.config.Path != "/frostbloom" {
		t.Errorf("expected default path /frostbloom, got %s", mgr.config.Path)
	}
	mgr.Stop()
}

func TestEntryToServer(t *testing.T) {
	entry := &mdns.ServiceEntry{
		Name:       "Frostbloom._frostbloom._tcp.local.",
		AddrV4:     net.ParseIP("192.168.1.20"),
		Port:       8927,
		InfoFields: []string{"path=/scene"},
	}

	server := entryToServer(entry)
	if server.Host != "192.168.1.20" {
		t.Errorf("expected host 192.168.1.20, got %s", server.Host)
	}
	if server.Path != "/scene" {
		t.Errorf("expected path /scene, got %s", server.Path)
	}
	if server.Addr() != "192.168.1.20:8927" {
		t.Errorf("expected 192.168.1.20:8927, got %s", server.Addr())
	}
}
