// ABOUTME: Command-line remote for a Frostbloom player
// ABOUTME: Finds a player over mDNS or by address and sends trigger or release
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/frostbloom/frostbloom-go/internal/discovery"
	"github.com/frostbloom/frostbloom-go/internal/protocol"
	"github.com/frostbloom/frostbloom-go/internal/remote"
	"github.com/frostbloom/frostbloom-go/internal/version"
	"github.com/google/uuid"
)

var (
	addr    = flag.String("addr", "", "Player control address host:port (skip mDNS)")
	wait    = flag.Duration("wait", 3*time.Second, "How long to wait for a state reply")
	timeout = flag.Duration("discover-timeout", 10*time.Second, "How long to browse for players")
	watch   = flag.Bool("watch", false, "Keep printing state updates until interrupted")
)

func usage() {
	fmt.Fprintf(os.Stderr, "Usage: %s [flags] trigger|release|status\n", os.Args[0])
	flag.PrintDefaults()
}

func main() {
	flag.Usage = usage
	flag.Parse()

	if flag.NArg() != 1 {
		usage()
		os.Exit(2)
	}
	command := flag.Arg(0)
	if command != "trigger" && command != "release" && command != "status" {
		usage()
		os.Exit(2)
	}

	serverAddr, path := *addr, remote.Path
	if serverAddr == "" {
		server, err := discover(*timeout)
		if err != nil {
			log.Fatalf("%v", err)
		}
		serverAddr, path = server.Addr(), server.Path
		log.Printf("Discovered %s at %s", server.Name, serverAddr)
	}

	hostname, err := os.Hostname()
	if err != nil {
		hostname = "unknown"
	}

	client := remote.NewClient(remote.ClientConfig{
		ServerAddr: serverAddr,
		Path:       path,
		ClientID:   uuid.New().String(),
		Name:       fmt.Sprintf("%s-frostbloom-remote", hostname),
		DeviceInfo: &protocol.DeviceInfo{
			ProductName:     version.Product + " Remote",
			Manufacturer:    version.Manufacturer,
			SoftwareVersion: version.Version,
		},
	})
	if err := client.Connect(); err != nil {
		log.Fatalf("Connection failed: %v", err)
	}
	defer client.Close()

	// The server sends the current state right after the handshake
	printState(<-client.States())

	switch command {
	case "trigger":
		err = client.Trigger()
	case "release":
		err = client.Release()
	}
	if err != nil {
		log.Fatalf("%s failed: %v", command, err)
	}

	if command == "status" && !*watch {
		return
	}

	deadline := time.After(*wait)
	for {
		select {
		case update, ok := <-client.States():
			if !ok {
				return
			}
			printState(update)
			if update.Error != "" {
				os.Exit(1)
			}
		case <-deadline:
			if !*watch {
				return
			}
		}
	}
}

func discover(timeout time.Duration) (*discovery.ServerInfo, error) {
	log.Printf("Browsing for players...")
	disc := discovery.NewManager(discovery.Config{})
	defer disc.Stop()

	if err := disc.Browse(); err != nil {
		return nil, err
	}

	select {
	case server := <-disc.Servers():
		return server, nil
	case <-time.After(timeout):
		return nil, fmt.Errorf("no player found after %v", timeout)
	}
}

func printState(update protocol.StateUpdate) {
	line := update.State
	if update.SessionID != "" {
		line += fmt.Sprintf(" session=%s events=%d anchor=%.3fs", update.SessionID, update.Events, update.Anchor)
	}
	if update.Recipe != "" {
		line += " recipe=" + update.Recipe
	}
	if update.Error != "" {
		line += " error=" + update.Error
	}
	fmt.Println(line)
}
