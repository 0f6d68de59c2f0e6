package discovery

import (
	"fmt"
	"log"
	"net"
	"os"
	"strings"
	"time"

	"github.com/hashicorp/mdns"
)

// ServiceType is the DNS-SD type board servers advertise.
const ServiceType = "_whiteboard._tcp"

// txtInfo is published in the TXT record.
const txtInfo = "whiteboard"

// Board is one server found on the LAN.
type Board struct {
	Instance string
	Addr     string // host:port
}

// URL is the websocket endpoint of the board.
func (b Board) URL() string {
	return "ws://" + b.Addr + "/ws"
}

// Advertise announces a board on port until the returned server is shut
// down. An empty instance uses the hostname.
func Advertise(instance string, port int) (*mdns.Server, error) {
	if instance == "" {
		host, err := os.Hostname()
		if err != nil {
			return nil, fmt.Errorf("could not get hostname: %w", err)
		}
		instance = host
	}

	service, err := mdns.NewMDNSService(
		instance,
		ServiceType,
		"", // .local
		"", // OS hostname
		port,
		nil, // auto-detect IPs
		[]string{txtInfo},
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create mDNS service: %w", err)
	}

	server, err := mdns.NewServer(&mdns.Config{Zone: service})
	if err != nil {
		return nil, fmt.Errorf("failed to start mDNS server: %w", err)
	}
	log.Printf("✓ Advertising board %q as %s on port %d", instance, ServiceType, port)
	return server, nil
}

// Browse queries the LAN for boards for up to timeout.
func Browse(timeout time.Duration) ([]Board, error) {
	entries := make(chan *mdns.ServiceEntry, 16)
	done := make(chan []Board)

	go func() {
		seen := make(map[string]bool)
		var boards []Board
		for e := range entries {
			b, ok := boardFromEntry(e)
			if !ok || seen[b.Addr] {
				continue
			}
			seen[b.Addr] = true
			boards = append(boards, b)
		}
		done <- boards
	}()

	params := mdns.DefaultParams(ServiceType)
	params.Entries = entries
	params.Timeout = timeout
	params.DisableIPv6 = true
	err := mdns.Query(params)
	close(entries)
	boards := <-done

	if err != nil {
		return boards, fmt.Errorf("mDNS query failed: %w", err)
	}
	return boards, nil
}

func boardFromEntry(e *mdns.ServiceEntry) (Board, bool) {
	if e == nil || e.AddrV4 == nil || e.Port == 0 {
		return Board{}, false
	}
	if !strings.Contains(e.Name, ServiceType) {
		return Board{}, false
	}
	instance := e.Name
	if i := strings.Index(instance, "."+ServiceType); i >= 0 {
		instance = instance[:i]
	}
	// mDNS escapes spaces and dots in instance names.
	instance = strings.ReplaceAll(instance, `\ `, " ")
	instance = strings.ReplaceAll(instance, `\.`, ".")

	return Board{
		Instance: instance,
		Addr:     net.JoinHostPort(e.AddrV4.String(), fmt.Sprint(e.Port)),
	}, true
}
