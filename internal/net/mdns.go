package net

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/hashicorp/mdns"
	"go.uber.org/zap"
)

const serviceType = "_nodeboard._tcp"

// Host is a board found on the LAN.
type Host struct {
	Name string
	Addr string
}

func (h Host) Link() string { return Scheme + h.Addr }

// Advertise announces a hosted board on port. Shut the server down when
// hosting stops.
func Advertise(port int, log *zap.Logger) (*mdns.Server, error) {
	host, err := os.Hostname()
	if err != nil {
		return nil, fmt.Errorf("could not get hostname: %w", err)
	}

	service, err := mdns.NewMDNSService(host, serviceType, "", "", port, nil, []string{"NodeBoard"})
	if err != nil {
		return nil, fmt.Errorf("failed to create mDNS service: %w", err)
	}
	server, err := mdns.NewServer(&mdns.Config{Zone: service})
	if err != nil {
		return nil, fmt.Errorf("failed to start mDNS server: %w", err)
	}
	if log != nil {
		log.Info("advertising board", zap.String("service", serviceType), zap.String("host", host), zap.Int("port", port))
	}
	return server, nil
}

// Browse looks for hosted boards for at most timeout and calls found for
// each usable answer.
func Browse(ctx context.Context, timeout time.Duration, found func(Host)) error {
	entries := make(chan *mdns.ServiceEntry, 8)
	done := make(chan struct{})
	go func() {
		defer close(done)
		for e := range entries {
			if h, ok := hostFromEntry(e); ok {
				found(h)
			}
		}
	}()

	params := mdns.DefaultParams(serviceType)
	params.Entries = entries
	params.Timeout = timeout
	params.DisableIPv6 = true
	if deadline, ok := ctx.Deadline(); ok && time.Until(deadline) < timeout {
		params.Timeout = time.Until(deadline)
	}

	err := mdns.Query(params)
	close(entries)
	<-done
	if err != nil {
		return fmt.Errorf("browse %s: %w", serviceType, err)
	}
	return nil
}

func hostFromEntry(e *mdns.ServiceEntry) (Host, bool) {
	if e == nil || e.AddrV4 == nil || e.Port == 0 {
		return Host{}, false
	}
	return Host{Name: e.Name, Addr: fmt.Sprintf("%s:%d", e.AddrV4.String(), e.Port)}, true
}
