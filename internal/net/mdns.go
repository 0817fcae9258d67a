package net

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/hashicorp/mdns"
)

const serviceType = "_shapeboard._tcp"

var ErrNoHost = errors.New("no host found")

// Advertise publishes a hosted board on the local network.
func Advertise(port int) (*mdns.Server, error) {
	host, err := os.Hostname()
	if err != nil {
		return nil, fmt.Errorf("could not get hostname: %w", err)
	}

	service, err := mdns.NewMDNSService(host, serviceType, "", "", port, nil, []string{"ShapeBoard"})
	if err != nil {
		return nil, fmt.Errorf("failed to create mDNS service: %w", err)
	}

	server, err := mdns.NewServer(&mdns.Config{Zone: service})
	if err != nil {
		return nil, fmt.Errorf("failed to start mDNS server: %w", err)
	}
	return server, nil
}

// Browse returns the host:port of the first board advertised on the local
// network within timeout.
func Browse(ctx context.Context, timeout time.Duration) (string, error) {
	entries := make(chan *mdns.ServiceEntry, 8)
	found := make(chan string, 1)
	drained := make(chan struct{})
	go func() {
		defer close(drained)
		for e := range entries {
			if e.AddrV4 == nil || e.Port == 0 {
				continue
			}
			select {
			case found <- fmt.Sprintf("%s:%d", e.AddrV4.String(), e.Port):
			default:
			}
		}
	}()

	errc := make(chan error, 1)
	go func() {
		params := mdns.DefaultParams(serviceType)
		params.Entries = entries
		params.Timeout = timeout
		params.DisableIPv6 = true
		err := mdns.Query(params)
		close(entries)
		<-drained
		errc <- err
	}()

	select {
	case addr := <-found:
		return addr, nil
	case err := <-errc:
		if err != nil {
			return "", fmt.Errorf("mDNS query failed: %w", err)
		}
		select {
		case addr := <-found:
			return addr, nil
		default:
			return "", ErrNoHost
		}
	case <-ctx.Done():
		return "", ctx.Err()
	}
}
