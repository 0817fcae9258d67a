package net

import (
	"errors"
	"fmt"
	"log"
	"net"
	"strings"
)

// LinkScheme prefixes share links handed out by a host.
const LinkScheme = "shapeboard://"

var ErrBadLink = errors.New("bad share link")

// OutgoingIP picks the address peers should dial: the source address of the
// default route, else the first IPv4 address on an interface that is up,
// else loopback.
func OutgoingIP() string {
	if conn, err := net.Dial("udp", "8.8.8.8:80"); err == nil {
		defer conn.Close()
		if addr, ok := conn.LocalAddr().(*net.UDPAddr); ok && !addr.IP.IsUnspecified() {
			return addr.IP.String()
		}
	}
	if ip := firstIPv4(); ip != nil {
		return ip.String()
	}
	log.Println("No suitable local IP found, share link will use loopback.")
	return "127.0.0.1"
}

func firstIPv4() net.IP {
	ifaces, err := net.Interfaces()
	if err != nil {
		return nil
	}
	for _, iface := range ifaces {
		if iface.Flags&net.FlagUp == 0 || iface.Flags&net.FlagLoopback != 0 {
			continue
		}
		addrs, _ := iface.Addrs()
		for _, a := range addrs {
			if ipnet, ok := a.(*net.IPNet); ok && ipnet.IP.To4() != nil {
				return ipnet.IP.To4()
			}
		}
	}
	return nil
}

func ShareLink(ip string, port int) string {
	return LinkScheme + net.JoinHostPort(ip, fmt.Sprint(port))
}

// HostLink is the share link for a board hosted on this machine.
func HostLink(port int) string {
	return ShareLink(OutgoingIP(), port)
}

// WebsocketURL turns a share link, a ws:// URL or a bare host:port into the
// URL a client dials.
func WebsocketURL(link string) (string, error) {
	s := strings.TrimSpace(link)
	switch {
	case strings.HasPrefix(s, "ws://"), strings.HasPrefix(s, "wss://"):
		return s, nil
	case strings.HasPrefix(s, LinkScheme):
		s = strings.TrimPrefix(s, LinkScheme)
	}
	s = strings.TrimSuffix(s, "/")
	host, port, err := net.SplitHostPort(s)
	if err != nil || host == "" || port == "" {
		return "", fmt.Errorf("%w: %q", ErrBadLink, link)
	}
	return "ws://" + net.JoinHostPort(host, port) + WebsocketPath, nil
}
