package net

import (
	"net"

	"go.uber.org/zap"
)

// GetOutgoingIP finds the preferred local IP address for the host to share.
func GetOutgoingIP(log *zap.Logger) string {
	conn, err := net.Dial("udp", "8.8.8.8:80")
	if err != nil {
		// No route out; fall back to the first non-loopback interface.
		return firstIPv4(log).String()
	}
	defer conn.Close()

	localAddr := conn.LocalAddr().(*net.UDPAddr)
	return localAddr.IP.String()
}

func firstIPv4(log *zap.Logger) net.IP {
	ifaces, _ := net.Interfaces()
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
	if log != nil {
		log.Warn("no suitable local IP found, share link uses loopback")
	}
	return net.IPv4(127, 0, 0, 1)
}
