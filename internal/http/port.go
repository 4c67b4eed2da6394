package http

import (
	"net"
	"strconv"
)

// FindFreePort probes start and the following attempts-1 ports and returns
// the first one that can be bound. When none is free it returns start.
func FindFreePort(start, attempts int) int {
	for port := start; port < start+attempts; port++ {
		if port > 65535 {
			break
		}
		ln, err := net.Listen("tcp", net.JoinHostPort("", strconv.Itoa(port)))
		if err != nil {
			continue
		}
		_ = ln.Close()
		return port
	}
	return start
}
