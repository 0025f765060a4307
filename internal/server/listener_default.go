//go:build !linux && !darwin

// Package server provides the network listener for the HTTP server.
package server

import "net"

// GetListener listens on addr.
func GetListener(addr string) (net.Listener, error) {
	return net.Listen("tcp", addr)
}
