//go:build linux || darwin

// Package server provides the network listener for the HTTP server.
package server

import (
	"errors"
	"net"
	"os"
	"strconv"
)

// first inherited descriptor under systemd socket activation
const listenFDsStart = 3

// GetListener takes over a systemd-activated socket when SOCKET_ACTIVATION=1
// and LISTEN_FDS/LISTEN_PID address this process. Otherwise it listens on
// addr.
func GetListener(addr string) (net.Listener, error) {
	if os.Getenv("SOCKET_ACTIVATION") != "1" {
		return net.Listen("tcp", addr)
	}
	if os.Getenv("LISTEN_FDS") != "1" {
		return nil, errors.New("socket activation requested but LISTEN_FDS is not 1")
	}
	if pid, err := strconv.Atoi(os.Getenv("LISTEN_PID")); err != nil || pid != os.Getpid() {
		return nil, errors.New("socket activation requested but LISTEN_PID does not match")
	}
	f := os.NewFile(uintptr(listenFDsStart), "listener")
	if f == nil {
		return nil, errors.New("socket activation: no inherited descriptor")
	}
	defer f.Close()
	return net.FileListener(f)
}
