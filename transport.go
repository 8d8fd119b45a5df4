package cansim

import (
	"context"
	"fmt"
	"sort"
	"strings"
)

// Transport is the byte pipe a session runs over. Read must return
// (0, nil) when no bytes arrive within the transport's read timeout so
// the session's read loop can observe stop requests between reads.
type Transport interface {
	Name() string
	Open(context.Context) error
	Read(p []byte) (int, error)
	Write(p []byte) (int, error)
	Flush() error
	// Discard drops any buffered inbound bytes, used to throw away
	// boot chatter accumulated during the settle delay.
	Discard() error
	Close() error
}

type TransportInfo struct {
	Name               string
	Description        string
	RequiresSerialPort bool
	New                func(*Config) (Transport, error)
}

func (t *TransportInfo) String() string {
	return fmt.Sprintf("%s | %s, requires serial port: %v", t.Name, t.Description, t.RequiresSerialPort)
}

var transportMap = make(map[string]*TransportInfo)

func NewTransport(transportName string, cfg *Config) (Transport, error) {
	if transport, found := transportMap[transportName]; found {
		return transport.New(cfg)
	}
	return nil, fmt.Errorf("unknown transport %q", transportName)
}

func RegisterTransport(transport *TransportInfo) error {
	if _, found := transportMap[transport.Name]; !found {
		transportMap[transport.Name] = transport
		return nil
	}
	return fmt.Errorf("transport %s already registered", transport.Name)
}

func ListTransportNames() []string {
	var out []string
	for name := range transportMap {
		out = append(out, name)
	}
	sort.Slice(out, func(i, j int) bool { return strings.ToLower(out[i]) < strings.ToLower(out[j]) })
	return out
}

func ListTransports() []TransportInfo {
	var out []TransportInfo
	for _, transport := range transportMap {
		out = append(out, *transport)
	}
	return out
}
