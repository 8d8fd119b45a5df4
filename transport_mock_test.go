package cansim

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"
)

// mockTransport emulates the serial port for tests: Read returns
// (0, nil) after a short timeout when the device is quiet, like a
// serial port with a read timeout.
type mockTransport struct {
	mu        sync.Mutex
	rx        chan []byte // bytes "the device" sends us
	written   bytes.Buffer
	opened    bool
	closed    bool
	discards  int
	readErr   error // injected fault, returned by the next Read
	onWrite   func([]byte)
	writeErr  error
	readSlice time.Duration
}

func newMockTransport() *mockTransport {
	return &mockTransport{
		rx:        make(chan []byte, 64),
		readSlice: 2 * time.Millisecond,
	}
}

func (m *mockTransport) Name() string { return "mock" }

func (m *mockTransport) Open(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.opened = true
	return nil
}

func (m *mockTransport) Read(p []byte) (int, error) {
	m.mu.Lock()
	if err := m.readErr; err != nil {
		m.mu.Unlock()
		return 0, err
	}
	if m.closed {
		m.mu.Unlock()
		return 0, io.EOF
	}
	m.mu.Unlock()
	select {
	case b := <-m.rx:
		n := copy(p, b)
		if n < len(b) {
			// push back what didn't fit
			rest := make([]byte, len(b)-n)
			copy(rest, b[n:])
			select {
			case m.rx <- rest:
			default:
			}
		}
		return n, nil
	case <-time.After(m.readSlice):
		return 0, nil
	}
}

func (m *mockTransport) Write(p []byte) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.writeErr != nil {
		return 0, m.writeErr
	}
	m.written.Write(p)
	if m.onWrite != nil {
		m.onWrite(p)
	}
	return len(p), nil
}

func (m *mockTransport) Flush() error { return nil }

func (m *mockTransport) Discard() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.discards++
	for {
		select {
		case <-m.rx:
		default:
			return nil
		}
	}
}

func (m *mockTransport) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

// push makes the fake device emit bytes.
func (m *mockTransport) push(s string) {
	m.rx <- []byte(s)
}

func (m *mockTransport) failReads(err error) {
	m.mu.Lock()
	m.readErr = err
	m.mu.Unlock()
}

// respond installs a tiny firmware emulator: every line written by
// the client is parsed as a command, echoed back verbatim (the real
// console does that too) and answered by handler.
func (m *mockTransport) respond(handler func(command string, payload map[string]interface{}) string) {
	var lineBuf bytes.Buffer
	m.onWrite = func(b []byte) {
		lineBuf.Write(b)
		for {
			data := lineBuf.Bytes()
			idx := bytes.IndexByte(data, '\n')
			if idx == -1 {
				return
			}
			line := strings.TrimRight(string(data[:idx]), "\r")
			lineBuf.Next(idx + 1)

			var payload map[string]interface{}
			if err := json.Unmarshal([]byte(line), &payload); err != nil {
				continue
			}
			command, _ := payload["command"].(string)
			// self-echo first, exactly as the serial console reflects it
			m.push(line + "\r\n")
			if reply := handler(command, payload); reply != "" {
				m.push(reply)
			}
		}
	}
}

func okResponse(command string, extra string) string {
	if extra != "" {
		return fmt.Sprintf(`{"type":"response","command":%q,"status":"ok",%s}`, command, extra)
	}
	return fmt.Sprintf(`{"type":"response","command":%q,"status":"ok"}`, command)
}

// testConfig keeps the timing tight so the suite stays fast.
func testConfig() *Config {
	return &Config{
		SettleDelay:    time.Millisecond,
		ReadTimeout:    2 * time.Millisecond,
		PollInterval:   2 * time.Millisecond,
		CommandTimeout: time.Second,
		OnMessage:      func(string) {},
	}
}
