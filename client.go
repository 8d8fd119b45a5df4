package cansim

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sync"
	"sync/atomic"
	"time"
)

type SessionState int32

const (
	Disconnected SessionState = iota
	Connecting
	Connected
	Disconnecting
)

func (s SessionState) String() string {
	switch s {
	case Disconnected:
		return "disconnected"
	case Connecting:
		return "connecting"
	case Connected:
		return "connected"
	case Disconnecting:
		return "disconnecting"
	default:
		return "unknown"
	}
}

// Client owns a simulator session: the transport, the background read
// loop feeding the demuxer, and the command/response machinery. One
// background goroutine per session; any number of foreground callers
// may issue commands.
type Client struct {
	cfg       *Config
	transport Transport

	demux  *Demuxer
	router *router

	state int32 // SessionState, atomic

	writeMu sync.Mutex

	closeOnce sync.Once
	closeChan chan struct{}
	doneChan  chan struct{}

	evtChan chan Event
}

// New wires a client around a transport. The transport is not opened
// until Connect.
func New(transport Transport, cfg *Config) *Client {
	if cfg == nil {
		cfg = &Config{}
	}
	cfg.applyDefaults()
	return &Client{
		cfg:       cfg,
		transport: transport,
		demux:     NewDemuxer(cfg.OnMessage),
		router:    newRouter(cfg),
		closeChan: make(chan struct{}),
		doneChan:  make(chan struct{}),
		evtChan:   make(chan Event, 100),
	}
}

func (c *Client) State() SessionState {
	return SessionState(atomic.LoadInt32(&c.state))
}

func (c *Client) setState(s SessionState) {
	atomic.StoreInt32(&c.state, int32(s))
}

func (c *Client) transitionState(from, to SessionState) bool {
	return atomic.CompareAndSwapInt32(&c.state, int32(from), int32(to))
}

// Done is closed once the background read loop has exited, whether
// through Close or a transport failure.
func (c *Client) Done() <-chan struct{} {
	return c.doneChan
}

// Events exposes session level events (connects, transport failures).
// The channel is buffered; events are dropped when nobody drains it.
func (c *Client) Events() <-chan Event {
	return c.evtChan
}

func (c *Client) sendEvent(eventType EventType, details string) {
	select {
	case c.evtChan <- Event{Type: eventType, Details: details}:
	default:
	}
}

// SetOnStatus replaces the status-update callback for the session.
func (c *Client) SetOnStatus(fn func(*Status)) {
	c.router.setOnStatus(fn)
}

// SetOnError replaces the error-notification callback for the session.
func (c *Client) SetOnError(fn func(string)) {
	c.router.setOnError(fn)
}

// Connect opens the transport, gives the firmware time to finish
// booting, throws away the boot chatter and starts the read loop.
func (c *Client) Connect(ctx context.Context) error {
	select {
	case <-c.closeChan:
		// a client is one session; build a new one to reconnect
		return ErrClosed
	default:
	}
	if !c.transitionState(Disconnected, Connecting) {
		return ErrAlreadyConnected
	}
	if err := c.transport.Open(ctx); err != nil {
		c.setState(Disconnected)
		return err
	}
	select {
	case <-time.After(c.cfg.SettleDelay):
	case <-ctx.Done():
		c.transport.Close()
		c.setState(Disconnected)
		return ctx.Err()
	}
	if err := c.transport.Discard(); err != nil {
		c.transport.Close()
		c.setState(Disconnected)
		return fmt.Errorf("failed to discard boot output: %w", err)
	}
	c.setState(Connected)
	go c.readLoop()
	c.sendEvent(EventTypeInfo, "connected via "+c.transport.Name())
	return nil
}

// readLoop is the session's only background goroutine and the sole
// caller of Demuxer.Feed. The transport's read timeout doubles as the
// idle yield, so a stop request is noticed within one timeout tick.
func (c *Client) readLoop() {
	defer close(c.doneChan)
	readBuffer := make([]byte, 512)
	for {
		select {
		case <-c.closeChan:
			return
		default:
		}
		n, err := c.transport.Read(readBuffer)
		if err != nil {
			select {
			case <-c.closeChan:
			default:
				// Fatal to the session. Outstanding SendCommand
				// callers are not notified and time out on their own.
				c.sendEvent(EventTypeError, fmt.Sprintf("transport read: %v", err))
				go c.Close()
			}
			return
		}
		if n == 0 {
			continue
		}
		for _, msg := range c.demux.Feed(readBuffer[:n]) {
			c.router.dispatch(msg)
		}
	}
}

// Close signals the read loop to stop, waits (bounded) for it to
// exit and closes the transport. Safe to call more than once.
func (c *Client) Close() error {
	var err error
	c.closeOnce.Do(func() {
		c.setState(Disconnecting)
		close(c.closeChan)
		select {
		case <-c.doneChan:
		case <-time.After(c.cfg.ReadTimeout + time.Second):
			c.sendEvent(EventTypeWarning, "read loop did not stop in time")
		}
		err = c.transport.Close()
		c.router.reset()
		c.setState(Disconnected)
		c.sendEvent(EventTypeInfo, "disconnected")
	})
	return err
}

// SendCommand serializes {"command", "timestamp", ...args}, writes it
// CRLF-terminated and polls the response store until the firmware's
// reply shows up or the timeout expires. A zero timeout means the
// configured CommandTimeout.
//
// Success means a response arrived; callers interpret its Status
// themselves. Responses are correlated by command name only, so two
// concurrent sends of the same command can consume each other's reply.
func (c *Client) SendCommand(ctx context.Context, command string, args map[string]interface{}, timeout time.Duration) (*Response, error) {
	if c.State() != Connected {
		return nil, ErrNotConnected
	}
	if timeout <= 0 {
		timeout = c.cfg.CommandTimeout
	}

	// A leftover reply from an earlier invocation must not satisfy
	// this send.
	c.router.evict(command)

	payload := make(map[string]interface{}, len(args)+2)
	for k, v := range args {
		payload[k] = v
	}
	payload["command"] = command
	payload["timestamp"] = time.Now().UnixMilli()

	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to encode command %q: %w", command, err)
	}
	data = append(data, '\r', '\n')

	if c.cfg.Debug {
		log.Println(">> " + string(data[:len(data)-2]))
	}

	c.writeMu.Lock()
	_, err = c.transport.Write(data)
	if err == nil {
		err = c.transport.Flush()
	}
	c.writeMu.Unlock()
	if err != nil {
		return nil, fmt.Errorf("failed to write command %q: %w", command, err)
	}

	deadline := time.NewTimer(timeout)
	defer deadline.Stop()
	tick := time.NewTicker(c.cfg.PollInterval)
	defer tick.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-deadline.C:
			return nil, &TimeoutError{Command: command, Timeout: timeout.Milliseconds()}
		case <-tick.C:
			if resp, ok := c.router.take(command); ok {
				if c.cfg.Debug {
					log.Println("<< " + resp.String())
				}
				return resp, nil
			}
		}
	}
}
