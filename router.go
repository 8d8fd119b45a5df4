package cansim

import "sync"

// router fans parsed messages out to their consumers: command
// responses land in a single-slot-per-command pending store that
// SendCommand polls, notifications go straight to the registered
// callbacks on the read loop's goroutine.
//
// The store keeps at most one unclaimed response per command name and
// a newer response overwrites an older one. Two in-flight commands
// with the same name can therefore steal each other's reply; see the
// SendCommand doc comment.
type router struct {
	mu      sync.Mutex
	pending map[string]*Response

	onStatus  func(*Status)
	onError   func(string)
	onMessage func(string)
}

func newRouter(cfg *Config) *router {
	return &router{
		pending:   make(map[string]*Response),
		onStatus:  cfg.OnStatus,
		onError:   cfg.OnError,
		onMessage: cfg.OnMessage,
	}
}

func (r *router) setOnStatus(fn func(*Status)) {
	r.mu.Lock()
	r.onStatus = fn
	r.mu.Unlock()
}

func (r *router) setOnError(fn func(string)) {
	r.mu.Lock()
	r.onError = fn
	r.mu.Unlock()
}

// dispatch routes one message. Callbacks run synchronously on the
// caller's goroutine and must not block for long, every further
// message for the session waits behind them.
func (r *router) dispatch(msg Message) {
	switch m := msg.(type) {
	case *Response:
		r.mu.Lock()
		r.pending[m.Command] = m
		r.mu.Unlock()
	case *Status:
		r.mu.Lock()
		fn := r.onStatus
		r.mu.Unlock()
		if fn != nil {
			fn(m)
		}
	case *ErrorMessage:
		r.onMessage(m.String())
		r.mu.Lock()
		fn := r.onError
		r.mu.Unlock()
		if fn != nil {
			fn(m.Message)
		}
	case *LogLine:
		r.onMessage(m.Text)
	}
}

// take removes and returns the unclaimed response for a command.
func (r *router) take(command string) (*Response, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	resp, ok := r.pending[command]
	if ok {
		delete(r.pending, command)
	}
	return resp, ok
}

// evict drops a stale unclaimed response so a fresh send can't match
// a reply left over from an earlier invocation.
func (r *router) evict(command string) {
	r.mu.Lock()
	delete(r.pending, command)
	r.mu.Unlock()
}

func (r *router) reset() {
	r.mu.Lock()
	r.pending = make(map[string]*Response)
	r.mu.Unlock()
}
