package liveness

import (
	"sync"
	"time"
)

// SignalKind discriminates the two asynchronous signals the native biometric
// layer can emit for a session.
type SignalKind int

const (
	SignalComplete SignalKind = iota
	SignalError
)

// Signal is one inbound event from the native layer. Message is set only for
// SignalError.
type Signal struct {
	Kind      SignalKind
	SessionID string
	Message   string
}

// Bridge is the native biometric capability boundary. Start is fire-and-forget:
// it returns immediately while the verification runs in a separate native
// surface. Subscriptions are keyed by session id, so a listener can never
// observe another session's events.
type Bridge interface {
	Start(sessionID, region string) error
	Subscribe(sessionID string) *Subscription
}

// Subscription is one session-scoped listener binding. Close tears down the
// binding; signals emitted afterwards are dropped.
type Subscription struct {
	C      <-chan Signal
	cancel func()
	once   sync.Once
}

func (s *Subscription) Close() {
	s.once.Do(s.cancel)
}

// Emitter is an in-process Bridge event hub. Each Subscribe call owns its own
// channel keyed by session id; there is no global listener state.
type Emitter struct {
	mu   sync.Mutex
	next int
	subs map[string]map[int]chan Signal

	start func(sessionID, region string) error
}

// NewEmitter builds an Emitter whose Start delegates to the given function
// (the actual native invocation, or a simulation).
func NewEmitter(start func(sessionID, region string) error) *Emitter {
	return &Emitter{
		subs:  make(map[string]map[int]chan Signal),
		start: start,
	}
}

func (e *Emitter) Start(sessionID, region string) error {
	if e.start == nil {
		return nil
	}
	return e.start(sessionID, region)
}

func (e *Emitter) Subscribe(sessionID string) *Subscription {
	e.mu.Lock()
	defer e.mu.Unlock()

	id := e.next
	e.next++

	ch := make(chan Signal, 2)
	if e.subs[sessionID] == nil {
		e.subs[sessionID] = make(map[int]chan Signal)
	}
	e.subs[sessionID][id] = ch

	return &Subscription{
		C: ch,
		cancel: func() {
			e.mu.Lock()
			defer e.mu.Unlock()
			if listeners, ok := e.subs[sessionID]; ok {
				delete(listeners, id)
				if len(listeners) == 0 {
					delete(e.subs, sessionID)
				}
			}
		},
	}
}

// Emit delivers a signal to every listener bound to its session. Signals for
// sessions without listeners are dropped, matching the fire-and-forget
// contract of the native layer.
func (e *Emitter) Emit(sig Signal) {
	e.mu.Lock()
	defer e.mu.Unlock()
	for _, ch := range e.subs[sig.SessionID] {
		select {
		case ch <- sig:
		default:
		}
	}
}

// ListenerCount reports the number of live subscriptions for a session.
func (e *Emitter) ListenerCount(sessionID string) int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.subs[sessionID])
}

// SimulatedBridge emits a successful completion (or a canned error) after a
// fixed latency. It stands in for the real native module in the demo
// deployment.
type SimulatedBridge struct {
	*Emitter
	Latency time.Duration
	Fail    string // when non-empty, emit SignalError with this message
}

func NewSimulatedBridge(latency time.Duration, fail string) *SimulatedBridge {
	b := &SimulatedBridge{Latency: latency, Fail: fail}
	b.Emitter = NewEmitter(func(sessionID, _ string) error {
		go func() {
			time.Sleep(b.Latency)
			if b.Fail != "" {
				b.Emit(Signal{Kind: SignalError, SessionID: sessionID, Message: b.Fail})
				return
			}
			b.Emit(Signal{Kind: SignalComplete, SessionID: sessionID})
		}()
		return nil
	})
	return b
}
