package bus

import "sync"

const connBuffer = 256

// LocalBus is the in-process Bus. Each context (HTTP surface, sync
// coordinator, websocket gateway, tests) holds its own Conn; a publish
// fans out to every other Conn with a non-blocking send, so one slow
// receiver cannot stall the rest.
type LocalBus struct {
	mu    sync.RWMutex
	conns map[*localConn]struct{}
}

func NewLocalBus() *LocalBus {
	return &LocalBus{conns: map[*localConn]struct{}{}}
}

func (b *LocalBus) Connect() Conn {
	c := &localConn{bus: b, recv: make(chan Message, connBuffer)}
	b.mu.Lock()
	b.conns[c] = struct{}{}
	b.mu.Unlock()
	return c
}

func (b *LocalBus) publish(from *localConn, msg Message) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	for c := range b.conns {
		if c == from {
			continue
		}
		select {
		case c.recv <- msg:
		default:
			// receiver too slow, drop — delivery is best effort
		}
	}
}

func (b *LocalBus) disconnect(c *localConn) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.conns[c]; ok {
		delete(b.conns, c)
		close(c.recv)
	}
}

type localConn struct {
	bus  *LocalBus
	recv chan Message
}

func (c *localConn) Publish(msg Message) {
	c.bus.publish(c, msg)
}

func (c *localConn) Receive() <-chan Message {
	return c.recv
}

func (c *localConn) Close() {
	c.bus.disconnect(c)
}
