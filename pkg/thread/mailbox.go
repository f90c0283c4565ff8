package thread

import "sync"

// Mailbox is an unbounded FIFO queue between a producer that must never
// block and a consumer reading the Out channel.
// The Out channel is closed after Close once all the queued values
// were read, so the consumer should drain it.
type Mailbox[T any] struct {
	mu     sync.Mutex
	queue  []T
	closed bool
	wake   chan struct{}
	out    chan T
}

func NewMailbox[T any]() *Mailbox[T] {
	m := &Mailbox[T]{wake: make(chan struct{}, 1), out: make(chan T)}
	go m.pump()
	return m
}

// Post queues the value. It returns false if the mailbox is closed.
func (m *Mailbox[T]) Post(v T) bool {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return false
	}
	m.queue = append(m.queue, v)
	m.mu.Unlock()
	m.signal()
	return true
}

// Close stops accepting new values.
func (m *Mailbox[T]) Close() {
	m.mu.Lock()
	m.closed = true
	m.mu.Unlock()
	m.signal()
}

func (m *Mailbox[T]) Out() <-chan T { return m.out }

func (m *Mailbox[T]) signal() {
	select {
	case m.wake <- struct{}{}:
	default:
	}
}

func (m *Mailbox[T]) pump() {
	defer close(m.out)
	for {
		m.mu.Lock()
		batch, closed := m.queue, m.closed
		m.queue = nil
		m.mu.Unlock()

		for _, v := range batch {
			m.out <- v
		}
		if len(batch) > 0 {
			continue
		}
		if closed {
			return
		}
		<-m.wake
	}
}
