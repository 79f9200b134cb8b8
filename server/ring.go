package server

import "net"

// Ring is the bounded single-producer/multi-consumer queue the accept loop
// pushes accepted connections onto and the worker pool drains (spec §4.6,
// §9). Spec §9 names this "SPMC ring as raw pointers" in the original and
// directs the re-architecture at a bounded channel from the standard
// concurrency toolkit, preserving the "enqueue a sentinel to shut down
// workers" idiom — so Ring is a thin, named wrapper over a buffered Go
// channel of net.Conn rather than a hand-rolled lock-free ring.
type Ring struct {
	ch chan net.Conn
}

// NewRing creates a Ring with room for capacity pending connections (spec
// §4.6 "a bounded SPMC ring buffer"; the original's default was 64).
func NewRing(capacity int) *Ring {
	if capacity <= 0 {
		capacity = 64
	}
	return &Ring{ch: make(chan net.Conn, capacity)}
}

// Push enqueues conn, blocking if the ring is full (spec §5: "Enqueue spins
// with backoff when full" — a blocking channel send is the idiomatic Go
// equivalent of spin-with-backoff for a bounded buffer).
func (r *Ring) Push(conn net.Conn) {
	r.ch <- conn
}

// Shutdown enqueues one sentinel (a nil net.Conn) per worker, the signal a
// worker's Pop loop recognizes as "exit" (spec §4.6: "When a worker
// dequeues the sentinel value 0, it exits; shutdown enqueues one sentinel
// per worker").
func (r *Ring) Shutdown(workers int) {
	for i := 0; i < workers; i++ {
		r.ch <- nil
	}
}

// Pop dequeues the next connection, or (nil, false) if it was the shutdown
// sentinel.
func (r *Ring) Pop() (net.Conn, bool) {
	conn := <-r.ch
	if conn == nil {
		return nil, false
	}
	return conn, true
}
