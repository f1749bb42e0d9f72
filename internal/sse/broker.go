// Package sse streams move results and user notices to browser clients.
package sse

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/starford/notemover/internal/mover"
)

// Event types published by the broker.
const (
	EventNoteMoved = "note.moved"
	EventNotice    = "notice"
	EventFailure   = "move.failed"
)

// Event is one SSE message.
type Event struct {
	Type string `json:"type"`
	Data any    `json:"data"`
}

// MovedData is the payload of note.moved and move.failed events.
type MovedData struct {
	From      string `json:"from"`
	To        string `json:"to,omitempty"`
	Outcome   string `json:"outcome"`
	Companion string `json:"companion,omitempty"`
	Trigger   string `json:"trigger"`
	Indicator string `json:"indicator"`
}

// NoticeData is the payload of notice events.
type NoticeData struct {
	Level   string `json:"level"`
	Message string `json:"message"`
	Path    string `json:"path,omitempty"`
	Outcome string `json:"outcome,omitempty"`
}

// Broker fans events out to connected SSE clients.
//
// A single event loop owns the client set and the event sequence. Public
// methods talk to it over channels.
type Broker struct {
	heartbeat time.Duration

	subscribeCh   chan chan []byte
	unsubscribeCh chan chan []byte
	publishCh     chan Event
	countReqCh    chan chan int

	stopCh  chan struct{}
	stopped chan struct{}
	closed  atomic.Bool
}

// NewBroker starts a broker that writes a keep-alive comment to every client
// each heartbeat interval.
func NewBroker(heartbeat time.Duration) *Broker {
	if heartbeat <= 0 {
		heartbeat = 15 * time.Second
	}

	b := &Broker{
		heartbeat:     heartbeat,
		subscribeCh:   make(chan chan []byte),
		unsubscribeCh: make(chan chan []byte),
		publishCh:     make(chan Event, 256),
		countReqCh:    make(chan chan int),
		stopCh:        make(chan struct{}),
		stopped:       make(chan struct{}),
	}

	go b.run()
	return b
}

func (b *Broker) run() {
	defer close(b.stopped)

	clients := make(map[chan []byte]struct{})
	var seq uint64

	ticker := time.NewTicker(b.heartbeat)
	defer ticker.Stop()

	send := func(raw []byte) {
		for ch := range clients {
			select {
			case ch <- raw:
			default:
				// Slow client; drop rather than stall the loop.
			}
		}
	}

	for {
		select {
		case <-b.stopCh:
			for ch := range clients {
				close(ch)
			}
			return

		case ch := <-b.subscribeCh:
			clients[ch] = struct{}{}

		case ch := <-b.unsubscribeCh:
			if _, ok := clients[ch]; ok {
				delete(clients, ch)
				close(ch)
			}

		case event := <-b.publishCh:
			payload, err := json.Marshal(event.Data)
			if err != nil {
				continue
			}
			seq++
			send([]byte(fmt.Sprintf("id: %d\nevent: %s\ndata: %s\n\n", seq, event.Type, payload)))

		case <-ticker.C:
			if len(clients) > 0 {
				send([]byte(": ping\n\n"))
			}

		case resp := <-b.countReqCh:
			resp <- len(clients)
		}
	}
}

// Close stops the event loop and closes all client channels.
func (b *Broker) Close() {
	if b.closed.CompareAndSwap(false, true) {
		close(b.stopCh)
	}
	<-b.stopped
}

// Subscribe adds a new client and returns its channel.
func (b *Broker) Subscribe() chan []byte {
	ch := make(chan []byte, 64)
	if b.closed.Load() {
		close(ch)
		return ch
	}

	select {
	case b.subscribeCh <- ch:
	case <-b.stopped:
		close(ch)
	}

	return ch
}

// Unsubscribe removes a client and closes its channel.
func (b *Broker) Unsubscribe(ch chan []byte) {
	if b.closed.Load() {
		return
	}
	select {
	case b.unsubscribeCh <- ch:
	case <-b.stopped:
	}
}

// ClientCount returns the number of connected clients.
func (b *Broker) ClientCount() int {
	if b.closed.Load() {
		return 0
	}

	resp := make(chan int, 1)
	select {
	case b.countReqCh <- resp:
	case <-b.stopped:
		return 0
	}

	select {
	case n := <-resp:
		return n
	case <-b.stopped:
		return 0
	}
}

// Publish sends an event to all connected clients.
func (b *Broker) Publish(event Event) {
	if b.closed.Load() {
		return
	}
	select {
	case b.publishCh <- event:
	case <-b.stopped:
	}
}

// PublishResult announces a move attempt. Skips other than failures are not
// broadcast.
func (b *Broker) PublishResult(trigger mover.Trigger, res mover.Result) {
	typ := EventNoteMoved
	switch {
	case res.Outcome.IsFailure():
		typ = EventFailure
	case res.Outcome != mover.Moved:
		return
	}
	data := MovedData{
		From:      res.From,
		To:        res.To,
		Outcome:   res.Outcome.String(),
		Trigger:   string(trigger),
		Indicator: mover.Indicator(trigger),
	}
	if res.Companion != mover.OutcomeNone {
		data.Companion = res.Companion.String()
	}
	b.Publish(Event{Type: typ, Data: data})
}

// PublishReport forwards Notice-severity reports. Log-only reports are ignored.
func (b *Broker) PublishReport(r mover.Report) {
	if r.Severity != mover.SeverityNotice {
		return
	}
	data := NoticeData{
		Level:   r.Level.String(),
		Message: r.Message,
		Path:    r.Path,
	}
	if r.Outcome != mover.OutcomeNone {
		data.Outcome = r.Outcome.String()
	}
	b.Publish(Event{Type: EventNotice, Data: data})
}

// ServeHTTP is the SSE endpoint handler (GET /api/events).
func (b *Broker) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	ch := b.Subscribe()
	defer b.Unsubscribe(ch)

	ctx := r.Context()
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			_, _ = w.Write(msg)
			flusher.Flush()
		}
	}
}
