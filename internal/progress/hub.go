package progress

import (
	"encoding/json"
	"fmt"
	"log"
	"sync"
)

// Event is one progress message pushed to the browser during generation.
// Events are informational only; nothing downstream depends on them.
type Event struct {
	Msg string `json:"msg"`
}

// Hub fans generation progress out to per-client subscriber channels, keyed
// by a client-chosen topic. Subscribers that stop reading are skipped with a
// non-blocking send so a stuck browser can never stall the pipeline.
type Hub struct {
	mu     sync.Mutex
	topics map[string]map[chan []byte]bool
}

func NewHub() *Hub {
	return &Hub{
		topics: make(map[string]map[chan []byte]bool),
	}
}

// Subscribe registers ch for events on topic. The caller owns ch and must
// Unsubscribe before closing it; the hub never closes subscriber channels.
func (h *Hub) Subscribe(topic string, ch chan []byte) {
	h.mu.Lock()
	defer h.mu.Unlock()
	subs, ok := h.topics[topic]
	if !ok {
		subs = make(map[chan []byte]bool)
		h.topics[topic] = subs
	}
	subs[ch] = true
}

func (h *Hub) Unsubscribe(topic string, ch chan []byte) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if subs, ok := h.topics[topic]; ok {
		delete(subs, ch)
		if len(subs) == 0 {
			delete(h.topics, topic)
		}
	}
}

// Publish sends an event to every subscriber of topic. Messages to slow
// subscribers are dropped.
func (h *Hub) Publish(topic string, ev Event) {
	payload, err := json.Marshal(ev)
	if err != nil {
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	for ch := range h.topics[topic] {
		select {
		case ch <- payload:
		default:
			// drop if client not reading
		}
	}
}

// Logf logs the message locally and publishes it to the topic, mirroring the
// server log into the browser.
func (h *Hub) Logf(topic, format string, v ...interface{}) {
	ev := Event{Msg: fmt.Sprintf(format, v...)}
	log.Println(ev.Msg)
	h.Publish(topic, ev)
}
