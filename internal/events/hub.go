package events

import (
	"fmt"
	log "github.com/sirupsen/logrus"
	"sync"
	"sync/atomic"
)

const (
	TypeTick  = "tick"
	TypeToast = "toast"
)

// Event is pushed to every connected browser.
type Event struct {
	Type string      `json:"type"`
	Data interface{} `json:"data"`
}

// Client is one connected event consumer.
type Client struct {
	ID   string
	Chan chan Event
}

func NewClientWithBuffer(buffer int) *Client {
	return &Client{Chan: make(chan Event, buffer)}
}

// Hub fans events out to registered clients.
type Hub struct {
	clients map[*Client]bool
	mutex   sync.Mutex
	counter int64
}

func NewHub() *Hub {
	return &Hub{clients: make(map[*Client]bool)}
}

func (h *Hub) Register(c *Client) {
	c.ID = fmt.Sprintf("client-%d", atomic.AddInt64(&h.counter, 1))
	h.mutex.Lock()
	h.clients[c] = true
	h.mutex.Unlock()
	log.Debugf("--> registered [%s]", c.ID)
}

// Unregister removes the client and closes its channel. Safe to call twice.
func (h *Hub) Unregister(c *Client) {
	h.mutex.Lock()
	defer h.mutex.Unlock()

	if _, exists := h.clients[c]; !exists {
		return
	}
	delete(h.clients, c)
	close(c.Chan)
	log.Debugf("<-- unregistered [%s]", c.ID)
}

// Count returns the number of registered clients.
func (h *Hub) Count() int {
	h.mutex.Lock()
	defer h.mutex.Unlock()
	return len(h.clients)
}

// Publish never blocks: a client whose buffer is full is dropped.
func (h *Hub) Publish(event Event) {
	h.mutex.Lock()
	var slowClients []*Client
	for client := range h.clients {
		select {
		case client.Chan <- event:
		default:
			log.Warnf("[!] dropping client [%s]", client.ID)
			slowClients = append(slowClients, client)
		}
	}
	h.mutex.Unlock()

	for _, c := range slowClients {
		h.Unregister(c)
	}
}
