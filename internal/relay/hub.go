// Package relay forwards motion from phones to every connected desktop and
// assigns each phone a stage slot.
package relay

import (
	"errors"
	"fmt"
	"log"
	"sync"

	"github.com/san-kum/marionette/internal/protocol"
)

var (
	ErrUnknownRole  = errors.New("relay: unknown device role")
	ErrHubStopped   = errors.New("relay: hub stopped")
	ErrClosed       = errors.New("relay: connection closed")
	ErrSlowConsumer = errors.New("relay: send buffer full")
)

// Conn is one registered client as seen by the hub.
type Conn interface {
	Send([]byte) error
	Close() error
}

// Register is issued once a connection has announced its role.
type Register struct {
	Conn  Conn
	Role  string
	Reply chan<- Registered
}

// Registered answers Register. Slot is -1 for desktops.
type Registered struct {
	ID   string
	Slot int
	Err  error
}

// Forward carries one motion sample read from phone ID.
type Forward struct {
	ID     string
	Motion protocol.Motion
}

// Unregister is issued on disconnect.
type Unregister struct {
	ID string
}

// Status asks the hub for a snapshot of its clients.
type Status struct {
	Reply chan<- HubStatus
}

type HubStatus struct {
	Phones   int      `json:"phones"`
	Desktops int      `json:"desktops"`
	Slots    []string `json:"slots"`
}

// Hub owns all client state. Only Run touches it; everything else talks to
// it through Inbox.
type Hub struct {
	Inbox chan any

	phones   map[string]Conn
	desktops map[string]Conn
	slots    []string // phone id per slot, "" when free
	nextID   int

	log  *log.Logger
	quit chan struct{}
	once sync.Once
}

func NewHub() *Hub {
	return &Hub{
		Inbox:    make(chan any, 256),
		phones:   make(map[string]Conn),
		desktops: make(map[string]Conn),
		nextID:   1,
		log:      log.Default(),
		quit:     make(chan struct{}),
	}
}

func (h *Hub) SetLogger(l *log.Logger) { h.log = l }

func (h *Hub) Stop() {
	h.once.Do(func() { close(h.quit) })
}

// Done is closed once the hub is stopped. Commands still queued in Inbox at
// that point are never answered.
func (h *Hub) Done() <-chan struct{} { return h.quit }

// Post delivers cmd to the hub unless it has stopped.
func (h *Hub) Post(cmd any) error {
	select {
	case <-h.quit:
		return ErrHubStopped
	default:
	}
	select {
	case h.Inbox <- cmd:
		return nil
	case <-h.quit:
		return ErrHubStopped
	}
}

func (h *Hub) Run() {
	for {
		select {
		case <-h.quit:
			for _, c := range h.phones {
				_ = c.Close()
			}
			for _, c := range h.desktops {
				_ = c.Close()
			}
			return
		case cmd := <-h.Inbox:
			h.handleCommand(cmd)
		}
	}
}

func (h *Hub) handleCommand(cmd any) {
	switch c := cmd.(type) {
	case Register:
		c.Reply <- h.register(c.Conn, c.Role)
	case Forward:
		h.forward(c.ID, c.Motion)
	case Unregister:
		h.unregister(c.ID)
	case Status:
		c.Reply <- h.status()
	default:
		h.log.Printf("relay: unexpected command %T", cmd)
	}
}

func (h *Hub) register(conn Conn, role string) Registered {
	switch role {
	case protocol.RolePhone:
		id := fmt.Sprintf("p%d", h.nextID)
		h.nextID++
		slot := h.claimSlot(id)
		h.phones[id] = conn
		h.log.Printf("phone connected: %s slot %d", id, slot)
		h.broadcast(protocol.MsgPhoneAdded, protocol.PhoneAdded{ID: id, Slot: slot})
		return Registered{ID: id, Slot: slot}

	case protocol.RoleDesktop:
		id := fmt.Sprintf("d%d", h.nextID)
		h.nextID++
		h.desktops[id] = conn
		h.log.Printf("desktop connected: %s", id)
		for slot, pid := range h.slots {
			if pid == "" {
				continue
			}
			h.sendTo(id, conn, protocol.MsgPhoneAdded, protocol.PhoneAdded{ID: pid, Slot: slot})
		}
		return Registered{ID: id, Slot: -1}
	}
	return Registered{Slot: -1, Err: fmt.Errorf("%w: %q", ErrUnknownRole, role)}
}

// claimSlot takes the first free slot, growing the list when none is free.
func (h *Hub) claimSlot(id string) int {
	for i, s := range h.slots {
		if s == "" {
			h.slots[i] = id
			return i
		}
	}
	h.slots = append(h.slots, id)
	return len(h.slots) - 1
}

func (h *Hub) forward(id string, m protocol.Motion) {
	if _, ok := h.phones[id]; !ok {
		return
	}
	m.ID = id
	h.broadcast(protocol.MsgMotion, m)
}

func (h *Hub) unregister(id string) {
	if c, ok := h.desktops[id]; ok {
		delete(h.desktops, id)
		_ = c.Close()
		h.log.Printf("desktop disconnected: %s", id)
		return
	}
	c, ok := h.phones[id]
	if !ok {
		return
	}
	delete(h.phones, id)
	_ = c.Close()
	for i, s := range h.slots {
		if s == id {
			h.slots[i] = ""
		}
	}
	h.log.Printf("phone disconnected: %s", id)
	h.broadcast(protocol.MsgPhoneRemoved, protocol.PhoneRemoved{ID: id})
}

func (h *Hub) broadcast(t string, payload any) {
	b, err := protocol.Encode(t, payload)
	if err != nil {
		h.log.Printf("relay: encode %s: %v", t, err)
		return
	}
	for id, c := range h.desktops {
		if err := c.Send(b); err != nil {
			h.log.Printf("relay: send %s to %s: %v", t, id, err)
		}
	}
}

func (h *Hub) sendTo(id string, c Conn, t string, payload any) {
	b, err := protocol.Encode(t, payload)
	if err != nil {
		h.log.Printf("relay: encode %s: %v", t, err)
		return
	}
	if err := c.Send(b); err != nil {
		h.log.Printf("relay: send %s to %s: %v", t, id, err)
	}
}

func (h *Hub) status() HubStatus {
	return HubStatus{
		Phones:   len(h.phones),
		Desktops: len(h.desktops),
		Slots:    append([]string(nil), h.slots...),
	}
}

// await waits for the answer to a posted command, giving up when the hub
// stops first.
func await[T any](h *Hub, reply <-chan T) (T, error) {
	select {
	case v := <-reply:
		return v, nil
	case <-h.Done():
		var zero T
		return zero, ErrHubStopped
	}
}

// PhoneIDs lists connected phone ids ordered by slot.
func (s HubStatus) PhoneIDs() []string {
	out := make([]string, 0, s.Phones)
	for _, id := range s.Slots {
		if id != "" {
			out = append(out, id)
		}
	}
	return out
}
