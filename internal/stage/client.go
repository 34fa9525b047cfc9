package stage

import (
	"context"
	"fmt"
	"log"
	"sort"

	"github.com/gorilla/websocket"

	"github.com/san-kum/marionette/internal/marionette"
	"github.com/san-kum/marionette/internal/protocol"
	"github.com/san-kum/marionette/internal/sim"
)

// ToEvent translates a relay message into a driver event.
func ToEvent(env protocol.Envelope) (sim.Event, error) {
	switch env.T {
	case protocol.MsgPhoneAdded:
		p, err := protocol.DecodePayload[protocol.PhoneAdded](env)
		if err != nil {
			return nil, err
		}
		return sim.DeviceAdded{ID: p.ID, Slot: p.Slot}, nil
	case protocol.MsgPhoneRemoved:
		p, err := protocol.DecodePayload[protocol.PhoneRemoved](env)
		if err != nil {
			return nil, err
		}
		return sim.DeviceRemoved{ID: p.ID}, nil
	case protocol.MsgMotion:
		m, err := protocol.DecodePayload[protocol.Motion](env)
		if err != nil {
			return nil, err
		}
		return sim.Motion{ID: m.ID, Input: marionette.Input{
			Acc:         m.Acc,
			Rot:         m.Rot,
			Pulls:       m.Pulls,
			Recalibrate: m.Recalibrate,
		}}, nil
	}
	return nil, fmt.Errorf("unexpected message type %q", env.T)
}

// Dial connects to a relay as a desktop and forwards what it hears to sink
// until ctx is done or the relay goes away. Phones still known when the
// connection ends are removed.
func Dial(ctx context.Context, url string, sink Sink, logger *log.Logger) error {
	if logger == nil {
		logger = log.Default()
	}
	ws, _, err := websocket.DefaultDialer.DialContext(ctx, url, nil)
	if err != nil {
		return fmt.Errorf("dial %s: %w", url, err)
	}
	defer ws.Close()

	stop := context.AfterFunc(ctx, func() { ws.Close() })
	defer stop()

	hello, err := protocol.Encode(protocol.MsgDevice, protocol.Device{Role: protocol.RoleDesktop})
	if err != nil {
		return err
	}
	if err := ws.WriteMessage(websocket.TextMessage, hello); err != nil {
		return err
	}
	logger.Printf("connected to relay %s", url)

	phones := make(map[string]bool)
	defer func() {
		ids := make([]string, 0, len(phones))
		for id := range phones {
			ids = append(ids, id)
		}
		sort.Strings(ids)
		for _, id := range ids {
			_ = sink.Send(context.Background(), sim.DeviceRemoved{ID: id})
		}
	}()

	for {
		_, msg, err := ws.ReadMessage()
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return fmt.Errorf("relay read: %w", err)
		}
		env, err := protocol.DecodeEnvelope(msg)
		if err != nil {
			logger.Printf("relay: %v", err)
			continue
		}
		ev, err := ToEvent(env)
		if err != nil {
			logger.Printf("relay: %v", err)
			continue
		}
		switch e := ev.(type) {
		case sim.DeviceAdded:
			phones[e.ID] = true
		case sim.DeviceRemoved:
			delete(phones, e.ID)
		}
		if err := sink.Send(ctx, ev); err != nil {
			return err
		}
	}
}
