// Package protocol defines the JSON messages exchanged between phones,
// desktops and the relay.
package protocol

import (
	"encoding/json"

	"github.com/san-kum/marionette/internal/vecmath"
)

const (
	MsgDevice       = "device"
	MsgPhoneAdded   = "phoneadded"
	MsgPhoneRemoved = "phoneremoved"
	MsgMotion       = "motion"
)

const (
	RolePhone   = "phone"
	RoleDesktop = "desktop"
)

// MotionHz is the rate at which phones sample and send motion.
const MotionHz = 60

type Envelope struct {
	T string          `json:"t"`
	P json.RawMessage `json:"p"` // raw payload bytes
}

// Device is the first message on every connection.
type Device struct {
	Role string `json:"role"`
}

type PhoneAdded struct {
	ID   string `json:"id"`
	Slot int    `json:"slot"`
}

type PhoneRemoved struct {
	ID string `json:"id"`
}

// Motion is sent by a phone without an id; the relay stamps it before
// forwarding to desktops. Rot is in degrees.
type Motion struct {
	ID          string                  `json:"id,omitempty"`
	Acc         vecmath.Vec3            `json:"acc"`
	Rot         vecmath.Vec3            `json:"rot"`
	Pulls       map[string]vecmath.Vec3 `json:"pulls,omitempty"`
	Recalibrate bool                    `json:"recalibrate,omitempty"`
}
