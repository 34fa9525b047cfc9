package sim

import "github.com/san-kum/marionette/internal/marionette"

// Event is anything the Driver accepts through Handle.
type Event interface {
	event()
}

// DeviceAdded spawns a marionette for a newly connected device.
type DeviceAdded struct {
	ID   string
	Slot int
}

type DeviceRemoved struct {
	ID string
}

// Motion carries one sample from a device. Samples for unknown ids are
// dropped.
type Motion struct {
	ID string
	marionette.Input
}

// SetParam adjusts a driver tunable by name.
type SetParam struct {
	Name  string
	Value float64
}

func (DeviceAdded) event()   {}
func (DeviceRemoved) event() {}
func (Motion) event()        {}
func (SetParam) event()      {}
