package scenario

import (
	"math"

	"github.com/san-kum/marionette/internal/vecmath"
)

// Default is a short duet: one figure walks in and dances with its arms,
// a second joins a second later, kicks, and leaves before the end.
func Default() *Scenario {
	return &Scenario{
		Name:        "duet",
		Description: "two devices, arm and leg pulls",
		Duration:    6,
		Dt:          1.0 / 60,
		Devices: []Device{
			{ID: "lead", Slot: 0, Join: 0, Keys: dance(5.5, 0.25, "cleft", "cright")},
			{ID: "second", Slot: 1, Join: 1, Leave: 5, Keys: dance(3.5, 0.5, "clefta", "crighta")},
		},
	}
}

// dance alternates pulls on two ropes while rocking the controller.
func dance(length, every float64, left, right string) []Key {
	var keys []Key
	for i := 0; float64(i)*every < length; i++ {
		at := float64(i) * every
		k := Key{
			At:  at,
			Acc: vecmath.V(0.02*math.Sin(at*3), 0, 0.01*math.Cos(at*2)),
			Rot: vecmath.V(15*math.Sin(at), 10*math.Sin(at*2), 0),
		}
		side := left
		if i%2 == 1 {
			side = right
		}
		k.Pulls = map[string]vecmath.Vec3{side: vecmath.V(0, 0.3, 0)}
		keys = append(keys, k)
	}
	return keys
}
