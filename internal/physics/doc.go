// Package physics provides the particle/constraint solver behind the
// marionette figures.
//
// A [Template] declares named nodes and the links between them. Building it
// with [NewAssembly] yields an [Assembly] of [Particle] values integrated
// with position Verlet and [Constraint] values relaxed one pass per sub-step:
//
//   - [Particle.Integrate]: Verlet step with friction and vertical gravity
//   - [Particle.CollideGround]: soft reflection off a horizontal plane
//   - [Constraint.Solve]: mass-weighted distance correction
//
// Pinned particles skip integration and weigh [PinnedMassFactor] times
// their mass during solving, so they barely move.
//
// # Sub-stepping
//
// Convergence comes from repeating whole sub-steps, not from iterating
// Solve within one:
//
//	for i := 0; i < substeps; i++ {
//	    asm.Step(dt/float64(substeps), physics.DefaultParams(), -1)
//	}
package physics
