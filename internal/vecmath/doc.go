// Package vecmath provides the small vector and matrix toolkit shared by the
// physics core, the driver and the terminal renderer.
//
// Matrices are column-major ([Mat4] index c*4+r) and rotations take degrees.
// Transform builders (Translate, RotateX/Y/Z, Scale) right-multiply onto the
// receiver, so a chain reads in object space:
//
//	m := vecmath.NewMat4().Translate(x, y, z).RotateY(-yaw)
//	var p vecmath.Vec3
//	p.TransformMat4(local, m)
package vecmath
