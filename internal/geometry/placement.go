package geometry

import "github.com/go-gl/mathgl/mgl32"

// Placement is the single precision pose handed to mesh instantiators. Position is relative to the
// tileset origin, which keeps values small enough for float32.
type Placement struct {
	Position mgl32.Vec3
	Rotation mgl32.Quat
}

func IdentityPlacement() Placement {
	return Placement{Rotation: mgl32.QuatIdent()}
}
