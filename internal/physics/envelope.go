package physics

import "math"

// Envelope is the reach of a full-power jump.
type Envelope struct {
	Height   float64 // apex height of a vertical launch
	Distance float64 // horizontal reach of a 45 degree launch, scaled by the safety factor
}

// JumpEnvelope computes the reach of a launch at speed vMax under gravity g.
// Air resistance is ignored, so safety should stay well below 1.
func JumpEnvelope(vMax, g, safety float64) Envelope {
	if vMax <= 0 || g <= 0 {
		return Envelope{}
	}
	s := math.Sqrt2 / 2
	flight := 2 * vMax * s / g
	return Envelope{
		Height:   vMax * vMax / (2 * g),
		Distance: vMax * s * flight * safety,
	}
}

// Ballistic holds the integration parameters shared by the player and the
// trajectory preview.
type Ballistic struct {
	Gravity       float64
	AirResistance float64 // per-frame horizontal multiplier at 60fps
	MinX, MaxX    float64 // horizontal bounds for wall reflection; ignored when MinX >= MaxX
	Bounce        float64
}

// AppendTrajectory integrates a launch from pos with velocity vel for n steps
// of dt and appends the sampled positions to dst.
func (b Ballistic) AppendTrajectory(dst []Vec2, pos, vel Vec2, dt float64, n int) []Vec2 {
	air := FrameFactor(b.AirResistance, dt)
	for i := 0; i < n; i++ {
		vel.Y += b.Gravity * dt
		vel.X *= air
		pos = pos.Add(vel.Scale(dt))
		if b.MinX < b.MaxX {
			if pos.X < b.MinX {
				pos.X = b.MinX
				vel.X *= -b.Bounce
			} else if pos.X > b.MaxX {
				pos.X = b.MaxX
				vel.X *= -b.Bounce
			}
		}
		dst = append(dst, pos)
	}
	return dst
}
