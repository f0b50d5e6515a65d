package scene

import (
	"refraction/internal/util"
	"refraction/pkg/config"
)

// Motion turns horizontal pointer drags into a decaying spin velocity
type Motion struct {
	Velocity float64
	Pressed  bool
	LastX    float64

	decay     float64
	idleBias  float64
	dragScale float64
}

func NewMotion(cfg config.SpinConfig) Motion {
	return Motion{
		Velocity:  cfg.InitialVelocity,
		decay:     cfg.Decay,
		idleBias:  cfg.IdleBias,
		dragScale: cfg.DragScale,
	}
}

// Press starts a drag at x
func (m *Motion) Press(x float64) {
	m.Pressed = true
	m.LastX = x
}

// Move adds the horizontal delta since the last recorded x to the velocity.
// It does nothing unless a drag is in progress.
func (m *Motion) Move(x float64) {
	if !m.Pressed {
		return
	}
	m.Velocity += (x - m.LastX) * m.dragScale
	m.LastX = x
}

// Release ends the drag
func (m *Motion) Release() {
	m.Pressed = false
}

// Step decays the velocity by one frame and returns the rotation to apply.
// While idle a small bias in the direction of travel keeps the model turning.
func (m *Motion) Step() float64 {
	m.Velocity *= m.decay
	return m.Velocity + util.Sign(m.Velocity)*m.idleBias*(1-util.BoolToFloat(m.Pressed))
}
