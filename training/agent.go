package training

import (
	"math"

	"github.com/baldhumanity/pendulum-neat/neat"
	"github.com/baldhumanity/pendulum-neat/pbd"
)

// Agent is a chain of rigid segments hanging from a cart. The cart is a drag
// constraint on the top of the first segment.
type Agent struct {
	Solver   *pbd.Solver
	Segments []pbd.Handle
	Cart     pbd.Handle

	segmentSize float64
}

// NewAgent builds the chain described by sim with every constraint using compliance.
func NewAgent(sim neat.SimulationConfig, compliance float64) *Agent {
	a := &Agent{
		Solver:      pbd.NewSolver(),
		segmentSize: sim.SegmentSize,
	}
	w, h := sim.WorldSize()
	center := pbd.Vec2{X: w * 0.5, Y: h * 0.5}

	for i := 0; i < sim.SegmentsCount; i++ {
		handle := a.Solver.CreateObject()
		seg, _ := a.Solver.Object(handle)
		seg.Particles = append(seg.Particles, pbd.Vec2{}, pbd.Vec2{X: sim.SegmentSize})
		seg.ComputeProperties()
		seg.Position = pbd.Vec2{X: center.X, Y: center.Y + (0.5+float64(i))*sim.SegmentSize}
		seg.Angle = math.Pi * 0.5

		if i == 0 {
			a.Cart, _ = a.Solver.CreateDragConstraint(handle, seg.ParticleWorldPosition(0), compliance)
		} else {
			last := a.Segments[i-1]
			prev, _ := a.Solver.Object(last)
			a.Solver.CreateObjectPinConstraint(
				pbd.ParticleAnchor(last, prev, 1),
				pbd.ParticleAnchor(handle, seg, 0),
				compliance,
			)
		}
		a.Segments = append(a.Segments, handle)
	}
	return a
}

// Update advances the physics by dt.
func (a *Agent) Update(dt float64) {
	a.Solver.Update(dt)
}

func (a *Agent) segment(i int) *pbd.Object {
	o, _ := a.Solver.Object(a.Segments[i])
	return o
}

// Position returns the position of segment i.
func (a *Agent) Position(i int) pbd.Vec2 {
	return a.segment(i).Position
}

// BasePosition returns the top of the first segment, where the cart holds it.
func (a *Agent) BasePosition() pbd.Vec2 {
	return a.segment(0).ParticleWorldPosition(0)
}

// TipPosition returns the free end of the last segment.
func (a *Agent) TipPosition() pbd.Vec2 {
	return a.segment(len(a.Segments) - 1).ParticleWorldPosition(1)
}

// Direction returns the unit vector along segment i.
func (a *Agent) Direction(i int) pbd.Vec2 {
	angle := a.segment(i).Angle
	return pbd.Vec2{X: math.Cos(angle), Y: math.Sin(angle)}
}

// Velocity returns the linear velocity of segment i.
func (a *Agent) Velocity(i int) pbd.Vec2 {
	return a.segment(i).Velocity
}

// AngularVelocity returns the angular velocity of segment i.
func (a *Agent) AngularVelocity(i int) float64 {
	return a.segment(i).AngularVelocity
}

// CartConstraint returns the drag constraint moving the cart.
func (a *Agent) CartConstraint() *pbd.DragConstraint {
	c, _ := a.Solver.Drag(a.Cart)
	return c
}

// ApplyDisturbance pushes the second segment halfway along its length.
func (a *Agent) ApplyDisturbance(d pbd.Vec2) {
	a.segment(1).ApplyPositionCorrection(d, pbd.Vec2{X: a.segmentSize * 0.5})
}
