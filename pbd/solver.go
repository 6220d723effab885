package pbd

import "gonum.org/v1/gonum/spatial/r2"

// positionIterations is the number of constraint passes per sub-step.
const positionIterations = 1

// Solver advances objects under gravity while enforcing drag and pin constraints.
type Solver struct {
	Gravity  Vec2
	Friction float64
	SubSteps uint32

	Objects Pool[Object]
	Drags   Pool[DragConstraint]
	Pins    Pool[ObjectPinConstraint]
}

// NewSolver returns a solver with the default gravity and two sub-steps.
func NewSolver() *Solver {
	return &Solver{
		Gravity:  Vec2{X: 0, Y: 1000},
		SubSteps: 2,
	}
}

// CreateObject adds an empty unit density object.
func (s *Solver) CreateObject() Handle {
	return s.Objects.Insert(NewObject())
}

// Object resolves an object handle.
func (s *Solver) Object(h Handle) (*Object, bool) {
	return s.Objects.Get(h)
}

// CreateDragConstraint attaches the world point target of obj to target itself.
// The anchor is stored in object space so it follows the body.
func (s *Solver) CreateDragConstraint(obj Handle, target Vec2, compliance float64) (Handle, bool) {
	o, ok := s.Objects.Get(obj)
	if !ok {
		return Handle{}, false
	}
	c := DragConstraint{
		Constraint: Constraint{Compliance: compliance},
		Target:     target,
		Anchor:     Anchor{Object: obj, Local: o.ObjectPosition(target)},
	}
	return s.Drags.Insert(c), true
}

// Drag resolves a drag constraint handle.
func (s *Solver) Drag(h Handle) (*DragConstraint, bool) {
	return s.Drags.Get(h)
}

// RemoveDrag deletes a drag constraint.
func (s *Solver) RemoveDrag(h Handle) bool {
	return s.Drags.Remove(h)
}

// CreateObjectPinConstraint links two anchors.
func (s *Solver) CreateObjectPinConstraint(a1, a2 Anchor, compliance float64) Handle {
	return s.Pins.Insert(ObjectPinConstraint{
		Constraint: Constraint{Compliance: compliance},
		Anchor1:    a1,
		Anchor2:    a2,
	})
}

// Pin resolves a pin constraint handle.
func (s *Solver) Pin(h Handle) (*ObjectPinConstraint, bool) {
	return s.Pins.Get(h)
}

// RemovePin deletes a pin constraint.
func (s *Solver) RemovePin(h Handle) bool {
	return s.Pins.Remove(h)
}

// Update advances the simulation by dt split into SubSteps sub-steps.
func (s *Solver) Update(dt float64) {
	if s.SubSteps == 0 {
		return
	}
	subDt := dt / float64(s.SubSteps)
	for i := uint32(0); i < s.SubSteps; i++ {
		s.Objects.Each(func(_ Handle, o *Object) {
			o.Forces = r2.Scale(1/o.InvMass, s.Gravity)
			o.Update(subDt)
		})
		s.resetConstraints()
		for k := 0; k < positionIterations; k++ {
			s.solveConstraints(subDt)
		}
		s.Objects.Each(func(_ Handle, o *Object) {
			o.UpdateVelocities(subDt, s.Friction)
		})
	}
}

func (s *Solver) resetConstraints() {
	s.Drags.Each(func(_ Handle, c *DragConstraint) { c.Lambda = 0 })
	s.Pins.Each(func(_ Handle, c *ObjectPinConstraint) { c.Lambda = 0 })
}

func (s *Solver) solveConstraints(dt float64) {
	s.Drags.Each(func(_ Handle, c *DragConstraint) { c.Solve(&s.Objects, dt) })
	s.Pins.Each(func(_ Handle, c *ObjectPinConstraint) { c.Solve(&s.Objects, dt) })
}
