package pbd

import "gonum.org/v1/gonum/spatial/r2"

// DefaultCompliance is the compliance of a constraint created without an explicit value.
const DefaultCompliance = 0.0001

// Constraint holds the XPBD state shared by all constraint kinds.
type Constraint struct {
	Lambda     float64
	Compliance float64
	Force      float64 // Lambda / dt² after the last solve
}

// Anchor is a point fixed in the frame of an object.
type Anchor struct {
	Object Handle
	Local  Vec2
}

// ParticleAnchor returns an anchor on particle i of obj.
func ParticleAnchor(h Handle, obj *Object, i int) Anchor {
	return Anchor{Object: h, Local: obj.Particles[i]}
}

// DragConstraint pulls an anchor towards a world space target.
type DragConstraint struct {
	Constraint
	Target Vec2
	Anchor Anchor
}

// ObjectPinConstraint keeps two anchors on different objects together.
type ObjectPinConstraint struct {
	Constraint
	Anchor1 Anchor
	Anchor2 Anchor
}

// Solve moves the anchor towards the target. The step does not subtract the
// accumulated lambda and lambda is left untouched, so Force stays zero.
func (c *DragConstraint) Solve(objects *Pool[Object], dt float64) {
	obj, ok := objects.Get(c.Anchor.Object)
	if !ok {
		return
	}
	pa := obj.WorldPosition(c.Anchor.Local)
	r1 := r2.Sub(pa, obj.Position)
	v := r2.Sub(c.Target, pa)
	d := r2.Norm(v)
	if d == 0 {
		return
	}
	n := r2.Scale(1/d, v)
	w1 := obj.GeneralizedInvMass(r1, n)
	alpha := c.Compliance / (dt * dt)
	deltaLambda := d / (w1 + alpha)
	obj.ApplyPositionCorrection(r2.Scale(deltaLambda, n), r1)
	c.Force = c.Lambda / (dt * dt)
}

// Solve moves both anchors towards each other.
func (c *ObjectPinConstraint) Solve(objects *Pool[Object], dt float64) {
	obj1, ok1 := objects.Get(c.Anchor1.Object)
	obj2, ok2 := objects.Get(c.Anchor2.Object)
	if !ok1 || !ok2 {
		return
	}
	p1 := obj1.WorldPosition(c.Anchor1.Local)
	p2 := obj2.WorldPosition(c.Anchor2.Local)
	ra := r2.Sub(p1, obj1.Position)
	rb := r2.Sub(p2, obj2.Position)
	v := r2.Sub(p1, p2)
	d := r2.Norm(v)
	if d == 0 {
		return
	}
	n := r2.Scale(1/d, v)
	w1 := obj1.GeneralizedInvMass(ra, n)
	w2 := obj2.GeneralizedInvMass(rb, r2.Scale(-1, n))
	alpha := c.Compliance / (dt * dt)
	deltaLambda := (d - alpha*c.Lambda) / (w1 + w2 + alpha)
	c.Lambda += deltaLambda

	p := r2.Scale(deltaLambda, n)
	obj1.ApplyPositionCorrection(r2.Scale(-1, p), ra)
	obj2.ApplyPositionCorrection(p, rb)
	c.Force = c.Lambda / (dt * dt)
}
