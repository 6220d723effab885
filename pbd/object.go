// Package pbd implements a small 2D extended position based dynamics (XPBD) solver
// for rigid bodies linked by drag and pin constraints.
package pbd

import "gonum.org/v1/gonum/spatial/r2"

// Vec2 is a 2D vector in world or object space.
type Vec2 = r2.Vec

// Object is a rigid body made of point particles expressed in object space.
type Object struct {
	Position     Vec2
	PositionLast Vec2
	Angle        float64
	AngleLast    float64
	Density      float64

	Velocity        Vec2
	AngularVelocity float64
	Forces          Vec2

	CenterOfMass Vec2
	InvMass      float64
	InvInertia   float64

	Particles []Vec2
}

// NewObject returns a unit density object without particles.
func NewObject() Object {
	return Object{Density: 1.0, InvMass: 1.0, InvInertia: 1.0}
}

// ComputeProperties derives the center of mass, inverse mass and inverse inertia from
// the particles. Each particle weighs one unit of density.
func (o *Object) ComputeProperties() {
	if len(o.Particles) == 0 {
		return
	}
	var sum Vec2
	for _, p := range o.Particles {
		sum = r2.Add(sum, p)
	}
	mass := float64(len(o.Particles))
	o.CenterOfMass = r2.Scale(1/mass, sum)
	o.InvMass = 1.0 / (o.Density * mass)

	inertia := 0.0
	for _, p := range o.Particles {
		inertia += (1.0 + r2.Norm2(r2.Sub(p, o.CenterOfMass))) * o.Density
	}
	o.InvInertia = 1.0 / inertia
}

// GeneralizedInvMass returns the inverse mass seen by a correction along n applied at
// offset r from the position.
func (o *Object) GeneralizedInvMass(r, n Vec2) float64 {
	c := r2.Cross(r, n)
	return o.InvMass + c*o.InvInertia*c
}

// Update integrates forces and velocities over dt, remembering the previous pose.
func (o *Object) Update(dt float64) {
	o.PositionLast = o.Position
	o.Velocity = r2.Add(o.Velocity, r2.Scale(dt*o.InvMass, o.Forces))
	o.Position = r2.Add(o.Position, r2.Scale(dt, o.Velocity))

	o.AngleLast = o.Angle
	o.Angle += o.AngularVelocity * dt
}

// UpdateVelocities derives velocities from the pose change over dt, damped by friction.
func (o *Object) UpdateVelocities(dt, friction float64) {
	k := (1.0 - friction) / dt
	o.Velocity = r2.Scale(k, r2.Sub(o.Position, o.PositionLast))
	o.AngularVelocity = (o.Angle - o.AngleLast) * k
}

// ApplyPositionCorrection moves the object by the impulse p applied at offset r.
func (o *Object) ApplyPositionCorrection(p, r Vec2) {
	o.Position = r2.Add(o.Position, r2.Scale(o.InvMass, p))
	o.Angle += r2.Cross(r, p) * o.InvInertia
}

// ApplyRotationCorrection rotates the object by the angular impulse a.
func (o *Object) ApplyRotationCorrection(a float64) {
	o.Angle += a * o.InvInertia
}

// WorldPosition maps an object space point to world space.
func (o *Object) WorldPosition(local Vec2) Vec2 {
	return r2.Add(o.Position, r2.Rotate(r2.Sub(local, o.CenterOfMass), o.Angle, Vec2{}))
}

// ParticleWorldPosition returns the world position of particle i.
func (o *Object) ParticleWorldPosition(i int) Vec2 {
	return o.WorldPosition(o.Particles[i])
}

// ObjectPosition maps a world space point to object space.
func (o *Object) ObjectPosition(world Vec2) Vec2 {
	return r2.Add(o.CenterOfMass, r2.Rotate(r2.Sub(world, o.Position), -o.Angle, Vec2{}))
}
