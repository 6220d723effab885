package training

import (
	"math"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/baldhumanity/pendulum-neat/neat"
	"github.com/baldhumanity/pendulum-neat/neat/nn"
	"github.com/baldhumanity/pendulum-neat/pbd"
)

// ScoreFunc rewards one frame spent with the tip above the threshold.
type ScoreFunc func(posX, outSum, distSum float64) float64

// DefaultScore favours calm controllers that keep the cart near the middle of the rail.
func DefaultScore(posX, outSum, distSum float64) float64 {
	return 1.0 / (1.0 + outSum*0.5) * math.Abs(1.0-math.Abs(posX))
}

// Scene runs one pendulum episode driven by a compiled network.
type Scene struct {
	Sim           neat.SimulationConfig
	Configuration IterationConfiguration

	Agent   *Agent
	Network *nn.Network

	// Disturbances is the push sequence replayed when EnableDisturbance is set.
	Disturbances          *Disturbances
	EnableDisturbance     bool
	DisturbanceFreezeTime float64

	EnableAI   bool
	FreezeTime float64
	ScoreFunc  ScoreFunc

	CurrentTime     float64
	CurrentVelocity float64
	Score           float64
	OutSum          float64
	DistSum         float64
	LastOut         float64

	disturbanceTime float64
	disturbance     int
	generator       nn.Generator
	input           []float64
}

// NewScene returns a scene with the interactive defaults: AI on, two seconds of
// freeze time and no disturbances.
func NewScene(sim neat.SimulationConfig) *Scene {
	return &Scene{
		Sim:        sim,
		EnableAI:   true,
		FreezeTime: 2.0,
		ScoreFunc:  DefaultScore,
	}
}

// Initialize resets the episode, rebuilds the pendulum with cfg and compiles g.
// A nil genome leaves the scene without a controller.
func (s *Scene) Initialize(cfg IterationConfiguration, g *neat.Genome) {
	s.CurrentTime = 0
	s.CurrentVelocity = 0
	s.Score = 0
	s.OutSum = 0
	s.DistSum = 0
	s.LastOut = 0
	s.disturbanceTime = 0
	s.disturbance = 0
	s.Configuration = cfg

	s.Agent = NewAgent(s.Sim, cfg.Compliance)
	s.Agent.Solver.Gravity = pbd.Vec2{Y: cfg.Gravity}
	s.Agent.Solver.Friction = cfg.Friction
	s.Agent.Solver.SubSteps = cfg.SolverSubSteps

	s.Network = nil
	if g != nil {
		s.Network = s.generator.Generate(g)
	}
	s.EnableAI = true
}

// Update advances the scene by dt, split into the configured task sub-steps.
func (s *Scene) Update(dt float64) {
	steps := max(s.Configuration.TaskSubSteps, 1)
	subDt := dt / float64(steps)
	for i := uint32(0); i < steps; i++ {
		if s.CurrentTime >= s.FreezeTime {
			s.updateAI(subDt)
			s.Agent.Update(subDt)
		}
		if s.EnableDisturbance && s.CurrentTime >= s.FreezeTime+s.DisturbanceFreezeTime {
			s.disturbanceTime += subDt
			// Pushes are scaled by the full frame time.
			s.updateDisturbances(dt)
		}
		s.CurrentTime += subDt
	}
}

// Output returns the last network output, or zero without a controller.
func (s *Scene) Output() float64 {
	if s.Network == nil || len(s.Network.Output) == 0 {
		return 0
	}
	return s.Network.Output[0]
}

// NormalizedPosition returns the cart position on the rail in [-1, 1].
func (s *Scene) NormalizedPosition() float64 {
	w, _ := s.Sim.WorldSize()
	return (s.Agent.BasePosition().X - w*0.5) / (s.Sim.SliderLength * 0.5)
}

// ScoreThreshold returns the height the tip has to rise above to score.
func (s *Scene) ScoreThreshold() float64 {
	_, h := s.Sim.WorldSize()
	height := (float64(s.Sim.SegmentsCount) - s.Sim.ScoreMargin) * s.Sim.SegmentSize
	return h*0.5 - height
}

func (s *Scene) updateAI(dt float64) {
	if s.EnableAI && s.Network != nil {
		posX := s.NormalizedPosition()
		dir1 := s.Agent.Direction(0)
		dir2 := s.Agent.Direction(1)
		w1 := s.Agent.AngularVelocity(0) * dt
		w2 := s.Agent.AngularVelocity(1) * dt
		dot := r2.Dot(dir1, dir2)

		if s.Sim.ControlType == neat.ControlAcceleration {
			s.input = append(s.input[:0], posX, s.CurrentVelocity/s.Configuration.MaxSpeed,
				dir1.X, dir1.Y, w1, dir2.X, dir2.Y, w2, dot)
			if s.Network.Execute(s.input) {
				s.updateVelocity(s.Output() * s.Configuration.MaxAccel * dt)
			}
		} else {
			s.input = append(s.input[:0], posX, dir1.X, dir1.Y, w1, dir2.X, dir2.Y, w2, dot)
			if s.Network.Execute(s.input) {
				s.CurrentVelocity = s.Output() * s.Configuration.MaxSpeed
			}
		}
		s.updateCartPosition(dt)
	}

	out := s.Output()
	delta := math.Abs(out - s.LastOut)
	s.LastOut = out
	s.OutSum += delta
	s.DistSum += math.Abs(out)

	if s.ScoreFunc != nil && s.Agent.TipPosition().Y < s.ScoreThreshold() {
		s.Score += dt * s.ScoreFunc(s.NormalizedPosition(), s.OutSum, s.DistSum)
	}
}

func (s *Scene) updateVelocity(dv float64) {
	maxSpeed := s.Configuration.MaxSpeed
	s.CurrentVelocity = math.Max(-maxSpeed, math.Min(maxSpeed, s.CurrentVelocity+dv))
}

// updateCartPosition moves the cart target along the rail. Reaching either end
// stops the cart.
func (s *Scene) updateCartPosition(dt float64) {
	cart := s.Agent.CartConstraint()
	if cart == nil {
		return
	}
	w, _ := s.Sim.WorldSize()
	half := s.Sim.SliderLength * 0.5
	lo, hi := w*0.5-half, w*0.5+half

	cart.Target.X += s.CurrentVelocity * dt
	if cart.Target.X < lo {
		cart.Target.X = lo
		s.CurrentVelocity = 0
	} else if cart.Target.X > hi {
		cart.Target.X = hi
		s.CurrentVelocity = 0
	}
}

func (s *Scene) updateDisturbances(dt float64) {
	if s.Disturbances == nil || s.disturbance >= len(s.Disturbances.Pushes) {
		return
	}
	push := s.Disturbances.Pushes[s.disturbance]
	if s.disturbanceTime <= push.Delay {
		return
	}
	s.Agent.ApplyDisturbance(pbd.Vec2{X: push.Force * dt})
	if s.disturbanceTime-push.Delay > push.Duration {
		s.disturbance++
		s.disturbanceTime = 0
	}
}

// Disturbance returns the index of the current push.
func (s *Scene) Disturbance() int {
	return s.disturbance
}
