package training

import "github.com/baldhumanity/pendulum-neat/neat"

const pushCount = 1000

// Push is a horizontal force applied to the pendulum for Duration seconds, Delay
// seconds after the previous push ended.
type Push struct {
	Delay    float64
	Force    float64
	Duration float64
}

// Disturbances is a sequence of pushes.
type Disturbances struct {
	Pushes []Push
}

// Generate draws a new sequence. The first push is empty so the pendulum gets a
// quiet start.
func (d *Disturbances) Generate(rng *neat.RNG) {
	d.Pushes = make([]Push, pushCount)
	for i := 1; i < pushCount; i++ {
		p := &d.Pushes[i]
		p.Delay = rng.GetRange(2.0, 5.0)
		p.Force = rng.GetRange(15.0, 40.0)
		p.Duration = rng.GetRange(0.2, 0.5)
		if rng.Proba(0.5) {
			p.Force = -p.Force
		}
	}
}
