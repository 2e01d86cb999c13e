// Package rollout drives episodes through the environment on behalf of a
// policy, collecting per-episode results, updating metrics, and emitting
// step telemetry. The learning algorithm itself lives outside this
// repository; any caller implementing Policy can plug in.
package rollout

import (
	"math/rand"

	"stocksim/internal/env"
)

// Policy chooses an action for each observation.
type Policy interface {
	// Name returns the policy name for logs and journals.
	Name() string

	// Act picks an action for the given observation.
	Act(obs env.Observation) env.Action
}

// RandomPolicy picks uniformly random actions. Used for smoke rollouts and
// as a baseline.
type RandomPolicy struct {
	rng *rand.Rand
}

// NewRandomPolicy creates a seeded random policy. Identical seeds replay
// identical action sequences.
func NewRandomPolicy(seed int64) *RandomPolicy {
	return &RandomPolicy{rng: rand.New(rand.NewSource(seed))}
}

func (p *RandomPolicy) Name() string { return "random" }

func (p *RandomPolicy) Act(env.Observation) env.Action {
	return env.Action(p.rng.Intn(env.NumActions))
}
