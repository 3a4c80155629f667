package service

import (
	"math/rand/v2"
	"strings"
)

const (
	StrategyUniform       = "uniform"
	StrategySpendWeighted = "spend_weighted"
)

// SelectionStrategy picks the winner among confirmed candidates when a
// prefetched slot conflict rules out the ranked choice.
type SelectionStrategy interface {
	Name() string
	Pick(candidates []Candidate) (*Candidate, bool)
}

// UniformStrategy gives every candidate the same chance.
type UniformStrategy struct {
	rnd *rand.Rand
}

func NewUniformStrategy(rnd *rand.Rand) *UniformStrategy {
	return &UniformStrategy{rnd: rnd}
}

func (s *UniformStrategy) Name() string { return StrategyUniform }

func (s *UniformStrategy) Pick(candidates []Candidate) (*Candidate, bool) {
	if len(candidates) == 0 {
		return nil, false
	}
	c := candidates[s.rnd.IntN(len(candidates))]
	return &c, true
}

// SpendWeighted draws with probability proportional to account spend and
// falls back to uniform when nobody has a positive spend.
type SpendWeighted struct {
	rnd *rand.Rand
}

func NewSpendWeighted(rnd *rand.Rand) *SpendWeighted {
	return &SpendWeighted{rnd: rnd}
}

func (s *SpendWeighted) Name() string { return StrategySpendWeighted }

func (s *SpendWeighted) Pick(candidates []Candidate) (*Candidate, bool) {
	if len(candidates) == 0 {
		return nil, false
	}

	weights := make([]float64, len(candidates))
	var total float64
	for i := range candidates {
		if w := candidates[i].Spend(); w > 0 {
			weights[i] = w
			total += w
		}
	}
	if total == 0 {
		c := candidates[s.rnd.IntN(len(candidates))]
		return &c, true
	}

	target := s.rnd.Float64() * total
	for i, w := range weights {
		if w == 0 {
			continue
		}
		target -= w
		if target < 0 {
			c := candidates[i]
			return &c, true
		}
	}
	// rounding left target at or just above zero
	for i := len(weights) - 1; i >= 0; i-- {
		if weights[i] > 0 {
			c := candidates[i]
			return &c, true
		}
	}
	return nil, false
}

// NewStrategy builds the named strategy. Unknown names get uniform selection.
// A nil rnd uses a randomly seeded source.
func NewStrategy(name string, rnd *rand.Rand) SelectionStrategy {
	if rnd == nil {
		rnd = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	switch strings.ToLower(strings.TrimSpace(name)) {
	case StrategySpendWeighted:
		return NewSpendWeighted(rnd)
	default:
		return NewUniformStrategy(rnd)
	}
}
