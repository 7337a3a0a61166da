package calculation

import (
	"fmt"
	"math/rand/v2"
)

// pcgStream is the fixed PCG increment; only the seed varies between runs.
const pcgStream = 0x9e3779b97f4a7c15

// Sampler draws bootstrap indices from a single seeded generator. All draws
// for a run happen in one ordered pass so a fixed seed reproduces the same
// return matrices regardless of how paths are later parallelised.
type Sampler struct {
	seed int64
	rng  *rand.Rand
}

// NewSampler seeds a sampler. A nil seed takes one from the seed provider.
func NewSampler(seed *int64) *Sampler {
	s := seedFunc()
	if seed != nil {
		s = *seed
	}
	return &Sampler{seed: s, rng: rand.New(rand.NewPCG(uint64(s), pcgStream))}
}

// Seed returns the seed actually used.
func (s *Sampler) Seed() int64 { return s.seed }

// SampleIndices draws a paths x months matrix of history indices uniformly
// from [0, historyLen), with replacement.
func (s *Sampler) SampleIndices(historyLen, paths, months int) ([][]int, error) {
	if historyLen <= 0 {
		return nil, fmt.Errorf("%w: cannot sample from an empty history", ErrInputInvalid)
	}
	if paths < 1 || months < 1 {
		return nil, fmt.Errorf("%w: need at least one path and one month (got %d x %d)", ErrInputInvalid, paths, months)
	}
	idx := make([][]int, paths)
	for i := range idx {
		row := make([]int, months)
		for t := range row {
			row[t] = s.rng.IntN(historyLen)
		}
		idx[i] = row
	}
	return idx, nil
}

// Bootstrap resamples a single return history into a paths x months matrix.
func (s *Sampler) Bootstrap(history []float64, paths, months int) ([][]float64, error) {
	idx, err := s.SampleIndices(len(history), paths, months)
	if err != nil {
		return nil, err
	}
	return gather(history, idx), nil
}

// JointBootstrap resamples equity and bond histories with one shared index
// matrix so each simulated month takes both returns from the same historical
// month. The histories must be aligned and at least MinJointHistoryMonths long.
func (s *Sampler) JointBootstrap(equity, bond []float64, paths, months int) ([][]float64, [][]float64, error) {
	if len(equity) != len(bond) {
		return nil, nil, fmt.Errorf("%w: equity and bond histories are not aligned (%d vs %d months)", ErrInputInvalid, len(equity), len(bond))
	}
	if len(equity) < MinJointHistoryMonths {
		return nil, nil, fmt.Errorf("%w: insufficient overlapping history: %d months, need %d", ErrInputInvalid, len(equity), MinJointHistoryMonths)
	}
	idx, err := s.SampleIndices(len(equity), paths, months)
	if err != nil {
		return nil, nil, err
	}
	return gather(equity, idx), gather(bond, idx), nil
}

func gather(history []float64, idx [][]int) [][]float64 {
	out := make([][]float64, len(idx))
	for i, row := range idx {
		vals := make([]float64, len(row))
		for t, k := range row {
			vals[t] = history[k]
		}
		out[i] = vals
	}
	return out
}

// ConstantReturns builds a paths x months matrix holding the same return.
func ConstantReturns(r float64, paths, months int) [][]float64 {
	out := make([][]float64, paths)
	for i := range out {
		row := make([]float64, months)
		for t := range row {
			row[t] = r
		}
		out[i] = row
	}
	return out
}
