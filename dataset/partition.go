package dataset

import (
	"math/rand"

	"github.com/YoungY620/dsplit/report"
)

// SplitName names one of the two output partitions.
type SplitName string

const (
	Train SplitName = "train"
	Valid SplitName = "valid"
)

// Split holds the disjoint train and valid subsets of the discovered pairs.
type Split struct {
	Train []Pair
	Valid []Pair
}

// Pairs returns the subset for name.
func (s Split) Pairs(name SplitName) []Pair {
	if name == Train {
		return s.Train
	}
	return s.Valid
}

// NewRand returns the generator used for a run seeded with seed.
func NewRand(seed int64) *rand.Rand {
	return rand.New(rand.NewSource(seed))
}

// TrainCount is floor(total * ratio), truncating rather than rounding.
func TrainCount(total int, ratio float64) int {
	n := int(float64(total) * ratio)
	if n < 0 {
		return 0
	}
	if n > total {
		return total
	}
	return n
}

// Partition shuffles a copy of pairs once with rng and cuts it into a train
// prefix of TrainCount(len(pairs), ratio) and a valid suffix. pairs is not
// modified.
func Partition(pairs []Pair, ratio float64, rng *rand.Rand) Split {
	shuffled := make([]Pair, len(pairs))
	copy(shuffled, pairs)
	rng.Shuffle(len(shuffled), func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	})

	n := TrainCount(len(shuffled), ratio)
	return Split{
		Train: shuffled[:n:n],
		Valid: shuffled[n:],
	}
}

func emitPartition(sink report.Sink, s Split) {
	sink.Emit(report.Event{Kind: report.KindPartitioned, Train: len(s.Train), Valid: len(s.Valid)})
}
