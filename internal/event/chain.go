package event

import (
	"github.com/louisbranch/almanac/internal/dice"
	"github.com/louisbranch/almanac/internal/duration"
	apperrors "github.com/louisbranch/almanac/internal/errors"
)

// ErrBeforeCheckpoint indicates a chain query for a day earlier than the
// persisted vector. Chain progression is forward-only; callers that need
// history must re-derive from the original seed.
var ErrBeforeCheckpoint = apperrors.New(apperrors.CodeChainBeforeCheckpoint, "chain events cannot be evaluated before their persisted checkpoint")

// ChainVector is the one durable piece of chain-event state. Re-deriving
// activity for any day >= EnteredDay from this vector reproduces
// identical results without re-rolling history.
type ChainVector struct {
	StateName    string
	EnteredDay   int
	DurationDays int
	// EndDay is always EnteredDay + DurationDays - 1.
	EndDay   int
	RNGState uint64
}

// InitChain derives the day-zero vector for a chain spec: the named
// initial state if given, otherwise one weighted draw.
func InitChain(spec *ChainSpec, units duration.Units) (ChainVector, error) {
	rng := dice.NewRNG(spec.Seed)

	var state ChainState
	if spec.InitialState != "" {
		named, ok := spec.State(spec.InitialState)
		if !ok {
			return ChainVector{}, apperrors.Newf(apperrors.CodeEventUnknownState, "chain has no state named %q", spec.InitialState)
		}
		state = named
	} else {
		state = drawState(spec, rng)
	}

	days, err := duration.ParseDays(state.Duration, units, rng)
	if err != nil {
		return ChainVector{}, err
	}
	return ChainVector{
		StateName:    state.Name,
		EnteredDay:   0,
		DurationDays: days,
		EndDay:       days - 1,
		RNGState:     rng.State(),
	}, nil
}

// AdvanceChain rolls the vector forward until it covers the query day.
// Days before the vector's entry day are unsupported and return
// ErrBeforeCheckpoint. The input vector is not mutated.
func AdvanceChain(spec *ChainSpec, vec ChainVector, day int, units duration.Units) (ChainVector, error) {
	if day < vec.EnteredDay {
		return ChainVector{}, ErrBeforeCheckpoint
	}
	for day > vec.EndDay {
		rng := dice.Restore(vec.RNGState)
		state := drawState(spec, rng)
		days, err := duration.ParseDays(state.Duration, units, rng)
		if err != nil {
			return ChainVector{}, err
		}
		entered := vec.EndDay + 1
		vec = ChainVector{
			StateName:    state.Name,
			EnteredDay:   entered,
			DurationDays: days,
			EndDay:       entered + days - 1,
			RNGState:     rng.State(),
		}
	}
	return vec, nil
}

// ChainVectorAt replays a chain from its seed to the vector covering the
// given day. This is the recovery path when no checkpoint is at hand.
func ChainVectorAt(spec *ChainSpec, day int, units duration.Units) (ChainVector, error) {
	vec, err := InitChain(spec, units)
	if err != nil {
		return ChainVector{}, err
	}
	if day < 0 {
		return ChainVector{}, ErrBeforeCheckpoint
	}
	return AdvanceChain(spec, vec, day, units)
}

// drawState picks a state by cumulative weight. Zero-weight states are
// excluded. The spec is validated to hold at least one selectable state.
func drawState(spec *ChainSpec, rng *dice.RNG) ChainState {
	total := 0
	for _, state := range spec.States {
		if state.Weight > 0 {
			total += state.Weight
		}
	}
	draw := rng.IntN(total)
	for _, state := range spec.States {
		if state.Weight <= 0 {
			continue
		}
		if draw < state.Weight {
			return state
		}
		draw -= state.Weight
	}
	// Unreachable: draw < total by construction.
	return spec.States[len(spec.States)-1]
}
