package dice

import (
	"strconv"
	"strings"

	apperrors "github.com/louisbranch/almanac/internal/errors"
)

// ErrInvalidNotation indicates a dice expression that cannot be parsed.
var ErrInvalidNotation = apperrors.New(apperrors.CodeDiceInvalidNotation, "dice notation is not valid")

// Spec is a parsed dice expression of the form NdM+K.
type Spec struct {
	Count    int
	Sides    int
	Modifier int
}

// ParseNotation parses expressions like "2d6", "1d4+1", "3d8-2" or a plain
// integer ("5"), which is treated as a constant roll.
func ParseNotation(notation string) (Spec, error) {
	trimmed := strings.ToLower(strings.TrimSpace(notation))
	if trimmed == "" {
		return Spec{}, invalidNotation(notation)
	}

	dIndex := strings.IndexByte(trimmed, 'd')
	if dIndex < 0 {
		value, err := strconv.Atoi(trimmed)
		if err != nil {
			return Spec{}, invalidNotation(notation)
		}
		return Spec{Modifier: value}, nil
	}

	countPart := trimmed[:dIndex]
	rest := trimmed[dIndex+1:]

	count := 1
	if countPart != "" {
		parsed, err := strconv.Atoi(countPart)
		if err != nil || parsed <= 0 {
			return Spec{}, invalidNotation(notation)
		}
		count = parsed
	}

	modifier := 0
	sidesPart := rest
	if idx := strings.IndexAny(rest, "+-"); idx >= 0 {
		sidesPart = rest[:idx]
		parsed, err := strconv.Atoi(rest[idx:])
		if err != nil {
			return Spec{}, invalidNotation(notation)
		}
		modifier = parsed
	}

	sides, err := strconv.Atoi(sidesPart)
	if err != nil || sides <= 0 {
		return Spec{}, invalidNotation(notation)
	}

	return Spec{Count: count, Sides: sides, Modifier: modifier}, nil
}

// Roll resolves the spec against the generator. Constant specs (Count == 0)
// consume no randomness.
func (s Spec) Roll(rng *RNG) int {
	total := s.Modifier
	for i := 0; i < s.Count; i++ {
		total += rng.IntN(s.Sides) + 1
	}
	return total
}

// Roll parses and resolves a dice expression in one step.
func Roll(rng *RNG, notation string) (int, error) {
	spec, err := ParseNotation(notation)
	if err != nil {
		return 0, err
	}
	return spec.Roll(rng), nil
}

func invalidNotation(notation string) error {
	return ErrInvalidNotation.WithMetadata(map[string]string{"Notation": notation})
}
