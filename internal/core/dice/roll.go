package dice

import (
	"errors"
	"strconv"
)

// RollResult captures the dice drawn for one group.
//
// len(Rolls) equals the group count, every value lies in [1, sides], and
// Subtotal is the exact sum of Rolls.
type RollResult struct {
	Notation string
	Rolls    []int
	Subtotal int64
}

// RollGroup draws group.Count values in [1, group.Sides] from src, in order.
//
// The notation is rebuilt from the group, so "2D6" is reported as "2d6".
func RollGroup(src Source, group DiceGroup) (RollResult, error) {
	if src == nil {
		return RollResult{}, &SourceError{Err: ErrMissingSource}
	}
	if group.Count <= 0 || group.Sides <= 0 {
		return RollResult{}, ErrInvalidDiceSpec
	}
	if group.Count > MaxCount {
		return RollResult{}, &ResourceLimitError{Limit: LimitCount, Max: MaxCount, Actual: strconv.Itoa(group.Count), Token: group.Notation()}
	}
	if group.Sides > MaxSides {
		return RollResult{}, &ResourceLimitError{Limit: LimitSides, Max: MaxSides, Actual: strconv.Itoa(group.Sides), Token: group.Notation()}
	}

	rolls := make([]int, group.Count)
	var subtotal int64
	for i := range rolls {
		value, err := src.Draw(1, group.Sides)
		if err != nil {
			return RollResult{}, asSourceError(err, 1, group.Sides)
		}
		if value < 1 || value > group.Sides {
			return RollResult{}, &SourceError{Value: value, Low: 1, High: group.Sides}
		}
		rolls[i] = value
		subtotal += int64(value)
	}

	return RollResult{
		Notation: group.Notation(),
		Rolls:    rolls,
		Subtotal: subtotal,
	}, nil
}

// asSourceError folds any draw failure into the fatal error kind.
func asSourceError(err error, low, high int) error {
	var sourceErr *SourceError
	if errors.As(err, &sourceErr) {
		return err
	}
	return &SourceError{Err: err, Low: low, High: high}
}
