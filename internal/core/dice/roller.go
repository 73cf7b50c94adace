package dice

import (
	"fmt"
	"strings"
	"time"

	"github.com/louisbranch/dicetower/internal/platform/id"
)

// Mode selects how an expression is rolled.
type Mode int

const (
	// ModeNone rolls the expression once.
	ModeNone Mode = iota
	// ModeAdvantage rolls twice and keeps the higher total.
	ModeAdvantage
	// ModeDisadvantage rolls twice and keeps the lower total.
	ModeDisadvantage
)

// String returns the wire name of the mode.
func (m Mode) String() string {
	switch m {
	case ModeNone:
		return "none"
	case ModeAdvantage:
		return "advantage"
	case ModeDisadvantage:
		return "disadvantage"
	default:
		return fmt.Sprintf("Mode(%d)", int(m))
	}
}

// ParseMode maps a wire name to a Mode. An empty value means ModeNone.
func ParseMode(value string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "", "none":
		return ModeNone, nil
	case "advantage":
		return ModeAdvantage, nil
	case "disadvantage":
		return ModeDisadvantage, nil
	default:
		return ModeNone, newValidationError(FieldMode, fmt.Sprintf("Unsupported roll mode %q", value))
	}
}

// MarshalText implements encoding.TextMarshaler.
func (m Mode) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (m *Mode) UnmarshalText(text []byte) error {
	parsed, err := ParseMode(string(text))
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}

// Evaluation is one complete roll of an expression.
//
// Total equals the sum of every result subtotal plus every modifier.
type Evaluation struct {
	Expression string
	Results    []RollResult
	Modifiers  []int64
	Total      int64
}

// AlternateRecord is the roll that advantage or disadvantage discarded. It
// has no alternate of its own.
type AlternateRecord struct {
	Evaluation
	Mode      Mode
	Timestamp time.Time
}

// RollRecord is the result of one top-level roll request.
//
// Alternate is set exactly when Mode is ModeAdvantage or ModeDisadvantage.
type RollRecord struct {
	ID string
	Evaluation
	Mode      Mode
	Alternate *AlternateRecord
	Timestamp time.Time
}

// Option configures a Roller.
type Option func(*Roller)

// WithClock overrides the timestamp source.
func WithClock(now func() time.Time) Option {
	return func(r *Roller) {
		if now != nil {
			r.now = now
		}
	}
}

// WithIDGenerator overrides the record identifier source.
func WithIDGenerator(newID func() (string, error)) Option {
	return func(r *Roller) {
		if newID != nil {
			r.newID = newID
		}
	}
}

// Roller parses, rolls, and aggregates dice expressions.
//
// A Roller holds no per-request state and is safe for concurrent use when
// its Source is.
type Roller struct {
	source Source
	now    func() time.Time
	newID  func() (string, error)
}

// NewRoller returns a Roller drawing from src.
func NewRoller(src Source, opts ...Option) *Roller {
	roller := &Roller{
		source: src,
		now:    time.Now,
		newID:  id.NewID,
	}
	for _, opt := range opts {
		opt(roller)
	}
	return roller
}

// Parse validates raw without rolling it.
func (r *Roller) Parse(raw string) (ParsedExpression, error) {
	return Parse(raw)
}

// Roll evaluates raw in the given mode.
//
// # Errors
//
//   - *ValidationError when the expression is invalid, carrying every
//     parser message, or when advantage/disadvantage is requested for an
//     expression without exactly one dice group.
//   - *ResourceLimitError when a group exceeds MaxCount or MaxSides.
//   - *SourceError when the random source fails.
func (r *Roller) Roll(raw string, mode Mode) (RollRecord, error) {
	if r == nil || r.source == nil {
		return RollRecord{}, &SourceError{Err: ErrMissingSource}
	}

	expr, err := Parse(raw)
	if err != nil {
		return RollRecord{}, err
	}
	if !expr.Valid {
		return RollRecord{}, &ValidationError{Errors: expr.Errors}
	}

	expression := strings.TrimSpace(raw)
	switch mode {
	case ModeNone:
		eval, err := r.evaluate(expression, expr)
		if err != nil {
			return RollRecord{}, err
		}
		return r.record(eval, mode, nil)
	case ModeAdvantage, ModeDisadvantage:
		if len(expr.DiceGroups) != 1 {
			return RollRecord{}, newValidationError(FieldMode, MsgSingleGroupOnly)
		}
		first, err := r.evaluate(expression, expr)
		if err != nil {
			return RollRecord{}, err
		}
		second, err := r.evaluate(expression, expr)
		if err != nil {
			return RollRecord{}, err
		}
		kept, discarded := selectEvaluation(mode, first, second)
		return r.record(kept, mode, &AlternateRecord{
			Evaluation: discarded,
			Mode:       mode,
			Timestamp:  r.now(),
		})
	default:
		return RollRecord{}, newValidationError(FieldMode, fmt.Sprintf("Unsupported roll mode %q", mode.String()))
	}
}

// selectEvaluation returns the kept and discarded evaluations. Ties keep the
// first roll.
func selectEvaluation(mode Mode, first, second Evaluation) (Evaluation, Evaluation) {
	switch {
	case mode == ModeAdvantage && second.Total > first.Total:
		return second, first
	case mode == ModeDisadvantage && second.Total < first.Total:
		return second, first
	default:
		return first, second
	}
}

// evaluate rolls every group of a valid expression in order.
func (r *Roller) evaluate(expression string, expr ParsedExpression) (Evaluation, error) {
	results := make([]RollResult, 0, len(expr.DiceGroups))
	var total int64
	for _, group := range expr.DiceGroups {
		result, err := RollGroup(r.source, group)
		if err != nil {
			return Evaluation{}, err
		}
		results = append(results, result)
		total += result.Subtotal
	}

	modifiers := append([]int64(nil), expr.Modifiers...)
	total += expr.ModifierTotal()

	return Evaluation{
		Expression: expression,
		Results:    results,
		Modifiers:  modifiers,
		Total:      total,
	}, nil
}

func (r *Roller) record(eval Evaluation, mode Mode, alternate *AlternateRecord) (RollRecord, error) {
	recordID, err := r.newID()
	if err != nil {
		return RollRecord{}, fmt.Errorf("generate roll id: %w", err)
	}
	return RollRecord{
		ID:         recordID,
		Evaluation: eval,
		Mode:       mode,
		Alternate:  alternate,
		Timestamp:  r.now(),
	}, nil
}
