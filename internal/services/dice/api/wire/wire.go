// Package wire defines the JSON shapes dice transports share.
package wire

import (
	"strconv"
	"strings"
	"time"

	"github.com/louisbranch/dicetower/internal/core/dice"
)

// RollRequest asks for one roll.
type RollRequest struct {
	Expression string `json:"expression"`
	Mode       string `json:"mode,omitempty"`
}

// ParseRequest asks to validate an expression without rolling it.
type ParseRequest struct {
	Expression string `json:"expression"`
}

// RollResult is one rolled dice group.
type RollResult struct {
	Notation string `json:"notation"`
	Rolls    []int  `json:"rolls"`
	Subtotal int64  `json:"subtotal"`
}

// Alternate is the roll discarded by advantage or disadvantage.
type Alternate struct {
	Expression string       `json:"expression"`
	Results    []RollResult `json:"results"`
	Modifiers  []int64      `json:"modifiers"`
	Total      int64        `json:"total"`
	Mode       string       `json:"mode"`
	Timestamp  time.Time    `json:"timestamp"`
}

// RollRecord is the outcome of a roll request.
type RollRecord struct {
	ID         string       `json:"id"`
	Expression string       `json:"expression"`
	Results    []RollResult `json:"results"`
	Modifiers  []int64      `json:"modifiers"`
	Total      int64        `json:"total"`
	Mode       string       `json:"mode"`
	Alternate  *Alternate   `json:"alternate,omitempty"`
	Timestamp  time.Time    `json:"timestamp"`
}

// DiceGroup is one accepted "NdM" group.
type DiceGroup struct {
	Count    int    `json:"count"`
	Sides    int    `json:"sides"`
	Notation string `json:"notation"`
}

// FieldError is one validation problem.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ParseResult is the outcome of a parse request.
type ParseResult struct {
	Original   string       `json:"original"`
	DiceGroups []DiceGroup  `json:"dice_groups"`
	Modifiers  []int64      `json:"modifiers"`
	Valid      bool         `json:"valid"`
	Errors     []FieldError `json:"errors"`
}

// FromRecord converts a core record.
func FromRecord(record dice.RollRecord) RollRecord {
	out := RollRecord{
		ID:         record.ID,
		Expression: record.Expression,
		Results:    fromResults(record.Results),
		Modifiers:  nonNilModifiers(record.Modifiers),
		Total:      record.Total,
		Mode:       record.Mode.String(),
		Timestamp:  record.Timestamp.UTC(),
	}
	if alt := record.Alternate; alt != nil {
		out.Alternate = &Alternate{
			Expression: alt.Expression,
			Results:    fromResults(alt.Results),
			Modifiers:  nonNilModifiers(alt.Modifiers),
			Total:      alt.Total,
			Mode:       alt.Mode.String(),
			Timestamp:  alt.Timestamp.UTC(),
		}
	}
	return out
}

// FromParsed converts a core parse result.
func FromParsed(parsed dice.ParsedExpression) ParseResult {
	out := ParseResult{
		Original:   parsed.Original,
		DiceGroups: make([]DiceGroup, 0, len(parsed.DiceGroups)),
		Modifiers:  nonNilModifiers(parsed.Modifiers),
		Valid:      parsed.Valid,
		Errors:     make([]FieldError, 0, len(parsed.Errors)),
	}
	for _, group := range parsed.DiceGroups {
		out.DiceGroups = append(out.DiceGroups, DiceGroup{
			Count:    group.Count,
			Sides:    group.Sides,
			Notation: group.Notation(),
		})
	}
	for _, fieldErr := range parsed.Errors {
		out.Errors = append(out.Errors, FieldError{Field: fieldErr.Field, Message: fieldErr.Message})
	}
	return out
}

func fromResults(results []dice.RollResult) []RollResult {
	out := make([]RollResult, 0, len(results))
	for _, result := range results {
		out = append(out, RollResult{
			Notation: result.Notation,
			Rolls:    append([]int{}, result.Rolls...),
			Subtotal: result.Subtotal,
		})
	}
	return out
}

func nonNilModifiers(modifiers []int64) []int64 {
	return append([]int64{}, modifiers...)
}

// AuditLine renders a record as a one-line audit trail, e.g.
// "2d6+3 → [4 5] +3 = 12". Advantage and disadvantage rolls append the
// discarded evaluation.
func AuditLine(record RollRecord) string {
	var b strings.Builder
	b.WriteString(record.Expression)
	b.WriteString(" → ")
	writeEvaluation(&b, record.Results, record.Modifiers, record.Total)
	if alt := record.Alternate; alt != nil {
		b.WriteString(" (")
		b.WriteString(record.Mode)
		b.WriteString(", discarded ")
		writeEvaluation(&b, alt.Results, alt.Modifiers, alt.Total)
		b.WriteString(")")
	}
	return b.String()
}

func writeEvaluation(b *strings.Builder, results []RollResult, modifiers []int64, total int64) {
	for i, result := range results {
		if i > 0 {
			b.WriteByte(' ')
		}
		b.WriteByte('[')
		for j, roll := range result.Rolls {
			if j > 0 {
				b.WriteByte(' ')
			}
			b.WriteString(strconv.Itoa(roll))
		}
		b.WriteByte(']')
	}
	for _, modifier := range modifiers {
		b.WriteByte(' ')
		if modifier >= 0 {
			b.WriteByte('+')
		}
		b.WriteString(strconv.FormatInt(modifier, 10))
	}
	b.WriteString(" = ")
	b.WriteString(strconv.FormatInt(total, 10))
}
