package dice

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

const (
	// MaxCount is the largest number of dice allowed in one group.
	MaxCount = 1000
	// MaxSides is the largest number of sides allowed on one die.
	MaxSides = 10000

	// maxModifierMagnitude keeps the modifier sum far enough from int64
	// bounds that adding dice subtotals cannot overflow.
	maxModifierMagnitude = math.MaxInt64 / 2
)

// Validation messages returned in ParsedExpression.Errors.
const (
	MsgEmptyExpression   = "Expression cannot be empty"
	MsgInvalidFormat     = "Invalid dice notation format"
	MsgMissingDiceGroup  = "Expression must contain at least one dice group"
	MsgSingleGroupOnly   = "Advantage/disadvantage only supports single dice group"
	msgCountTooSmall     = "Dice count must be at least 1 in %q"
	msgSidesTooSmall     = "Dice sides must be at least 1 in %q"
	msgUnrecognizedToken = "Unrecognized token %q"
	msgModifierRange     = "Modifier %q is out of range"
	msgModifierTotal     = "Modifier total is out of range"
)

// Field names used in FieldError.
const (
	FieldExpression = "expression"
	FieldCount      = "count"
	FieldSides      = "sides"
	FieldModifier   = "modifier"
	FieldMode       = "mode"
)

// DiceGroup is one parsed NdX term.
type DiceGroup struct {
	Count int
	Sides int
}

// Notation renders the group in canonical "NdX" form.
func (g DiceGroup) Notation() string {
	return strconv.Itoa(g.Count) + "d" + strconv.Itoa(g.Sides)
}

// ParsedExpression is the structured form of a notation string.
//
// Valid is true only when Errors is empty and DiceGroups is non-empty.
type ParsedExpression struct {
	Original   string
	DiceGroups []DiceGroup
	Modifiers  []int64
	Valid      bool
	Errors     []FieldError
}

// ModifierTotal returns the sum of all modifiers.
func (p ParsedExpression) ModifierTotal() int64 {
	var total int64
	for _, modifier := range p.Modifiers {
		total += modifier
	}
	return total
}

func (p *ParsedExpression) addError(field, message string) {
	p.Errors = append(p.Errors, FieldError{Field: field, Message: message})
}

// Normalize trims, collapses internal whitespace, and lower-cases raw.
func Normalize(raw string) string {
	return strings.ToLower(strings.Join(strings.Fields(raw), " "))
}

// Parse converts raw notation into a ParsedExpression.
//
// Malformed input never produces an error; it yields an invalid expression
// whose Errors list every problem. A dice group whose count exceeds MaxCount
// or whose sides exceed MaxSides stops parsing and returns a
// *ResourceLimitError.
func Parse(raw string) (ParsedExpression, error) {
	expr := ParsedExpression{Original: raw}

	normalized := Normalize(raw)
	if normalized == "" {
		expr.addError(FieldExpression, MsgEmptyExpression)
		return expr, nil
	}

	var (
		diceTokens    int
		invalidTokens []InvalidToken
		modifierSum   int64
	)
	for _, token := range Tokenize(normalized) {
		switch t := token.(type) {
		case DiceToken:
			diceTokens++
			group, ok, err := parseDiceToken(&expr, t)
			if err != nil {
				return expr, err
			}
			if ok {
				expr.DiceGroups = append(expr.DiceGroups, group)
			}
		case ModifierToken:
			value, err := strconv.ParseInt(t.Value, 10, 64)
			if err != nil || value > maxModifierMagnitude || value < -maxModifierMagnitude {
				expr.addError(FieldModifier, fmt.Sprintf(msgModifierRange, t.Raw))
				continue
			}
			modifierSum += value
			if modifierSum > maxModifierMagnitude || modifierSum < -maxModifierMagnitude {
				expr.addError(FieldModifier, msgModifierTotal)
				modifierSum -= value
				continue
			}
			expr.Modifiers = append(expr.Modifiers, value)
		case InvalidToken:
			invalidTokens = append(invalidTokens, t)
		}
	}

	switch {
	case diceTokens == 0 && len(invalidTokens) > 0:
		expr.addError(FieldExpression, MsgInvalidFormat)
	case len(invalidTokens) > 0:
		for _, t := range invalidTokens {
			expr.addError(FieldExpression, fmt.Sprintf(msgUnrecognizedToken, t.Raw))
		}
	case diceTokens == 0:
		expr.addError(FieldExpression, MsgMissingDiceGroup)
	}

	expr.Valid = len(expr.Errors) == 0 && len(expr.DiceGroups) > 0
	return expr, nil
}

// parseDiceToken validates one dice token. Ceilings are checked before the
// positivity rules so an oversized group always short-circuits.
func parseDiceToken(expr *ParsedExpression, t DiceToken) (DiceGroup, bool, error) {
	count, countOK := parseBoundedLiteral(t.Count, MaxCount)
	if !countOK {
		return DiceGroup{}, false, &ResourceLimitError{Limit: LimitCount, Max: MaxCount, Actual: strings.TrimPrefix(t.Count, "+"), Token: t.Raw}
	}
	sides, sidesOK := parseBoundedLiteral(t.Sides, MaxSides)
	if !sidesOK {
		return DiceGroup{}, false, &ResourceLimitError{Limit: LimitSides, Max: MaxSides, Actual: strings.TrimPrefix(t.Sides, "+"), Token: t.Raw}
	}

	ok := true
	if count < 1 {
		expr.addError(FieldCount, fmt.Sprintf(msgCountTooSmall, t.Raw))
		ok = false
	}
	if sides < 1 {
		expr.addError(FieldSides, fmt.Sprintf(msgSidesTooSmall, t.Raw))
		ok = false
	}
	return DiceGroup{Count: count, Sides: sides}, ok, nil
}

// parseBoundedLiteral parses a signed decimal literal and reports false when
// it is above limit. Literals too negative to represent are clamped, since
// they fail the positivity rule anyway.
func parseBoundedLiteral(literal string, limit int) (int, bool) {
	value, err := strconv.ParseInt(literal, 10, 64)
	if err != nil {
		if !errors.Is(err, strconv.ErrRange) {
			return 0, true
		}
		if strings.HasPrefix(literal, "-") {
			return math.MinInt32, true
		}
		return 0, false
	}
	if value > int64(limit) {
		return 0, false
	}
	if value < math.MinInt32 {
		return math.MinInt32, true
	}
	return int(value), true
}
