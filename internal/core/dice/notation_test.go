package dice

import (
	"errors"
	"reflect"
	"strings"
	"testing"
)

func TestTokenize(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []Token
	}{
		{
			name:  "compound",
			input: "2d6+1d4+3",
			want: []Token{
				DiceToken{Raw: "2d6", Count: "2", Sides: "6"},
				DiceToken{Raw: "+1d4", Count: "+1", Sides: "4"},
				ModifierToken{Raw: "+3", Value: "+3"},
			},
		},
		{
			name:  "spaced",
			input: "2d6 + 1d4 - 2",
			want: []Token{
				DiceToken{Raw: "2d6", Count: "2", Sides: "6"},
				DiceToken{Raw: "+ 1d4", Count: "+1", Sides: "4"},
				ModifierToken{Raw: "- 2", Value: "-2"},
			},
		},
		{
			name:  "negative count",
			input: "-2d6",
			want:  []Token{DiceToken{Raw: "-2d6", Count: "-2", Sides: "6"}},
		},
		{
			name:  "negative sides",
			input: "2d-1",
			want:  []Token{DiceToken{Raw: "2d-1", Count: "2", Sides: "-1"}},
		},
		{
			name:  "bare modifier",
			input: "+5",
			want:  []Token{ModifierToken{Raw: "+5", Value: "+5"}},
		},
		{
			name:  "letters",
			input: "abc",
			want:  []Token{InvalidToken{Raw: "abc"}},
		},
		{
			name:  "missing sides",
			input: "2d",
			want:  []Token{InvalidToken{Raw: "2d"}},
		},
		{
			name:  "trailing garbage",
			input: "2d6x+1",
			want: []Token{
				InvalidToken{Raw: "2d6x"},
				ModifierToken{Raw: "+1", Value: "+1"},
			},
		},
		{
			name:  "dangling sign",
			input: "2d6 +",
			want: []Token{
				DiceToken{Raw: "2d6", Count: "2", Sides: "6"},
				InvalidToken{Raw: "+"},
			},
		},
		{
			name:  "unsigned second dice term",
			input: "1d6 2d6",
			want: []Token{
				DiceToken{Raw: "1d6", Count: "1", Sides: "6"},
				InvalidToken{Raw: "2d6"},
			},
		},
		{
			name:  "plus before sides",
			input: "2d+6",
			want: []Token{
				InvalidToken{Raw: "2d"},
				ModifierToken{Raw: "+6", Value: "+6"},
			},
		},
		{
			name:  "unsigned number",
			input: "2d6 3",
			want: []Token{
				DiceToken{Raw: "2d6", Count: "2", Sides: "6"},
				InvalidToken{Raw: "3"},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Tokenize(tt.input)
			if !reflect.DeepEqual(got, tt.want) {
				t.Fatalf("Tokenize(%q) = %#v, want %#v", tt.input, got, tt.want)
			}
		})
	}
}

func TestParseCompoundExpression(t *testing.T) {
	expr, err := Parse("2d6+1d4+3")
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}
	if !expr.Valid {
		t.Fatalf("expected valid expression, errors = %v", expr.Errors)
	}
	wantGroups := []DiceGroup{{Count: 2, Sides: 6}, {Count: 1, Sides: 4}}
	if !reflect.DeepEqual(expr.DiceGroups, wantGroups) {
		t.Fatalf("DiceGroups = %v, want %v", expr.DiceGroups, wantGroups)
	}
	if !reflect.DeepEqual(expr.Modifiers, []int64{3}) {
		t.Fatalf("Modifiers = %v, want [3]", expr.Modifiers)
	}
	if expr.Original != "2d6+1d4+3" {
		t.Fatalf("Original = %q", expr.Original)
	}
}

func TestParseIgnoresCaseAndWhitespace(t *testing.T) {
	pairs := []struct {
		canonical string
		variants  []string
	}{
		{canonical: "2d6", variants: []string{"2D6", " 2d6 ", "\t2d6\n"}},
		{canonical: "2d6+1d4", variants: []string{"2d6 + 1d4", "2D6   +1d4", " 2d6+ 1D4 "}},
		{canonical: "1d20-2+5", variants: []string{"1d20 - 2 + 5", "1D20-2 +5"}},
	}

	for _, pair := range pairs {
		want, err := Parse(pair.canonical)
		if err != nil {
			t.Fatalf("Parse(%q) returned error: %v", pair.canonical, err)
		}
		for _, variant := range pair.variants {
			got, err := Parse(variant)
			if err != nil {
				t.Fatalf("Parse(%q) returned error: %v", variant, err)
			}
			if got.Original != variant {
				t.Fatalf("Original = %q, want %q", got.Original, variant)
			}
			if got.Valid != want.Valid ||
				!reflect.DeepEqual(got.DiceGroups, want.DiceGroups) ||
				!reflect.DeepEqual(got.Modifiers, want.Modifiers) {
				t.Fatalf("Parse(%q) = %+v, want structure of %+v", variant, got, want)
			}
		}
	}
}

func TestParseSpacingMatchesCompactForm(t *testing.T) {
	pairs := [][2]string{
		{"1d6 2d6", "1d62d6"},
		{"1d6 2d6 + 1", "1d62d6+1"},
	}
	for _, pair := range pairs {
		spaced, err := Parse(pair[0])
		if err != nil {
			t.Fatalf("Parse(%q) returned error: %v", pair[0], err)
		}
		compact, err := Parse(pair[1])
		if err != nil {
			t.Fatalf("Parse(%q) returned error: %v", pair[1], err)
		}
		if spaced.Valid || compact.Valid {
			t.Fatalf("expected both invalid: %q valid=%v, %q valid=%v", pair[0], spaced.Valid, pair[1], compact.Valid)
		}
		if len(spaced.DiceGroups) > 1 {
			t.Fatalf("Parse(%q) accepted groups %v", pair[0], spaced.DiceGroups)
		}
	}
}

func TestParseSingleSidedDie(t *testing.T) {
	expr, err := Parse("5d1")
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}
	if !expr.Valid {
		t.Fatalf("expected 5d1 to be valid, errors = %v", expr.Errors)
	}
}

func TestParseInvalidExpressions(t *testing.T) {
	tests := []struct {
		input       string
		wantField   string
		wantMessage string
	}{
		{input: "", wantField: FieldExpression, wantMessage: MsgEmptyExpression},
		{input: "   ", wantField: FieldExpression, wantMessage: MsgEmptyExpression},
		{input: "0d6", wantField: FieldCount, wantMessage: "Dice count must be at least 1"},
		{input: "-2d6", wantField: FieldCount, wantMessage: "Dice count must be at least 1"},
		{input: "2d0", wantField: FieldSides, wantMessage: "Dice sides must be at least 1"},
		{input: "2d-1", wantField: FieldSides, wantMessage: "Dice sides must be at least 1"},
		{input: "abc", wantField: FieldExpression, wantMessage: MsgInvalidFormat},
		{input: "2d", wantField: FieldExpression, wantMessage: MsgInvalidFormat},
		{input: "+5", wantField: FieldExpression, wantMessage: MsgMissingDiceGroup},
		{input: "+5 -2", wantField: FieldExpression, wantMessage: MsgMissingDiceGroup},
		{input: "2d6+abc", wantField: FieldExpression, wantMessage: `Unrecognized token "+abc"`},
		{input: "1d6 2d6", wantField: FieldExpression, wantMessage: `Unrecognized token "2d6"`},
		{input: "1d62d6", wantField: FieldExpression, wantMessage: MsgInvalidFormat},
		{input: "2d+6", wantField: FieldExpression, wantMessage: MsgInvalidFormat},
		{input: "1d6+99999999999999999999", wantField: FieldModifier, wantMessage: "out of range"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			expr, err := Parse(tt.input)
			if err != nil {
				t.Fatalf("Parse(%q) returned error: %v", tt.input, err)
			}
			if expr.Valid {
				t.Fatalf("Parse(%q) expected invalid", tt.input)
			}
			if len(expr.Errors) == 0 {
				t.Fatalf("Parse(%q) expected errors", tt.input)
			}
			found := false
			for _, fieldErr := range expr.Errors {
				if fieldErr.Field == tt.wantField && strings.Contains(fieldErr.Message, tt.wantMessage) {
					found = true
				}
			}
			if !found {
				t.Fatalf("Parse(%q) errors = %+v, want %s: %q", tt.input, expr.Errors, tt.wantField, tt.wantMessage)
			}
		})
	}
}

func TestParseCollectsEveryError(t *testing.T) {
	expr, err := Parse("0d6 + 2d0 + 1d-3")
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}
	if expr.Valid {
		t.Fatal("expected invalid expression")
	}
	if len(expr.Errors) != 3 {
		t.Fatalf("expected 3 errors, got %d: %+v", len(expr.Errors), expr.Errors)
	}
	if len(expr.DiceGroups) != 0 {
		t.Fatalf("expected no accepted groups, got %v", expr.DiceGroups)
	}
}

func TestParseResourceLimits(t *testing.T) {
	tests := []struct {
		input     string
		wantLimit Limit
		wantValue string
	}{
		{input: "10000d10000", wantLimit: LimitCount, wantValue: "10000"},
		{input: "1001d6", wantLimit: LimitCount, wantValue: "1001"},
		{input: "2d10001", wantLimit: LimitSides, wantValue: "10001"},
		{input: "1d6+99999999999999999999999d6", wantLimit: LimitCount, wantValue: "99999999999999999999999"},
		{input: "1d6 + 2d20000 + 0d6", wantLimit: LimitSides, wantValue: "20000"},
		{input: "0d6 + 5000d6", wantLimit: LimitCount, wantValue: "5000"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			_, err := Parse(tt.input)
			var limitErr *ResourceLimitError
			if !errors.As(err, &limitErr) {
				t.Fatalf("Parse(%q) error = %v, want *ResourceLimitError", tt.input, err)
			}
			if limitErr.Limit != tt.wantLimit {
				t.Fatalf("limit = %q, want %q", limitErr.Limit, tt.wantLimit)
			}
			if limitErr.Actual != tt.wantValue {
				t.Fatalf("actual = %q, want %q", limitErr.Actual, tt.wantValue)
			}
			var validationErr *ValidationError
			if errors.As(err, &validationErr) {
				t.Fatal("resource limit must not be reported as a validation error")
			}
		})
	}
}

func TestParseAcceptsLimitBoundaries(t *testing.T) {
	expr, err := Parse("1000d10000")
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}
	if !expr.Valid {
		t.Fatalf("expected valid expression, errors = %v", expr.Errors)
	}
}

func TestDiceGroupNotation(t *testing.T) {
	if got := (DiceGroup{Count: 3, Sides: 8}).Notation(); got != "3d8" {
		t.Fatalf("Notation = %q, want 3d8", got)
	}
}
