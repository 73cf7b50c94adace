package dice

// Token is one lexical unit of normalized dice notation. It is one of
// DiceToken, ModifierToken, or InvalidToken.
type Token interface {
	// Text returns the exact source text of the token.
	Text() string
	isToken()
}

// DiceToken is an NdX term. Count and Sides hold the signed decimal
// literals as written, so out-of-range values can still be reported.
type DiceToken struct {
	Raw   string
	Count string
	Sides string
}

// ModifierToken is a signed integer term such as "+3" or "-2".
type ModifierToken struct {
	Raw   string
	Value string
}

// InvalidToken is text that matches no token shape.
type InvalidToken struct {
	Raw string
}

func (t DiceToken) Text() string     { return t.Raw }
func (t ModifierToken) Text() string { return t.Raw }
func (t InvalidToken) Text() string  { return t.Raw }

func (DiceToken) isToken()     {}
func (ModifierToken) isToken() {}
func (InvalidToken) isToken()  {}

// Tokenize splits normalized notation into tokens, left to right.
//
// Grammar, with spaces allowed between tokens and between a sign and the
// term it applies to:
//
//	dice     = [sign] digits "d" ["-"] digits
//	modifier = sign digits
//	sign     = "+" | "-"
//
// Only the first term may omit its sign, so "1d6 2d6" is as invalid as
// "1d62d6". A minus before the sides is kept so "2d-1" reports a sides error.
// A term must end at a space, a sign, or the end of input; anything else
// turns the whole run into an InvalidToken. Tokenize expects input from
// Normalize and treats upper-case "D" as an unknown character.
func Tokenize(s string) []Token {
	var tokens []Token
	pos := 0
	for pos < len(s) {
		if s[pos] == ' ' {
			pos++
			continue
		}
		token, next, ok := scanTerm(s, pos, len(tokens) > 0)
		if ok && !atBoundary(s, next) {
			ok = false
		}
		if !ok {
			next = skipInvalid(s, pos)
			if next <= pos {
				next = pos + 1
			}
			token = InvalidToken{Raw: s[pos:next]}
		}
		tokens = append(tokens, token)
		pos = next
	}
	return tokens
}

// scanTerm attempts to read a dice or modifier term starting at pos. When
// needSign is set the term must open with a sign.
func scanTerm(s string, pos int, needSign bool) (Token, int, bool) {
	i := pos
	sign := ""
	if isSign(s[i]) {
		sign = s[i : i+1]
		i++
		for i < len(s) && s[i] == ' ' {
			i++
		}
	}

	if needSign && sign == "" {
		return nil, pos, false
	}

	digitsStart := i
	i = scanDigits(s, i)
	if i == digitsStart {
		return nil, pos, false
	}
	count := sign + s[digitsStart:i]

	if i < len(s) && s[i] == 'd' {
		i++
		sidesStart := i
		if i < len(s) && s[i] == '-' {
			i++
		}
		sidesDigits := i
		i = scanDigits(s, i)
		if i == sidesDigits {
			return nil, pos, false
		}
		return DiceToken{Raw: s[pos:i], Count: count, Sides: s[sidesStart:i]}, i, true
	}

	if sign == "" {
		return nil, pos, false
	}
	return ModifierToken{Raw: s[pos:i], Value: count}, i, true
}

// skipInvalid consumes at least one byte and then everything up to the next
// space or sign.
func skipInvalid(s string, pos int) int {
	i := pos + 1
	for i < len(s) && s[i] != ' ' && !isSign(s[i]) {
		i++
	}
	return i
}

func scanDigits(s string, i int) int {
	for i < len(s) && s[i] >= '0' && s[i] <= '9' {
		i++
	}
	return i
}

func atBoundary(s string, i int) bool {
	return i >= len(s) || s[i] == ' ' || isSign(s[i])
}

func isSign(c byte) bool {
	return c == '+' || c == '-'
}
