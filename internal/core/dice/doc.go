// Package dice evaluates tabletop dice notation such as "2d6+1d4+3".
//
// # Pipeline
//
// A notation string flows one way through the package:
//
//	raw string -> Parse -> ParsedExpression -> RollGroup (per group) -> Roller.Roll -> RollRecord
//
// Parse never fails on malformed input; it returns an invalid
// ParsedExpression carrying every problem it found so a caller can fix the
// expression in one pass. Dice groups above the count or sides ceilings are
// different: Parse stops at the first such group and returns a
// *ResourceLimitError.
//
// # Randomness
//
// Every die is drawn from a Source. Production code uses CryptoSource, which
// reads from crypto/rand and cannot be seeded, so prior rolls reveal nothing
// about future ones. Tests inject deterministic sources.
//
// # Advantage and disadvantage
//
// In advantage or disadvantage mode a single-group expression is rolled twice.
// Modifiers are applied to both rolls, the higher (advantage) or lower
// (disadvantage) total is kept, and the first roll wins ties. The other roll
// is returned as RollRecord.Alternate.
package dice
