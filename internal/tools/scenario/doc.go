// Package scenario runs Lua dice scripts against the dice gRPC API.
//
// Scripts see a global dice table:
//
//	local r = dice.roll("1d20+3", "advantage")
//	dice.assert(r.total >= 4, "advantage total below minimum")
//	local p = dice.parse("2d6+abc")
//	dice.assert(not p.valid, "expected invalid notation")
//
// Failed assertions are collected; in strict mode the run returns an error
// naming each of them.
package scenario
