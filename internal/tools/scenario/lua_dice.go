package scenario

import (
	"context"

	"github.com/Shopify/go-lua"
	diceservice "github.com/louisbranch/dicetower/internal/services/dice/api/grpc/dice"
	"github.com/louisbranch/dicetower/internal/services/dice/api/wire"
)

// registerDice installs the global dice table.
func (r *Runner) registerDice(ctx context.Context, state *lua.State) {
	state.NewTable()
	lua.SetFunctions(state, []lua.RegistryFunction{
		{Name: "roll", Function: r.luaRoll(ctx)},
		{Name: "parse", Function: r.luaParse(ctx)},
		{Name: "assert", Function: r.luaAssert},
		{Name: "log", Function: r.luaLog},
	}, 0)
	state.SetGlobal("dice")
}

// luaRoll implements dice.roll(expression [, mode]). Dice service errors
// are raised as Lua errors carrying the user-facing message.
func (r *Runner) luaRoll(ctx context.Context) lua.Function {
	return func(state *lua.State) int {
		expression := lua.CheckString(state, 1)
		mode := lua.OptString(state, 2, "")

		callCtx, cancel := context.WithTimeout(ctx, r.timeout)
		record, err := r.client.RollDice(callCtx, wire.RollRequest{Expression: expression, Mode: mode})
		cancel()
		if err != nil {
			lua.Errorf(state, "%s", diceservice.UserMessage(err))
			return 0
		}
		r.rolls++
		r.logf("roll %s", wire.AuditLine(record))
		pushRecord(state, record)
		return 1
	}
}

// luaParse implements dice.parse(expression).
func (r *Runner) luaParse(ctx context.Context) lua.Function {
	return func(state *lua.State) int {
		expression := lua.CheckString(state, 1)

		callCtx, cancel := context.WithTimeout(ctx, r.timeout)
		result, err := r.client.ParseNotation(callCtx, wire.ParseRequest{Expression: expression})
		cancel()
		if err != nil {
			lua.Errorf(state, "%s", diceservice.UserMessage(err))
			return 0
		}
		pushParseResult(state, result)
		return 1
	}
}

// luaAssert implements dice.assert(condition [, message]).
func (r *Runner) luaAssert(state *lua.State) int {
	lua.CheckAny(state, 1)
	if state.ToBoolean(1) {
		return 0
	}
	message := lua.OptString(state, 2, "assertion failed")
	lua.Where(state, 1)
	where, _ := state.ToString(-1)
	state.Pop(1)
	r.assertions.Fail(where + message)
	return 0
}

func (r *Runner) luaLog(state *lua.State) int {
	r.logger.Print(lua.CheckString(state, 1))
	return 0
}

func pushRecord(state *lua.State, record wire.RollRecord) {
	state.NewTable()
	pushString(state, "id", record.ID)
	pushString(state, "expression", record.Expression)
	pushString(state, "mode", record.Mode)
	pushString(state, "summary", wire.AuditLine(record))
	pushInt(state, "total", record.Total)
	pushResults(state, record.Results)
	pushModifiers(state, record.Modifiers)
	if alt := record.Alternate; alt != nil {
		state.NewTable()
		pushInt(state, "total", alt.Total)
		pushResults(state, alt.Results)
		pushModifiers(state, alt.Modifiers)
		state.SetField(-2, "alternate")
	}
}

func pushParseResult(state *lua.State, result wire.ParseResult) {
	state.NewTable()
	pushString(state, "original", result.Original)
	state.PushBoolean(result.Valid)
	state.SetField(-2, "valid")
	state.PushInteger(len(result.DiceGroups))
	state.SetField(-2, "groups")
	state.PushInteger(len(result.Modifiers))
	state.SetField(-2, "modifiers")

	state.NewTable()
	for i, group := range result.DiceGroups {
		state.NewTable()
		state.PushInteger(group.Count)
		state.SetField(-2, "count")
		state.PushInteger(group.Sides)
		state.SetField(-2, "sides")
		pushString(state, "notation", group.Notation)
		state.RawSetInt(-2, i+1)
	}
	state.SetField(-2, "dice_groups")

	state.NewTable()
	for i, fieldErr := range result.Errors {
		state.NewTable()
		pushString(state, "field", fieldErr.Field)
		pushString(state, "message", fieldErr.Message)
		state.RawSetInt(-2, i+1)
	}
	state.SetField(-2, "errors")
}

func pushResults(state *lua.State, results []wire.RollResult) {
	state.NewTable()
	for i, result := range results {
		state.NewTable()
		pushString(state, "notation", result.Notation)
		pushInt(state, "subtotal", result.Subtotal)
		state.NewTable()
		for j, roll := range result.Rolls {
			state.PushInteger(roll)
			state.RawSetInt(-2, j+1)
		}
		state.SetField(-2, "rolls")
		state.RawSetInt(-2, i+1)
	}
	state.SetField(-2, "results")
}

func pushModifiers(state *lua.State, modifiers []int64) {
	state.NewTable()
	for i, modifier := range modifiers {
		state.PushNumber(float64(modifier))
		state.RawSetInt(-2, i+1)
	}
	state.SetField(-2, "modifiers")
}

func pushString(state *lua.State, key, value string) {
	state.PushString(value)
	state.SetField(-2, key)
}

// pushInt stores an int64 as a Lua number; values beyond 2^53 lose precision.
func pushInt(state *lua.State, key string, value int64) {
	state.PushNumber(float64(value))
	state.SetField(-2, key)
}
