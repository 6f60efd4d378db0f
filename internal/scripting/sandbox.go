// Package scripting provides a sandboxed GopherLua environment for strike
// damage hooks. It has no dependency on game domain packages; combat reaches
// it through the combat.DamageHook interface.
package scripting

import (
	"context"
	"sync/atomic"

	lua "github.com/yuin/gopher-lua"
)

// DefaultInstructionLimit is the maximum number of Lua opcodes allowed per
// call when no override is configured.
const DefaultInstructionLimit = 100_000

// countingContext is a context.Context that cancels itself after Done() has
// been called limit times. GopherLua's mainLoopWithContext calls Done() once
// per opcode, making this an exact instruction-count limit.
type countingContext struct {
	context.Context
	cancel    context.CancelFunc
	remaining *atomic.Int64
}

// Done returns the underlying cancellation channel. Each call decrements the
// remaining counter; when it reaches zero the cancel function fires,
// terminating the Lua VM on the next opcode boundary.
func (c *countingContext) Done() <-chan struct{} {
	if c.remaining.Add(-1) <= 0 {
		c.cancel()
	}
	return c.Context.Done()
}

// newCountingContext returns a context that cancels after limit calls to Done().
// Precondition: limit > 0.
func newCountingContext(limit int) (context.Context, context.CancelFunc) {
	base, cancel := context.WithCancel(context.Background())
	rem := &atomic.Int64{}
	rem.Store(int64(limit))
	return &countingContext{
		Context:   base,
		cancel:    cancel,
		remaining: rem,
	}, cancel
}

// Sandbox is a restricted LState whose every entry point runs under a fresh
// opcode budget.
//
// Sandbox is not safe for concurrent use.
type Sandbox struct {
	L     *lua.LState
	limit int
}

// NewSandbox creates a GopherLua state with:
//   - Only safe stdlib loaded: base, table, string, math
//   - Dangerous globals removed: dofile, loadfile, load, collectgarbage, require
//   - Each Do call limited to at most instLimit Lua opcodes
//
// Precondition: instLimit >= 0; 0 uses DefaultInstructionLimit.
// Postcondition: The caller owns the Sandbox and must call Close when done.
func NewSandbox(instLimit int) *Sandbox {
	limit := instLimit
	if limit <= 0 {
		limit = DefaultInstructionLimit
	}

	L := lua.NewState(lua.Options{SkipOpenLibs: true})

	lua.OpenBase(L)
	lua.OpenTable(L)
	lua.OpenString(L)
	lua.OpenMath(L)

	for _, name := range []string{"dofile", "loadfile", "load", "collectgarbage", "require"} {
		L.SetGlobal(name, lua.LNil)
	}

	return &Sandbox{L: L, limit: limit}
}

// Do runs fn with the sandbox's opcode budget installed.
//
// Postcondition: the budget is removed when Do returns; a later Do starts fresh.
func (s *Sandbox) Do(fn func(L *lua.LState) error) error {
	ctx, cancel := newCountingContext(s.limit)
	s.L.SetContext(ctx)
	defer func() {
		s.L.RemoveContext()
		cancel()
	}()
	return fn(s.L)
}

// DoString executes src under the budget.
func (s *Sandbox) DoString(src string) error {
	return s.Do(func(L *lua.LState) error { return L.DoString(src) })
}

// DoFile executes the file at path under the budget.
func (s *Sandbox) DoFile(path string) error {
	return s.Do(func(L *lua.LState) error { return L.DoFile(path) })
}

// Close releases the underlying LState.
func (s *Sandbox) Close() { s.L.Close() }
