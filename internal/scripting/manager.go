package scripting

import (
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sort"
	"sync"

	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"
)

// ErrUnknownHook is returned when a hook name has no Lua function behind it.
var ErrUnknownHook = errors.New("scripting: unknown hook")

// ErrDamageOutOfRange is returned when a hook yields NaN, an infinity, or a
// number that does not fit in an int.
var ErrDamageOutOfRange = errors.New("scripting: damage out of range")

// Manager owns one sandboxed VM holding every loaded hook.
//
// Manager is safe for concurrent use; calls into the VM are serialized.
type Manager struct {
	mu     sync.Mutex
	box    *Sandbox
	logger *zap.Logger
}

// NewManager creates a Manager with an empty VM.
//
// Precondition: instLimit >= 0; 0 uses DefaultInstructionLimit.
// Postcondition: Returns a non-nil Manager. A nil logger disables logging.
func NewManager(instLimit int, logger *zap.Logger) *Manager {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Manager{box: NewSandbox(instLimit), logger: logger}
}

// Load executes every *.lua file in dir in lexicographic order.
//
// Precondition: dir must be a readable directory.
// Postcondition: Returns error on the first file that fails to load; files
// before it stay loaded.
func (m *Manager) Load(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("scripting: reading script dir %q: %w", dir, err)
	}

	var luaFiles []string
	for _, e := range entries {
		if !e.IsDir() && filepath.Ext(e.Name()) == ".lua" {
			luaFiles = append(luaFiles, filepath.Join(dir, e.Name()))
		}
	}
	sort.Strings(luaFiles)

	m.mu.Lock()
	defer m.mu.Unlock()
	for _, path := range luaFiles {
		if err := m.box.DoFile(path); err != nil {
			return fmt.Errorf("scripting: loading %q: %w", path, err)
		}
	}
	m.logger.Info("scripts loaded",
		zap.String("dir", dir),
		zap.Int("files", len(luaFiles)),
	)
	return nil
}

// Has reports whether hook names a global Lua function.
func (m *Manager) Has(hook string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.box.L.GetGlobal(hook).(*lua.LFunction)
	return ok
}

// StrikeDamage calls hook(power, mitigation) and returns its numeric result
// truncated toward zero.
//
// Postcondition: Returns ErrUnknownHook if hook is not a function; Lua runtime
// errors and non-numeric results are logged at Warn and returned.
func (m *Manager) StrikeDamage(hook string, power, mitigation int) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	fn, ok := m.box.L.GetGlobal(hook).(*lua.LFunction)
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrUnknownHook, hook)
	}

	var ret lua.LValue
	err := m.box.Do(func(L *lua.LState) error {
		if err := L.CallByParam(lua.P{
			Fn:      fn,
			NRet:    1,
			Protect: true,
		}, lua.LNumber(power), lua.LNumber(mitigation)); err != nil {
			return err
		}
		ret = L.Get(-1)
		L.Pop(1)
		return nil
	})
	if err != nil {
		m.logger.Warn("scripting: Lua runtime error",
			zap.String("hook", hook),
			zap.Error(err),
		)
		return 0, fmt.Errorf("scripting: hook %q: %w", hook, err)
	}

	n, ok := ret.(lua.LNumber)
	if !ok {
		m.logger.Warn("scripting: hook returned non-number",
			zap.String("hook", hook),
			zap.String("type", ret.Type().String()),
		)
		return 0, fmt.Errorf("scripting: hook %q returned %s, want number", hook, ret.Type())
	}
	if f := float64(n); math.IsNaN(f) || math.IsInf(f, 0) || f >= math.MaxInt || f < math.MinInt {
		m.logger.Warn("scripting: hook returned out-of-range damage",
			zap.String("hook", hook),
			zap.Float64("damage", f),
		)
		return 0, fmt.Errorf("%w: hook %q returned %v", ErrDamageOutOfRange, hook, f)
	}
	return int(n), nil
}

// SetLogger replaces the logger used for hook diagnostics.
// A nil logger disables logging.
func (m *Manager) SetLogger(logger *zap.Logger) {
	if logger == nil {
		logger = zap.NewNop()
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.logger = logger
}

// Close releases the VM.
func (m *Manager) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.box.Close()
}
