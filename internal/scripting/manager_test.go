package scripting_test

import (
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/duel/internal/scripting"
)

func newTestManager(t testing.TB) (*scripting.Manager, *observer.ObservedLogs) {
	t.Helper()
	core, logs := observer.New(zap.DebugLevel)
	mgr := scripting.NewManager(0, zap.New(core))
	t.Cleanup(mgr.Close)
	return mgr, logs
}

func writeTempLua(t testing.TB, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, src := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(src), 0644))
	}
	return dir
}

const strikeHooks = `
function armor_piercing(power, mitigation)
	return power - math.floor(mitigation / 2)
end

function flat(power, mitigation)
	return power
end

function broken(power, mitigation)
	error("jammed")
end

function wordy(power, mitigation)
	return "lots"
end

function forever(power, mitigation)
	while true do end
end
`

func TestManager_StrikeDamage(t *testing.T) {
	mgr, _ := newTestManager(t)
	require.NoError(t, mgr.Load(writeTempLua(t, map[string]string{"strikes.lua": strikeHooks})))

	dmg, err := mgr.StrikeDamage("armor_piercing", 40, 19)
	require.NoError(t, err)
	assert.Equal(t, 31, dmg)

	dmg, err = mgr.StrikeDamage("flat", 40, 19)
	require.NoError(t, err)
	assert.Equal(t, 40, dmg)
}

func TestManager_StrikeDamage_UnknownHook(t *testing.T) {
	mgr, _ := newTestManager(t)
	_, err := mgr.StrikeDamage("missing", 1, 0)
	assert.ErrorIs(t, err, scripting.ErrUnknownHook)
	assert.False(t, mgr.Has("missing"))
}

func TestManager_StrikeDamage_RuntimeErrorLogged(t *testing.T) {
	mgr, logs := newTestManager(t)
	require.NoError(t, mgr.Load(writeTempLua(t, map[string]string{"strikes.lua": strikeHooks})))

	_, err := mgr.StrikeDamage("broken", 10, 0)
	assert.Error(t, err)
	assert.Equal(t, 1, logs.FilterMessage("scripting: Lua runtime error").Len())
}

func TestManager_StrikeDamage_NonNumber(t *testing.T) {
	mgr, logs := newTestManager(t)
	require.NoError(t, mgr.Load(writeTempLua(t, map[string]string{"strikes.lua": strikeHooks})))

	_, err := mgr.StrikeDamage("wordy", 10, 0)
	assert.Error(t, err)
	assert.Equal(t, 1, logs.FilterMessage("scripting: hook returned non-number").Len())
}

func TestManager_StrikeDamage_OutOfRange(t *testing.T) {
	mgr, logs := newTestManager(t)
	require.NoError(t, mgr.Load(writeTempLua(t, map[string]string{"wild.lua": `
function infinite(power, mitigation) return math.huge end
function negative_infinite(power, mitigation) return -math.huge end
function not_a_number(power, mitigation) return 0/0 end
function enormous(power, mitigation) return 1e300 end
function edge(power, mitigation) return 2^63 end
`})))

	for _, hook := range []string{"infinite", "negative_infinite", "not_a_number", "enormous", "edge"} {
		t.Run(hook, func(t *testing.T) {
			dmg, err := mgr.StrikeDamage(hook, 10, 0)
			assert.ErrorIs(t, err, scripting.ErrDamageOutOfRange)
			assert.Zero(t, dmg)
		})
	}
	assert.Equal(t, 5, logs.FilterMessage("scripting: hook returned out-of-range damage").Len())
}

func TestManager_StrikeDamage_LargeFiniteAccepted(t *testing.T) {
	mgr, _ := newTestManager(t)
	require.NoError(t, mgr.Load(writeTempLua(t, map[string]string{"big.lua": `
function big(power, mitigation) return 1e12 end
`})))

	dmg, err := mgr.StrikeDamage("big", 0, 0)
	require.NoError(t, err)
	assert.Equal(t, 1_000_000_000_000, dmg)
}

func TestManager_SetLogger(t *testing.T) {
	mgr, first := newTestManager(t)
	require.NoError(t, mgr.Load(writeTempLua(t, map[string]string{"strikes.lua": strikeHooks})))

	core, second := observer.New(zap.DebugLevel)
	mgr.SetLogger(zap.New(core).With(zap.String("encounter_id", "abc")))
	_, err := mgr.StrikeDamage("broken", 1, 0)
	require.Error(t, err)

	assert.Zero(t, first.FilterMessage("scripting: Lua runtime error").Len())
	entries := second.FilterMessage("scripting: Lua runtime error").All()
	require.Len(t, entries, 1)
	assert.Equal(t, "abc", entries[0].ContextMap()["encounter_id"])
}

func TestManager_StrikeDamage_RunawayHookStopped(t *testing.T) {
	mgr, _ := newTestManager(t)
	require.NoError(t, mgr.Load(writeTempLua(t, map[string]string{"strikes.lua": strikeHooks})))

	_, err := mgr.StrikeDamage("forever", 10, 0)
	assert.Error(t, err)

	// The VM remains usable after a budget overrun.
	dmg, err := mgr.StrikeDamage("flat", 7, 0)
	require.NoError(t, err)
	assert.Equal(t, 7, dmg)
}

func TestManager_LoadOrderIsLexical(t *testing.T) {
	mgr, _ := newTestManager(t)
	dir := writeTempLua(t, map[string]string{
		"a.lua":      `function pick(p, m) return 1 end`,
		"b.lua":      `function pick(p, m) return 2 end`,
		"ignore.txt": `function pick(p, m) return 3 end`,
	})
	require.NoError(t, mgr.Load(dir))

	dmg, err := mgr.StrikeDamage("pick", 0, 0)
	require.NoError(t, err)
	assert.Equal(t, 2, dmg)
	assert.True(t, mgr.Has("pick"))
}

func TestManager_LoadSyntaxError(t *testing.T) {
	mgr, _ := newTestManager(t)
	err := mgr.Load(writeTempLua(t, map[string]string{"bad.lua": `function (`}))
	assert.Error(t, err)
}

func TestManager_LoadMissingDir(t *testing.T) {
	mgr, _ := newTestManager(t)
	assert.Error(t, mgr.Load("/nonexistent/scripts"))
}

func TestManager_ConcurrentCalls(t *testing.T) {
	mgr, _ := newTestManager(t)
	require.NoError(t, mgr.Load(writeTempLua(t, map[string]string{"strikes.lua": strikeHooks})))

	var wg sync.WaitGroup
	for i := range 16 {
		wg.Add(1)
		go func(p int) {
			defer wg.Done()
			dmg, err := mgr.StrikeDamage("flat", p, 0)
			assert.NoError(t, err)
			assert.Equal(t, p, dmg)
		}(i)
	}
	wg.Wait()
}

func TestProperty_ArmorPiercingFormula(t *testing.T) {
	mgr, _ := newTestManager(t)
	require.NoError(t, mgr.Load(writeTempLua(t, map[string]string{"strikes.lua": strikeHooks})))

	rapid.Check(t, func(rt *rapid.T) {
		power := rapid.IntRange(0, 500).Draw(rt, "power")
		mit := rapid.IntRange(0, 200).Draw(rt, "mitigation")
		dmg, err := mgr.StrikeDamage("armor_piercing", power, mit)
		if err != nil {
			rt.Fatalf("StrikeDamage: %v", err)
		}
		assert.Equal(rt, power-mit/2, dmg)
	})
}
