package scripting

import (
	"fmt"
	"math"
	"os"
	"path/filepath"

	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"

	"github.com/towncore/townsim/internal/world"
)

// thresholdFunc is the global a mortality script defines:
//
//	function death_threshold_days(health) return days end
const thresholdFunc = "death_threshold_days"

// Engine wraps a single gopher-lua VM. Single-goroutine access only
// (simulation loop).
//
// Engine implements world.MortalityModel: the lifespan curve comes from the
// script, with world.LinearLifespan as fallback when the script does not
// define one or fails. Results are cached per health value, since the
// threshold depends on nothing else.
type Engine struct {
	vm  *lua.LState
	log *zap.Logger

	fallback   world.LinearLifespan
	thresholds [256]float64
	cached     [256]bool
	warned     bool
}

// NewEngine creates a Lua engine and loads every script of scriptsDir and
// its mortality/ subdirectory. Missing directories are skipped.
func NewEngine(scriptsDir string, log *zap.Logger) (*Engine, error) {
	e := newEngine(log)
	for _, dir := range []string{scriptsDir, filepath.Join(scriptsDir, "mortality")} {
		if err := e.loadDir(dir); err != nil {
			e.vm.Close()
			return nil, fmt.Errorf("load scripts: %w", err)
		}
	}
	return e, nil
}

func newEngine(log *zap.Logger) *Engine {
	vm := lua.NewState(lua.Options{SkipOpenLibs: false})
	vm.SetGlobal("API_VERSION", lua.LNumber(1))
	vm.SetGlobal("MIN_LIFESPAN_YEARS", lua.LNumber(world.MinLifespanYears))
	vm.SetGlobal("MAX_LIFESPAN_YEARS", lua.LNumber(world.MaxLifespanYears))
	return &Engine{vm: vm, log: log}
}

// loadDir loads all .lua files in a directory.
func (e *Engine) loadDir(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".lua" {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		if err := e.vm.DoFile(path); err != nil {
			return fmt.Errorf("load %s: %w", path, err)
		}
		e.log.Debug("loaded lua script", zap.String("file", path))
	}
	e.reset()
	return nil
}

// LoadString runs src in the VM, e.g. to redefine death_threshold_days.
func (e *Engine) LoadString(src string) error {
	if err := e.vm.DoString(src); err != nil {
		return fmt.Errorf("load lua string: %w", err)
	}
	e.reset()
	return nil
}

func (e *Engine) reset() {
	e.cached = [256]bool{}
	e.warned = false
}

// DeathThresholdDays returns the lifespan in days for health.
func (e *Engine) DeathThresholdDays(health uint8) float64 {
	if e.cached[health] {
		return e.thresholds[health]
	}
	days, ok := e.callThreshold(health)
	if !ok {
		days = e.fallback.DeathThresholdDays(health)
	}
	e.thresholds[health] = days
	e.cached[health] = true
	return days
}

// Expired implements world.MortalityModel. When the script is absent the
// exact integer comparison of LinearLifespan is used instead of the float
// threshold.
func (e *Engine) Expired(ageDays uint64, health uint8) bool {
	if e.vm.GetGlobal(thresholdFunc) == lua.LNil {
		return e.fallback.Expired(ageDays, health)
	}
	return float64(ageDays) >= e.DeathThresholdDays(health)
}

func (e *Engine) callThreshold(health uint8) (float64, bool) {
	fn := e.vm.GetGlobal(thresholdFunc)
	if fn == lua.LNil {
		return 0, false
	}
	if err := e.vm.CallByParam(lua.P{
		Fn:      fn,
		NRet:    1,
		Protect: true,
	}, lua.LNumber(health)); err != nil {
		e.warnOnce("lua death_threshold_days error", zap.Error(err))
		return 0, false
	}

	result := e.vm.Get(-1)
	e.vm.Pop(1)

	n, ok := result.(lua.LNumber)
	if !ok || math.IsNaN(float64(n)) || n < 0 {
		e.warnOnce("lua death_threshold_days returned an invalid value",
			zap.String("value", result.String()))
		return 0, false
	}
	return float64(n), true
}

func (e *Engine) warnOnce(msg string, fields ...zap.Field) {
	if e.warned {
		return
	}
	e.warned = true
	e.log.Warn(msg+", using linear lifespan", fields...)
}

// Close shuts down the Lua VM.
func (e *Engine) Close() {
	e.vm.Close()
}
