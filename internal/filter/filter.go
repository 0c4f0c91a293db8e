// Package filter runs user scripts that decide which lines enter history.
//
// A filter script is Lua. It must define a global function
//
//	function history_filter(line)
//	  return not line:match("^%s")
//	end
//
// that returns true to keep the line. Scripts run with only the base,
// table, string and math libraries open.
package filter

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	lua "github.com/yuin/gopher-lua"

	"github.com/dshills/bangline/internal/history/ring"
	"github.com/dshills/bangline/internal/logging"
)

// FuncName is the global the script must define.
const FuncName = "history_filter"

// DefaultTimeout bounds a single call into the script.
const DefaultTimeout = 200 * time.Millisecond

var (
	// ErrNoFilterFunc indicates the script does not define history_filter.
	ErrNoFilterFunc = errors.New("script does not define " + FuncName)

	// ErrClosed indicates the filter was closed.
	ErrClosed = errors.New("filter closed")
)

// LuaFilter evaluates history_filter from a Lua script.
//
// The underlying Lua state is not goroutine-safe; calls are serialized.
type LuaFilter struct {
	mu      sync.Mutex
	L       *lua.LState
	source  string
	timeout time.Duration
	log     *logging.Logger
	closed  bool
}

// Option configures a LuaFilter.
type Option func(*LuaFilter)

// WithTimeout sets the per-call timeout.
func WithTimeout(d time.Duration) Option {
	return func(f *LuaFilter) {
		f.timeout = d
	}
}

// WithLogger sets the logger used to report script errors.
func WithLogger(log *logging.Logger) Option {
	return func(f *LuaFilter) {
		f.log = log.WithComponent("filter")
	}
}

// LoadFile creates a filter from a script file.
func LoadFile(path string, opts ...Option) (*LuaFilter, error) {
	return load(path, func(L *lua.LState) error { return L.DoFile(path) }, opts)
}

// LoadString creates a filter from script source.
func LoadString(code string, opts ...Option) (*LuaFilter, error) {
	return load("<string>", func(L *lua.LState) error { return L.DoString(code) }, opts)
}

func load(source string, run func(*lua.LState) error, opts []Option) (*LuaFilter, error) {
	f := &LuaFilter{
		source:  source,
		timeout: DefaultTimeout,
		log:     logging.Nop(),
	}
	for _, opt := range opts {
		opt(f)
	}

	L := lua.NewState(lua.Options{SkipOpenLibs: true})
	openSafeLibraries(L)

	if err := run(L); err != nil {
		L.Close()
		return nil, fmt.Errorf("load filter %s: %w", source, err)
	}
	if L.GetGlobal(FuncName).Type() != lua.LTFunction {
		L.Close()
		return nil, fmt.Errorf("load filter %s: %w", source, ErrNoFilterFunc)
	}

	f.L = L
	return f, nil
}

// openSafeLibraries opens the libraries that cannot reach the file system
// or the process.
func openSafeLibraries(L *lua.LState) {
	for _, lib := range []struct {
		name string
		fn   lua.LGFunction
	}{
		{lua.BaseLibName, lua.OpenBase},
		{lua.TabLibName, lua.OpenTable},
		{lua.StringLibName, lua.OpenString},
		{lua.MathLibName, lua.OpenMath},
	} {
		L.Push(L.NewFunction(lib.fn))
		L.Push(lua.LString(lib.name))
		L.Call(1, 0)
	}
	for _, name := range []string{"dofile", "loadfile", "load", "loadstring", "require"} {
		L.SetGlobal(name, lua.LNil)
	}
}

// Keep runs history_filter on line. A result of nil or false drops the
// line; anything else keeps it.
func (f *LuaFilter) Keep(line string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.closed {
		return false, ErrClosed
	}

	ctx, cancel := context.WithTimeout(context.Background(), f.timeout)
	defer cancel()
	f.L.SetContext(ctx)
	defer f.L.RemoveContext()

	err := f.call(line)
	if err != nil {
		return false, fmt.Errorf("%s: %s: %w", f.source, FuncName, err)
	}
	ret := f.L.Get(-1)
	f.L.Pop(1)
	return lua.LVAsBool(ret), nil
}

func (f *LuaFilter) call(line string) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("lua panic: %v", r)
		}
	}()
	return f.L.CallByParam(lua.P{
		Fn:      f.L.GetGlobal(FuncName),
		NRet:    1,
		Protect: true,
	}, lua.LString(line))
}

// Predicate adapts the filter to a ring.Filter. Script failures are logged
// and the line is kept.
func (f *LuaFilter) Predicate() ring.Filter {
	return func(line string) bool {
		keep, err := f.Keep(line)
		if err != nil {
			f.log.Warn("filter error, keeping line: %v", err)
			return true
		}
		return keep
	}
}

// Close releases the Lua state.
func (f *LuaFilter) Close() {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.closed {
		return
	}
	f.closed = true
	f.L.Close()
}
