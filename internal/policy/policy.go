// Package policy implements the optional region-scoped gap-closing
// override of SPEC_FULL.md §4.J: a sandboxed Lua script may define
// gap_distance(lat, lon) to vary the gap-closing threshold D by
// region. Grounded on the teacher's internal/flex/runtime.go LState
// lifecycle (new *lua.LState, load a file, look up a named global
// function, call it with Protect: true) at a small fraction of that
// package's size — flex's table-mapping DSL has no counterpart here.
package policy

import (
	"fmt"

	lua "github.com/yuin/gopher-lua"
)

// Policy wraps a loaded Lua script that may override the gap-closing
// distance for a given point.
type Policy struct {
	L         *lua.LState
	gapDistFn lua.LValue
}

// Load reads and executes path, looking for a top-level gap_distance
// function. A script that defines no such function is valid;
// GapDistance then always returns its defaultD argument.
func Load(path string) (*Policy, error) {
	L := lua.NewState(lua.Options{SkipOpenLibs: false})

	if err := L.DoFile(path); err != nil {
		L.Close()
		return nil, fmt.Errorf("policy: load %s: %w", path, err)
	}

	p := &Policy{L: L, gapDistFn: L.GetGlobal("gap_distance")}
	return p, nil
}

// Close releases the Lua interpreter.
func (p *Policy) Close() {
	p.L.Close()
}

// HasGapDistance reports whether the script defines gap_distance.
func (p *Policy) HasGapDistance() bool {
	return p.gapDistFn != nil && p.gapDistFn.Type() == lua.LTFunction
}

// GapDistance calls gap_distance(lat, lon) and returns its numeric
// result. defaultD is returned unchanged if the script defines no
// gap_distance function.
func (p *Policy) GapDistance(lat, lon, defaultD float64) (float64, error) {
	if !p.HasGapDistance() {
		return defaultD, nil
	}

	if err := p.L.CallByParam(lua.P{
		Fn:      p.gapDistFn,
		NRet:    1,
		Protect: true,
	}, lua.LNumber(lat), lua.LNumber(lon)); err != nil {
		return defaultD, fmt.Errorf("policy: gap_distance callback: %w", err)
	}
	defer p.L.Pop(1)

	ret := p.L.Get(-1)
	n, ok := ret.(lua.LNumber)
	if !ok {
		return defaultD, fmt.Errorf("policy: gap_distance must return a number, got %s", ret.Type())
	}
	return float64(n), nil
}
