package vm

import (
	"github.com/dolthub/swiss"

	"titan/value"
)

// globalTable is the name->value environment DefineGlobal/GetGlobal/
// SetGlobal operate on. A swiss.Map gives open-addressed, cache-friendly
// lookups, which matters here since every global access in a hot loop
// hashes the variable name.
type globalTable struct {
	m *swiss.Map[string, value.Value]
}

func newGlobalTable() *globalTable {
	return &globalTable{m: swiss.NewMap[string, value.Value](32)}
}

func (g *globalTable) define(name string, v value.Value) {
	g.m.Put(name, v)
}

func (g *globalTable) get(name string) (value.Value, bool) {
	return g.m.Get(name)
}

func (g *globalTable) set(name string, v value.Value) bool {
	if _, ok := g.m.Get(name); !ok {
		return false
	}
	g.m.Put(name, v)
	return true
}
