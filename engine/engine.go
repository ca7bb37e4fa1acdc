// Package engine evaluates programs of primitive functions over an indexed
// knowledge base. Primitives are pure: they read the KB and prior results
// and never mutate either.
package engine

import (
	"fmt"

	"github.com/wbrown/janus-kgraph/kb"
	"github.com/wbrown/janus-kgraph/kgraph"
)

// Bundle is the unit flowing between entity-valued primitives: a list of
// entity ids with an optional parallel list of justifying facts. Facts is
// nil when the producing primitive carries no fact channel.
type Bundle struct {
	IDs   []string
	Facts []kgraph.Fact
}

// HasFacts reports whether the bundle carries a fact channel.
func (b Bundle) HasFacts() bool { return b.Facts != nil }

// Verdict is the ternary outcome of a verification primitive.
type Verdict string

const (
	Yes     Verdict = "yes"
	No      Verdict = "no"
	NotSure Verdict = "not sure"
)

// Engine evaluates primitives against one knowledge base.
type Engine struct {
	kb *kb.KB
}

// New creates an engine over an already-constructed knowledge base.
func New(k *kb.KB) *Engine {
	return &Engine{kb: k}
}

// KB exposes the underlying knowledge base.
func (e *Engine) KB() *kb.KB { return e.kb }

// parseTyped parses a literal argument under an explicit kind.
func (e *Engine) parseTyped(raw string, kind kgraph.Kind) (kgraph.Value, error) {
	return kgraph.ParseLiteral(raw, kind)
}

// parseForKey parses a literal argument under the declared type of key. Keys
// never observed in the KB have no declared type, which is a parse error.
func (e *Engine) parseForKey(key, raw string) (kgraph.Value, error) {
	kind, ok := e.kb.KeyType[key]
	if !ok {
		return kgraph.Value{}, fmt.Errorf("engine: no declared type for key %q", key)
	}
	return kgraph.ParseLiteral(raw, kind)
}
