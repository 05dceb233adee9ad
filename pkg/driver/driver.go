// Package driver wires configuration, logging, the heap and a Realm into an
// Engine for embedders and the ecmacore command.
package driver

import (
	stderrors "errors"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/tliron/commonlog"

	"ecmacore/pkg/builtins"
	"ecmacore/pkg/config"
	"ecmacore/pkg/errors"
	"ecmacore/pkg/vm"
)

// Engine is one isolated engine instance: a heap and the Realm of built-ins
// allocated on it. It is used from a single goroutine.
type Engine struct {
	cfg    *config.Config
	heap   *vm.Heap
	realm  *builtins.Realm
	log    commonlog.Logger
	closed bool
}

// New creates an Engine and initializes the configured built-ins. A nil cfg
// means the defaults.
func New(cfg *config.Config) (*Engine, error) {
	if cfg == nil {
		cfg = config.Default()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	descs, err := resolveBuiltins(cfg.Engine.Builtins)
	if err != nil {
		return nil, err
	}

	heap := vm.NewHeap(cfg.Heap.MaxObjects)
	realm, err := builtins.NewRealm(heap, builtins.WithStrict(cfg.Engine.Strict))
	if err != nil {
		return nil, err
	}
	e := &Engine{cfg: cfg, heap: heap, realm: realm, log: commonlog.GetLogger("ecmacore.driver")}

	for _, d := range descs {
		if err := realm.Init(d.ID); err != nil {
			e.Close()
			return nil, fmt.Errorf("cannot initialize %s: %w", d.Name, err)
		}
	}
	e.log.Infof("engine ready: %d built-ins, heap limit %d, strict %t", len(descs), heap.Limit(), cfg.Engine.Strict)
	return e, nil
}

// resolveBuiltins maps configured names to singleton descriptors in
// priority order. No names selects every standard built-in.
func resolveBuiltins(names []string) ([]*builtins.Descriptor, error) {
	if len(names) == 0 {
		return builtins.StandardBuiltins(), nil
	}
	seen := make(map[builtins.ID]bool)
	var out []*builtins.Descriptor
	for _, name := range names {
		d, ok := builtins.ByName(name)
		if !ok || !d.Singleton {
			return nil, &errors.ConfigError{Msg: fmt.Sprintf("unknown built-in %q in engine.builtins", name)}
		}
		if !seen[d.ID] {
			seen[d.ID] = true
			out = append(out, d)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Priority < out[j].Priority })
	return out, nil
}

// Config returns the configuration the Engine was created with.
func (e *Engine) Config() *config.Config { return e.cfg }

// Realm exposes the built-in context.
func (e *Engine) Realm() *builtins.Realm { return e.realm }

// Heap exposes the object heap.
func (e *Engine) Heap() *vm.Heap { return e.heap }

// Global returns the singleton named name with a new reference.
func (e *Engine) Global(name string) (*vm.Object, error) {
	d, ok := builtins.ByName(name)
	if !ok || !d.Singleton {
		return nil, &errors.RuntimeError{Name: "ReferenceError", Msg: name + " is not defined"}
	}
	if !e.realm.Initialized(d.ID) {
		return nil, &errors.LifecycleError{Builtin: d.Name, Msg: "not initialized in this engine"}
	}
	return e.realm.GetSingleton(d.ID), nil
}

// Get evaluates a dotted property path such as "Math.PI" or
// "Object.keys.length". The result is owned by the caller.
func (e *Engine) Get(path string) (vm.Value, error) {
	parts := strings.Split(path, ".")
	root, err := e.Global(parts[0])
	if err != nil {
		return vm.Undefined, err
	}
	cur := vm.ObjectValue(root)
	for _, name := range parts[1:] {
		if !cur.IsObject() {
			msg := fmt.Sprintf("Cannot read property '%s' of %s", name, cur.Inspect())
			cur.Free()
			return vm.Undefined, &errors.RuntimeError{Name: "TypeError", Msg: msg}
		}
		c := e.realm.Get(cur.AsObject(), name)
		cur.Free()
		if c.IsThrow() {
			return vm.Undefined, builtins.UncaughtError(c)
		}
		cur = c.Take()
	}
	return cur, nil
}

// Call evaluates path and calls the resulting function with args, which
// stay owned by the caller.
func (e *Engine) Call(path string, args ...vm.Value) (vm.Value, error) {
	fn, err := e.Get(path)
	if err != nil {
		return vm.Undefined, err
	}
	defer fn.Free()
	if !fn.IsObject() || !fn.AsObject().IsCallable() {
		return vm.Undefined, &errors.RuntimeError{Name: "TypeError", Msg: path + " is not a function"}
	}
	c := e.realm.Call(fn.AsObject(), args)
	if c.IsThrow() {
		return vm.Undefined, builtins.UncaughtError(c)
	}
	return c.Take(), nil
}

// ParseValue reads a command-line literal: a number, true, false, null,
// undefined, or else a string. The result is owned by the caller.
func ParseValue(s string) vm.Value {
	switch s {
	case "true":
		return vm.True
	case "false":
		return vm.False
	case "null":
		return vm.Null
	case "undefined":
		return vm.Undefined
	case "NaN":
		return vm.NaN
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return vm.NumberValue(f)
	}
	return vm.NewString(strings.Trim(s, `"'`))
}

// PropertyState is one recognized property of a built-in as seen without
// instantiating anything.
type PropertyState struct {
	Name         string `yaml:"name" cbor:"name"`
	Kind         string `yaml:"kind" cbor:"kind"`
	Arity        int    `yaml:"arity,omitempty" cbor:"arity,omitempty"`
	Variadic     bool   `yaml:"variadic,omitempty" cbor:"variadic,omitempty"`
	Instantiated bool   `yaml:"instantiated" cbor:"instantiated"`
	Present      bool   `yaml:"present" cbor:"present"`
	Attributes   string `yaml:"attributes,omitempty" cbor:"attributes,omitempty"`
	Value        string `yaml:"value,omitempty" cbor:"value,omitempty"`
}

// BuiltinState describes a built-in table and, when it is initialized, the
// instantiation state of its singleton.
type BuiltinState struct {
	Name        string          `yaml:"name" cbor:"name"`
	Class       string          `yaml:"class" cbor:"class"`
	Priority    int             `yaml:"priority" cbor:"priority"`
	Initialized bool            `yaml:"initialized" cbor:"initialized"`
	Pending     int             `yaml:"pending" cbor:"pending"`
	Properties  []PropertyState `yaml:"properties" cbor:"properties"`
	Extra       []string        `yaml:"extra,omitempty" cbor:"extra,omitempty"`
}

// Describe reports the state of the built-in named name. It never
// instantiates properties.
func (e *Engine) Describe(name string) (*BuiltinState, error) {
	d, ok := builtins.ByName(name)
	if !ok || !d.Singleton {
		return nil, &errors.RuntimeError{Name: "ReferenceError", Msg: name + " is not defined"}
	}
	st := &BuiltinState{
		Name:        d.Name,
		Class:       d.Class.String(),
		Priority:    d.Priority,
		Initialized: e.realm.Initialized(d.ID),
		Pending:     d.Len(),
	}

	var obj *vm.Object
	if st.Initialized {
		obj = e.realm.GetSingleton(d.ID)
		defer obj.Deref()
		st.Pending = obj.NotInstantiatedCount()
	}

	recognized := make(map[string]bool, d.Len())
	for i, slot := range d.Slots {
		ps := PropertyState{Name: slot.ID.String(), Kind: slot.Kind.String()}
		if slot.Routine != nil {
			ps.Arity, ps.Variadic = slot.Routine.Arity, slot.Routine.Variadic
		}
		recognized[ps.Name] = true
		if obj != nil {
			ps.Instantiated = !obj.NotInstantiated(i)
			if p := obj.Lookup(ps.Name); p != nil {
				ps.Present = true
				ps.Attributes = p.Attributes().String()
				ps.Value = p.Value().Inspect()
			}
		}
		st.Properties = append(st.Properties, ps)
	}
	if obj != nil {
		for _, n := range obj.OwnNames() {
			if !recognized[n] {
				st.Extra = append(st.Extra, n)
			}
		}
	}
	return st, nil
}

// Builtins describes every singleton built-in in priority order.
func (e *Engine) Builtins() []*BuiltinState {
	var out []*BuiltinState
	for _, d := range builtins.StandardBuiltins() {
		st, err := e.Describe(d.Name)
		if err == nil {
			out = append(out, st)
		}
	}
	return out
}

// HeapStats summarizes the heap.
type HeapStats struct {
	Live       int `yaml:"live" cbor:"live"`
	Peak       int `yaml:"peak" cbor:"peak"`
	Limit      int `yaml:"limit" cbor:"limit"`
	Remembered int `yaml:"remembered" cbor:"remembered"`
}

func (e *Engine) Stats() HeapStats {
	return HeapStats{
		Live:       e.heap.Live(),
		Peak:       e.heap.Peak(),
		Limit:      e.heap.Limit(),
		Remembered: len(e.heap.Remembered()),
	}
}

// Close finalizes every built-in and reports references that outlived them.
func (e *Engine) Close() error {
	if e.closed {
		return nil
	}
	e.closed = true
	err := e.realm.FinalizeAll()
	if cerr := e.realm.Close(); cerr != nil {
		err = stderrors.Join(err, cerr)
	}
	if live := e.heap.Live(); live > 0 {
		e.log.Warningf("%d objects still live at close", live)
		err = stderrors.Join(err, &errors.LifecycleError{Builtin: "Engine", Msg: fmt.Sprintf("%d objects still live at close", live)})
	}
	return err
}
