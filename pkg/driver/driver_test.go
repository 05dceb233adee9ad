package driver

import (
	stderrors "errors"
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"

	"ecmacore/pkg/config"
	"ecmacore/pkg/errors"
	"ecmacore/pkg/vm"
)

func newEngine(t *testing.T, cfg *config.Config) *Engine {
	t.Helper()
	e, err := New(cfg)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	t.Cleanup(func() {
		if err := e.Close(); err != nil {
			t.Errorf("Close failed: %v", err)
		}
	})
	return e
}

func TestEngine_Get(t *testing.T) {
	e := newEngine(t, nil)

	v, err := e.Get("Math.PI")
	if err != nil {
		t.Fatal(err)
	}
	if v.AsNumber() != math.Pi {
		t.Errorf("Expected PI, got %s", v.Inspect())
	}

	v, err = e.Get("Object.defineProperty.length")
	if err != nil {
		t.Fatal(err)
	}
	if v.AsNumber() != 3 {
		t.Errorf("Expected 3, got %s", v.Inspect())
	}

	v, err = e.Get("Math.nope")
	if err != nil || !v.IsUndefined() {
		t.Errorf("Expected undefined, got %v, %v", v.Inspect(), err)
	}

	_, err = e.Get("Math.nope.deeper")
	var rt *errors.RuntimeError
	if !stderrors.As(err, &rt) || rt.Name != "TypeError" {
		t.Errorf("Expected TypeError, got %v", err)
	}

	_, err = e.Get("Date.now")
	if !stderrors.As(err, &rt) || rt.Name != "ReferenceError" {
		t.Errorf("Expected ReferenceError, got %v", err)
	}
}

func TestEngine_Call(t *testing.T) {
	e := newEngine(t, nil)

	v, err := e.Call("Math.max", ParseValue("1"), ParseValue("7"), ParseValue("3"))
	if err != nil {
		t.Fatal(err)
	}
	if v.AsNumber() != 7 {
		t.Errorf("Expected 7, got %s", v.Inspect())
	}

	s := ParseValue("12")
	v, err = e.Call("Number", s)
	if err != nil || v.AsNumber() != 12 {
		t.Errorf("Expected Number(12) = 12, got %s, %v", v.Inspect(), err)
	}

	_, err = e.Call("Math.PI")
	var rt *errors.RuntimeError
	if !stderrors.As(err, &rt) || rt.Name != "TypeError" {
		t.Errorf("Expected TypeError calling a number, got %v", err)
	}

	_, err = e.Call("Object.keys", ParseValue("1"))
	if !stderrors.As(err, &rt) || rt.Msg != "Object.keys called on non-object" {
		t.Errorf("Expected the routine's TypeError, got %v", err)
	}
}

func TestEngine_Describe(t *testing.T) {
	e := newEngine(t, nil)

	st, err := e.Describe("Math")
	if err != nil {
		t.Fatal(err)
	}
	if !st.Initialized || st.Pending != len(st.Properties) || st.Class != "Math" {
		t.Fatalf("Unexpected fresh state %+v", st)
	}

	v, err := e.Get("Math.SQRT2")
	if err != nil {
		t.Fatal(err)
	}
	v.Free()

	st, _ = e.Describe("Math")
	if st.Pending != len(st.Properties)-1 {
		t.Errorf("Expected one instantiated property, %d pending", st.Pending)
	}
	var got []PropertyState
	for _, p := range st.Properties {
		if p.Instantiated {
			got = append(got, p)
		}
	}
	want := []PropertyState{{
		Name: "SQRT2", Kind: "constant", Instantiated: true, Present: true,
		Attributes: "---", Value: "1.4142135623730951",
	}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("instantiated properties mismatch (-want +got):\n%s", diff)
	}
}

func TestEngine_BuiltinSubset(t *testing.T) {
	cfg := config.Default()
	cfg.Engine.Builtins = []string{"Math"}
	e := newEngine(t, cfg)

	if _, err := e.Get("Math.E"); err != nil {
		t.Errorf("Expected Math, got %v", err)
	}
	_, err := e.Global("Object")
	var le *errors.LifecycleError
	if !stderrors.As(err, &le) {
		t.Errorf("Expected LifecycleError for an uninitialized built-in, got %v", err)
	}
	if got := len(e.Builtins()); got != 3 {
		t.Errorf("Expected every table described, got %d", got)
	}

	cfg = config.Default()
	cfg.Engine.Builtins = []string{"Function"}
	if _, err := New(cfg); err == nil {
		t.Error("Expected a non-singleton built-in to be rejected")
	}
}

func TestEngine_OutOfMemory(t *testing.T) {
	cfg := config.Default()
	// The out-of-memory exception and three singletons.
	cfg.Heap.MaxObjects = 4
	e := newEngine(t, cfg)

	_, err := e.Get("Math.abs")
	var rt *errors.RuntimeError
	if !stderrors.As(err, &rt) || rt.Name != "RangeError" || rt.Msg != "out of memory" {
		t.Fatalf("Expected out of memory, got %v", err)
	}

	e.Heap().SetLimit(0)
	v, err := e.Call("Math.abs", vm.NumberValue(-1))
	if err != nil || v.AsNumber() != 1 {
		t.Errorf("Expected recovery once memory is available, got %s, %v", v.Inspect(), err)
	}
	if e.Stats().Peak < 5 {
		t.Errorf("Expected the peak to include the routine, got %+v", e.Stats())
	}
}

func TestEngine_CloseReportsLeaks(t *testing.T) {
	e, err := New(nil)
	if err != nil {
		t.Fatal(err)
	}
	held, err := e.Global("Number")
	if err != nil {
		t.Fatal(err)
	}
	if err := e.Close(); err == nil {
		t.Error("Expected Close to report the held singleton")
	}
	held.Deref()
	if err := e.Close(); err != nil {
		t.Errorf("Second Close should be a no-op, got %v", err)
	}
}

func TestParseValue(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"1.5", "1.5"},
		{"-0", "0"},
		{"true", "true"},
		{"null", "null"},
		{"undefined", "undefined"},
		{"NaN", "NaN"},
		{"hello", `"hello"`},
		{`"42"`, `"42"`},
	}
	for _, tt := range tests {
		v := ParseValue(tt.in)
		if got := v.Inspect(); got != tt.want {
			t.Errorf("ParseValue(%q) = %s, want %s", tt.in, got, tt.want)
		}
		v.Free()
	}
}
