package vm

type CompletionType uint8

const (
	CompletionNormal CompletionType = iota
	CompletionThrow
)

func (t CompletionType) String() string {
	if t == CompletionThrow {
		return "throw"
	}
	return "normal"
}

// Completion is the outcome of an operation that may throw. It owns its
// Value until the receiver takes it with Take or releases it with Free.
type Completion struct {
	typ   CompletionType
	value Value
}

// Normal wraps v, taking over the caller's reference.
func Normal(v Value) Completion {
	return Completion{typ: CompletionNormal, value: v}
}

// Throw wraps the exception v, taking over the caller's reference.
func Throw(v Value) Completion {
	return Completion{typ: CompletionThrow, value: v}
}

func (c Completion) Type() CompletionType { return c.typ }
func (c Completion) IsNormal() bool       { return c.typ == CompletionNormal }
func (c Completion) IsThrow() bool        { return c.typ == CompletionThrow }

// Value returns the carried value without transferring ownership.
func (c Completion) Value() Value { return c.value }

// Take transfers the carried value to the caller.
func (c Completion) Take() Value { return c.value }

// Free releases the carried value.
func (c Completion) Free() { c.value.Free() }

func (c Completion) String() string {
	return c.typ.String() + "(" + c.value.Inspect() + ")"
}
