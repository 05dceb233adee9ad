package vm

type PropertyKind uint8

const (
	PropertyData PropertyKind = iota
	PropertyAccessor
)

func (k PropertyKind) String() string {
	switch k {
	case PropertyData:
		return "data"
	case PropertyAccessor:
		return "accessor"
	default:
		return "unknown"
	}
}

// Attributes is the set of boolean property attributes.
type Attributes uint8

const (
	AttrWritable Attributes = 1 << iota
	AttrEnumerable
	AttrConfigurable

	AttrNone Attributes = 0
	AttrAll             = AttrWritable | AttrEnumerable | AttrConfigurable
)

func (a Attributes) Writable() bool     { return a&AttrWritable != 0 }
func (a Attributes) Enumerable() bool   { return a&AttrEnumerable != 0 }
func (a Attributes) Configurable() bool { return a&AttrConfigurable != 0 }

func (a Attributes) String() string {
	b := []byte("---")
	if a.Writable() {
		b[0] = 'w'
	}
	if a.Enumerable() {
		b[1] = 'e'
	}
	if a.Configurable() {
		b[2] = 'c'
	}
	return string(b)
}

// Property is a named own property. Its address is stable for as long as it
// stays in its object, so callers may hold on to it between lookups.
type Property struct {
	kind   PropertyKind
	name   string
	attrs  Attributes
	value  Value   // data properties; owned
	getter *Object // accessor properties; owned, nil means undefined
	setter *Object
}

func (p *Property) Kind() PropertyKind     { return p.kind }
func (p *Property) Name() string           { return p.name }
func (p *Property) Attributes() Attributes { return p.attrs }
func (p *Property) IsData() bool           { return p.kind == PropertyData }
func (p *Property) IsAccessor() bool       { return p.kind == PropertyAccessor }
func (p *Property) Writable() bool         { return p.kind == PropertyData && p.attrs.Writable() }
func (p *Property) Enumerable() bool       { return p.attrs.Enumerable() }
func (p *Property) Configurable() bool     { return p.attrs.Configurable() }

// Value returns the stored value of a data property without taking a
// reference. Use Copy on the result to keep it.
func (p *Property) Value() Value {
	if p.kind != PropertyData {
		return Undefined
	}
	return p.value
}

// Getter returns the accessor's getter without taking a reference.
func (p *Property) Getter() *Object { return p.getter }

// Setter returns the accessor's setter without taking a reference.
func (p *Property) Setter() *Object { return p.setter }

// release drops every reference the property owns.
func (p *Property) release() {
	switch p.kind {
	case PropertyData:
		p.value.Free()
		p.value = Undefined
	case PropertyAccessor:
		if p.getter != nil {
			p.getter.Deref()
			p.getter = nil
		}
		if p.setter != nil {
			p.setter.Deref()
			p.setter = nil
		}
	}
}

// InternalSlot names an engine-private property. Internal properties carry a
// 32-bit payload, are never enumerated and are invisible to script.
type InternalSlot uint8

const (
	InternalClass InternalSlot = iota
	InternalBuiltinID
	InternalRoutineID
	InternalNonInstantiatedMask0_31
	InternalNonInstantiatedMask32_63
)

func (s InternalSlot) String() string {
	switch s {
	case InternalClass:
		return "[[Class]]"
	case InternalBuiltinID:
		return "[[BuiltinID]]"
	case InternalRoutineID:
		return "[[RoutineID]]"
	case InternalNonInstantiatedMask0_31:
		return "[[NonInstantiatedMask0_31]]"
	case InternalNonInstantiatedMask32_63:
		return "[[NonInstantiatedMask32_63]]"
	default:
		return "[[?]]"
	}
}

type internalProperty struct {
	slot    InternalSlot
	payload uint32
}
