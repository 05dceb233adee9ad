package vm

// Tri is an attribute in a property descriptor: absent, false or true.
type Tri uint8

const (
	TriAbsent Tri = iota
	TriFalse
	TriTrue
)

func TriOf(b bool) Tri {
	if b {
		return TriTrue
	}
	return TriFalse
}

func (t Tri) Present() bool { return t != TriAbsent }
func (t Tri) True() bool    { return t == TriTrue }

func (t Tri) String() string {
	switch t {
	case TriFalse:
		return "false"
	case TriTrue:
		return "true"
	default:
		return "absent"
	}
}

// PropertyDescriptor is the ECMA-262 Property Descriptor record. Value,
// Get and Set are borrowed: the descriptor never owns references.
type PropertyDescriptor struct {
	Value    Value
	HasValue bool
	Get      *Object // nil with HasGet means undefined
	HasGet   bool
	Set      *Object
	HasSet   bool

	Writable     Tri
	Enumerable   Tri
	Configurable Tri
}

func (d *PropertyDescriptor) IsAccessor() bool { return d.HasGet || d.HasSet }
func (d *PropertyDescriptor) IsData() bool     { return d.HasValue || d.Writable.Present() }
func (d *PropertyDescriptor) IsGeneric() bool  { return !d.IsAccessor() && !d.IsData() }

func (d *PropertyDescriptor) empty() bool {
	return d.IsGeneric() && !d.Enumerable.Present() && !d.Configurable.Present()
}

// DescriptorOf returns the fully populated descriptor of p.
func DescriptorOf(p *Property) PropertyDescriptor {
	d := PropertyDescriptor{
		Enumerable:   TriOf(p.Enumerable()),
		Configurable: TriOf(p.Configurable()),
	}
	if p.IsAccessor() {
		d.Get, d.HasGet = p.getter, true
		d.Set, d.HasSet = p.setter, true
		return d
	}
	d.Value, d.HasValue = p.value, true
	d.Writable = TriOf(p.attrs.Writable())
	return d
}

// DefineOwnProperty implements [[DefineOwnProperty]] (ECMA-262 5.1, 8.12.9)
// over the property store. It reports false where the algorithm rejects;
// throwing is up to the caller.
func (o *Object) DefineOwnProperty(name string, desc PropertyDescriptor) bool {
	current := o.Lookup(name)
	if current == nil {
		if !o.extensible {
			return false
		}
		attrs := AttrNone
		if desc.Enumerable.True() {
			attrs |= AttrEnumerable
		}
		if desc.Configurable.True() {
			attrs |= AttrConfigurable
		}
		if desc.IsAccessor() {
			o.InsertAccessor(name, desc.Get, desc.Set, attrs)
			return true
		}
		if desc.Writable.True() {
			attrs |= AttrWritable
		}
		value := Undefined
		if desc.HasValue {
			value = desc.Value
		}
		o.InsertData(name, value, attrs)
		return true
	}

	if desc.empty() || sameAsCurrent(current, &desc) {
		return true
	}

	if !current.Configurable() {
		if desc.Configurable.True() {
			return false
		}
		if desc.Enumerable.Present() && desc.Enumerable.True() != current.Enumerable() {
			return false
		}
	}

	switch {
	case desc.IsGeneric():
		// attributes only
	case current.IsData() != desc.IsData():
		if !current.Configurable() {
			return false
		}
		// Convert in place; keeps configurable and enumerable, resets the rest.
		current.release()
		if current.IsData() {
			current.kind = PropertyAccessor
			current.attrs &^= AttrWritable
		} else {
			current.kind = PropertyData
			current.value = Undefined
			current.attrs &^= AttrWritable
		}
	case current.IsData():
		if !current.Configurable() && !current.attrs.Writable() {
			if desc.Writable.True() {
				return false
			}
			if desc.HasValue && !SameValue(desc.Value, current.value) {
				return false
			}
		}
	default:
		if !current.Configurable() {
			if desc.HasSet && desc.Set != current.setter {
				return false
			}
			if desc.HasGet && desc.Get != current.getter {
				return false
			}
		}
	}

	if current.IsData() {
		if desc.HasValue {
			o.SetValue(current, desc.Value)
		}
		current.attrs = applyTri(current.attrs, AttrWritable, desc.Writable)
	} else {
		getter, setter := current.getter, current.setter
		if desc.HasGet {
			getter = desc.Get
		}
		if desc.HasSet {
			setter = desc.Set
		}
		o.setAccessorPair(current, getter, setter)
	}
	current.attrs = applyTri(current.attrs, AttrEnumerable, desc.Enumerable)
	current.attrs = applyTri(current.attrs, AttrConfigurable, desc.Configurable)
	return true
}

// SetAttributes overwrites the boolean attributes of p. Used by the
// integrity routines (seal, freeze), which only ever clear bits.
func (p *Property) SetAttributes(attrs Attributes) {
	if p.kind == PropertyAccessor {
		attrs &^= AttrWritable
	}
	p.attrs = attrs
}

func applyTri(attrs Attributes, bit Attributes, t Tri) Attributes {
	switch t {
	case TriTrue:
		return attrs | bit
	case TriFalse:
		return attrs &^ bit
	}
	return attrs
}

func sameAsCurrent(p *Property, d *PropertyDescriptor) bool {
	if d.Enumerable.Present() && d.Enumerable.True() != p.Enumerable() {
		return false
	}
	if d.Configurable.Present() && d.Configurable.True() != p.Configurable() {
		return false
	}
	if p.IsData() {
		if d.IsAccessor() {
			return false
		}
		if d.Writable.Present() && d.Writable.True() != p.attrs.Writable() {
			return false
		}
		return !d.HasValue || SameValue(d.Value, p.value)
	}
	if d.IsData() {
		return false
	}
	return (!d.HasGet || d.Get == p.getter) && (!d.HasSet || d.Set == p.setter)
}
