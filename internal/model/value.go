package model

// Value is either a concrete string or "missing" (key absent from a file,
// or a pending deletion). The zero Value is missing. Construct through Val
// and None so every producer states which case it means.
type Value struct {
	raw     string
	defined bool
}

// Val returns a present value. The empty string is a valid present value
// (KEY= on disk), distinct from missing.
func Val(s string) Value {
	return Value{raw: s, defined: true}
}

// None returns the missing value.
func None() Value {
	return Value{}
}

// Defined reports whether the value is present (not missing).
func (v Value) Defined() bool {
	return v.defined
}

// Raw returns the underlying string. Missing values return "".
func (v Value) Raw() string {
	return v.raw
}

// Equal compares both presence and content.
func (v Value) Equal(o Value) bool {
	return v.defined == o.defined && v.raw == o.raw
}

func (v Value) String() string {
	if !v.defined {
		return "<missing>"
	}
	return v.raw
}
