package xmlschema

// Optional holds a schema-optional value. The zero value is absent.
type Optional[T any] struct {
	value   T
	present bool
}

// Some returns a present Optional holding v.
func Some[T any](v T) Optional[T] {
	return Optional[T]{value: v, present: true}
}

// None returns an absent Optional.
func None[T any]() Optional[T] {
	return Optional[T]{}
}

// Present reports whether the value is set.
func (o Optional[T]) Present() bool {
	return o.present
}

// Get returns the value. Calling Get on an absent Optional is a programming
// error and panics; check Present first.
func (o Optional[T]) Get() T {
	if !o.present {
		panic("xmlschema: Get called on absent optional value")
	}
	return o.value
}

// Value returns the value and whether it is present.
func (o Optional[T]) Value() (T, bool) {
	return o.value, o.present
}

// GetOr returns the value when present and def otherwise.
func (o Optional[T]) GetOr(def T) T {
	if !o.present {
		return def
	}
	return o.value
}

// Set stores v and marks the value present.
func (o *Optional[T]) Set(v T) {
	o.value = v
	o.present = true
}

// Assign copies src into o. An absent src clears o.
func (o *Optional[T]) Assign(src Optional[T]) {
	if !src.present {
		o.Reset()
		return
	}
	o.Set(src.value)
}

// Adopt takes the value p points to. A nil p clears o.
func (o *Optional[T]) Adopt(p *T) {
	if p == nil {
		o.Reset()
		return
	}
	o.value = *p
	o.present = true
}

// Reset clears the value.
func (o *Optional[T]) Reset() {
	var zero T
	o.value = zero
	o.present = false
}
