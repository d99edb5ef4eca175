package xmlschema

// Element is the capability set shared by every bound schema type. Callers
// holding only an Element can still copy the value with its dynamic type.
type Element interface {
	// ElementName returns the local name of the XML element the value binds.
	ElementName() string
	// CloneElement returns a deep copy whose dynamic type matches the receiver.
	CloneElement(f Flags, c Container) Element
}

// Container is the element that owns a bound value. It exists for
// back-navigation only and never controls the lifetime of what it contains.
type Container interface {
	ElementName() string
}
