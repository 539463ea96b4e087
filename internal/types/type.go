// Package types implements the brisk type system: predeclared types,
// classes, interfaces, arrays and generic type parameters, together with
// the signature table they are registered in.
package types

// Type is the interface implemented by all types.
//
// Types are interned: two resolutions of the same annotation yield the
// same Type value, so types are compared with ==.
type Type interface {
	// Name returns the canonical name used for identity and lookup,
	// e.g. "int", "[bool]", "geo.Point".
	Name() string

	// String returns a human-readable representation of the type.
	String() string

	// aType is a marker method to restrict implementations to this package.
	aType()
}

// typ is a base struct for all type implementations.
type typ struct{}

func (typ) aType() {}
