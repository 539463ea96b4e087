package types

// IsNumerical reports whether t supports arithmetic.
func IsNumerical(t Type) bool {
	return t == Typ[Int]
}

// IsBoolean reports whether t is bool.
func IsBoolean(t Type) bool {
	return t == Typ[Bool]
}

// IsVoid reports whether t is void.
func IsVoid(t Type) bool {
	return t == Typ[Void]
}

// IsClass reports whether t is a class type.
func IsClass(t Type) bool {
	_, ok := t.(*Class)
	return ok
}

// IsInterface reports whether t is an interface type.
func IsInterface(t Type) bool {
	_, ok := t.(*Interface)
	return ok
}

// IsArray reports whether t is an array type.
func IsArray(t Type) bool {
	_, ok := t.(*Array)
	return ok
}

// IsTypeParam reports whether t is a generic type parameter.
func IsTypeParam(t Type) bool {
	_, ok := t.(*TypeParam)
	return ok
}

// IsReference reports whether values of t are heap references that may be
// null.
func IsReference(t Type) bool {
	switch t.(type) {
	case *Class, *Interface, *Array, *TypeParam:
		return true
	}
	return false
}

// AssignableTo reports whether a value of type v may be stored where a
// value of type t is expected.
//
//   - int and bool are assignable only to themselves.
//   - void (the type of null) is assignable to everything.
//   - A class is assignable to its ancestors and to every interface it or
//     an ancestor implements.
//   - An array is assignable only to the identical array type.
//   - A type parameter is assignable to whatever its bounds are.
func AssignableTo(v, t Type) bool {
	if v == t {
		return true
	}
	switch v := v.(type) {
	case *Basic:
		return v.kind == Void
	case *Class:
		switch t := t.(type) {
		case *Class:
			return v.Sig().IsSubclassOf(t.Sig())
		case *Interface:
			return v.Sig().Implements(t.Sig())
		}
	case *TypeParam:
		if v.bound != nil && AssignableTo(v.bound, t) {
			return true
		}
		for _, in := range v.ifaces {
			if in == t {
				return true
			}
		}
	}
	return false
}

// Comparable reports whether values of x and y may be tested for
// equality: either must be assignable to the other.
func Comparable(x, y Type) bool {
	return AssignableTo(x, y) || AssignableTo(y, x)
}
