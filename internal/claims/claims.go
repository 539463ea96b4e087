// Package claims tracks facts that are guaranteed to hold once a statement
// has executed, such as "the method has returned" or "local x has been
// assigned". The emitter composes claim spaces statement by statement to
// decide definite return and definite initialization.
package claims

import "fmt"

// Kind is the predicate of a claim.
type Kind int

const (
	// Returns claims that control has left the method.
	Returns Kind = iota
	// Initializes claims that the local named by the subject holds a value.
	Initializes
)

func (k Kind) String() string {
	switch k {
	case Returns:
		return "returns"
	case Initializes:
		return "initializes"
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Claim is a single fact. Claims are equivalent when their kind and
// subject match; Claim is comparable, so equivalence is ==.
type Claim struct {
	Kind    Kind
	Subject string // empty for Returns
}

// Return is the claim that the method returns.
var Return = Claim{Kind: Returns}

// Init returns the claim that the named local is initialized.
func Init(name string) Claim {
	return Claim{Kind: Initializes, Subject: name}
}

func (c Claim) String() string {
	if c.Subject == "" {
		return c.Kind.String()
	}
	return c.Kind.String() + "(" + c.Subject + ")"
}

// Space is a set of claims with an optional parent.
// Lookups with ContainsEquivalent also consult the parent chain, so a
// nested statement sees the facts established around it.
type Space struct {
	parent *Space
	claims []Claim // in insertion order
}

// New returns an empty space whose lookups fall back to parent, which may
// be nil.
func New(parent *Space, cs ...Claim) *Space {
	s := &Space{parent: parent}
	for _, c := range cs {
		s.add(c)
	}
	return s
}

// Parent returns the parent space.
func (s *Space) Parent() *Space { return s.parent }

// Claims returns the claims held directly by s, not its parents.
func (s *Space) Claims() []Claim { return s.claims }

// Len returns the number of claims held directly by s.
func (s *Space) Len() int { return len(s.claims) }

func (s *Space) index(c Claim) int {
	for i, x := range s.claims {
		if x == c {
			return i
		}
	}
	return -1
}

func (s *Space) add(c Claim) {
	if s.index(c) < 0 {
		s.claims = append(s.claims, c)
	}
}

// Contains reports whether s itself holds a claim equivalent to c.
func (s *Space) Contains(c Claim) bool {
	return s.index(c) >= 0
}

// ContainsEquivalent reports whether s or any ancestor holds a claim
// equivalent to c.
func (s *Space) ContainsEquivalent(c Claim) bool {
	for sp := s; sp != nil; sp = sp.parent {
		if sp.Contains(c) {
			return true
		}
	}
	return false
}

// Union returns a new space holding the claims of both s and o.
// The result has s's parent.
func (s *Space) Union(o *Space) *Space {
	r := New(s.parent, s.claims...)
	for _, c := range o.claims {
		r.add(c)
	}
	return r
}

// Intersect returns a new space holding the claims present in both s and
// o. The result has s's parent.
func (s *Space) Intersect(o *Space) *Space {
	r := New(s.parent)
	for _, c := range s.claims {
		if o.Contains(c) {
			r.add(c)
		}
	}
	return r
}

// MergePushy adds the claims of o to s. An incoming claim replaces an
// equivalent claim already in s.
func (s *Space) MergePushy(o *Space) {
	for _, c := range o.claims {
		if i := s.index(c); i >= 0 {
			s.claims = append(s.claims[:i], s.claims[i+1:]...)
		}
		s.claims = append(s.claims, c)
	}
}

// MergeConservative adds the claims of o to s. An incoming claim that has
// an equivalent already in s is dropped, so the earlier one stands.
func (s *Space) MergeConservative(o *Space) {
	for _, c := range o.claims {
		if s.index(c) < 0 {
			s.claims = append(s.claims, c)
		}
	}
}

func (s *Space) String() string {
	return fmt.Sprint(s.claims)
}
