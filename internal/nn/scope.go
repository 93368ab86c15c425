package nn

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// ErrNameCollision is returned when a layer name is registered twice in the
// same Scope tree.
var ErrNameCollision = errors.New("layer name already registered")

// Scope allocates layer names and per-kind uids for model construction.
//
// A Scope replaces process-wide auto-naming: every model is built against
// its own registry, so two models built in the same process get identical
// names and two layers of one model can never silently share a name.
// Child scopes created with In share the parent's registry and prefix their
// names with "parent/".
//
// Example:
//
//	scope := nn.NewScope()
//	name, err := scope.Name("block_1_expand") // "block_1_expand"
//	name, err = scope.Name("block_1_expand")  // ErrNameCollision
//	sub := scope.In("head")
//	name, err = sub.Name("conv")               // "head/conv"
//
// A Scope is not safe for concurrent use.
type Scope struct {
	prefix string
	reg    *registry
}

type registry struct {
	names map[string]struct{}
	uids  map[string]int
}

// NewScope creates an empty root scope.
func NewScope() *Scope {
	return &Scope{
		reg: &registry{
			names: make(map[string]struct{}),
			uids:  make(map[string]int),
		},
	}
}

// In returns a child scope whose names are prefixed with name + "/".
func (s *Scope) In(name string) *Scope {
	return &Scope{prefix: s.qualify(name) + "/", reg: s.reg}
}

// Prefix returns the scope's name prefix ("" for the root).
func (s *Scope) Prefix() string {
	return s.prefix
}

func (s *Scope) qualify(name string) string {
	return s.prefix + name
}

// Name registers name in the scope and returns the fully qualified name.
// Registering the same qualified name twice returns ErrNameCollision.
func (s *Scope) Name(name string) (string, error) {
	if name == "" || strings.Contains(name, "/") {
		return "", fmt.Errorf("invalid layer name %q", name)
	}
	full := s.qualify(name)
	if _, taken := s.reg.names[full]; taken {
		return "", fmt.Errorf("%w: %q", ErrNameCollision, full)
	}
	s.reg.names[full] = struct{}{}
	return full, nil
}

// UID returns the next uid for kind, starting at 1. Uids are counted per
// registry, not per child scope.
func (s *Scope) UID(kind string) int {
	s.reg.uids[kind]++
	return s.reg.uids[kind]
}

// UniqueName registers and returns "kind_<uid>", skipping uids whose names
// were already taken explicitly.
func (s *Scope) UniqueName(kind string) string {
	for {
		name := fmt.Sprintf("%s_%d", kind, s.UID(kind))
		if full, err := s.Name(name); err == nil {
			return full
		}
	}
}

// Has reports whether the fully qualified name is registered.
func (s *Scope) Has(fullName string) bool {
	_, ok := s.reg.names[fullName]
	return ok
}

// Names returns all registered names in sorted order.
func (s *Scope) Names() []string {
	names := make([]string, 0, len(s.reg.names))
	for n := range s.reg.names {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
