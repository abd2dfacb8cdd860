package router

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"mcphost/internal/mcptypes"
)

func TestRootManagerRegisterAndLookup(t *testing.T) {
	m := NewRootManager()
	roots := []mcptypes.Root{{URI: "file:///data", Name: "data", Capabilities: []mcptypes.Capability{mcptypes.CapabilityResources}}}

	m.Register("client-a", roots)

	assert.Equal(t, roots, m.RootsFor("client-a"))
	assert.Nil(t, m.RootsFor("client-missing"))
}

func TestRootManagerRegisterEmptyClearsEntry(t *testing.T) {
	m := NewRootManager()
	m.Register("client-a", []mcptypes.Root{{URI: "file:///data"}})
	m.Register("client-a", nil)

	assert.Nil(t, m.RootsFor("client-a"))
}

func TestRootManagerUnregister(t *testing.T) {
	m := NewRootManager()
	m.Register("client-a", []mcptypes.Root{{URI: "file:///data"}})

	m.Unregister("client-a")

	assert.Nil(t, m.RootsFor("client-a"))
}

func TestRootManagerRegisterCopiesSlice(t *testing.T) {
	m := NewRootManager()
	roots := []mcptypes.Root{{URI: "file:///data"}}
	m.Register("client-a", roots)

	roots[0].URI = "file:///mutated"

	assert.Equal(t, "file:///data", m.RootsFor("client-a")[0].URI)
}
