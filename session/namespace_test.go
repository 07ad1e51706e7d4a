package session

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNamespaceIsDeterministic(t *testing.T) {
	a := Namespace("t1", "i1", "s1")
	b := Namespace("t1", "i1", "s1")
	assert.Equal(t, a, b)
}

func TestNamespaceEmbedsIdentifiers(t *testing.T) {
	ns := Namespace("t1", "i1", "s1")
	assert.True(t, strings.HasPrefix(ns, "team_sessions_"))
	assert.Contains(t, ns, "t1")
	assert.Contains(t, ns, "i1")
	assert.Contains(t, ns, "s1")
}

func TestNamespaceDistinctPerTriple(t *testing.T) {
	seen := map[string]string{}
	triples := [][3]string{
		{"t1", "i1", "s1"},
		{"t1", "i1", "s2"},
		{"t1", "i2", "s1"},
		{"t2", "i1", "s1"},
	}
	for _, tr := range triples {
		ns := Namespace(tr[0], tr[1], tr[2])
		prev, dup := seen[ns]
		assert.False(t, dup, "collision between %v and %s", tr, prev)
		seen[ns] = tr[0] + "/" + tr[1] + "/" + tr[2]
	}
}

func TestNamespaceSeparatorInjectionDoesNotCollide(t *testing.T) {
	// Both sanitize to the same visible text; the digest keeps them apart.
	a := Namespace("a_b", "c", "s")
	b := Namespace("a", "b_c", "s")
	assert.NotEqual(t, a, b)
}

func TestNamespaceSanitizesUnsafeCharacters(t *testing.T) {
	ns := Namespace("tenant/1", "inst 2", "sess.3")
	assert.NotContains(t, ns, "/")
	assert.NotContains(t, ns, " ")
	assert.NotContains(t, ns, ".")
}
