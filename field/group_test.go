package field

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIdentityIsAdditiveIdentity(t *testing.T) {
	g := Generator()
	assert.True(t, g.Add(Identity()).Equal(g))
	assert.True(t, Identity().IsIdentity())
}

func TestScalarMulDistributesOverAdd(t *testing.T) {
	g := Generator()
	a := Random()
	b := Random()

	lhs := g.ScalarMul(a.Add(b))
	rhs := g.ScalarMul(a).Add(g.ScalarMul(b))
	assert.True(t, lhs.Equal(rhs))
}

func TestNegSub(t *testing.T) {
	g := Generator()
	h := HashToGroup([]byte("channel-1"))
	assert.True(t, g.Add(h).Sub(h).Equal(g))
}

func TestBytesCanonicalForEqualPoints(t *testing.T) {
	g := Generator()
	h := Generator()
	assert.Equal(t, g.Bytes(), h.Bytes())
}

func TestHashToGroupDeterministic(t *testing.T) {
	a := HashToGroup([]byte("rho"))
	b := HashToGroup([]byte("rho"))
	assert.True(t, a.Equal(b))

	c := HashToGroup([]byte("different"))
	assert.False(t, a.Equal(c))
}
