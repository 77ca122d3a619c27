package groupmultikey

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"spectrum-core/bytesutil"
	"spectrum-core/dpf"
	"spectrum-core/field"
)

func newTestDPF(t *testing.T, numPoints, l, n int) *DPF {
	t.Helper()
	d, err := New(dpf.Params{NumPoints: numPoints, MsgSize: l * pointLen}, n)
	require.NoError(t, err)
	return d
}

// testMessage builds a valid L-group-element message by scalar-multiplying
// the curve generator by distinct small scalars, so every limb is a
// distinguishable, well-formed point.
func testMessage(l int, base uint64) bytesutil.Bytes {
	g := field.Generator()
	out := make(bytesutil.Bytes, 0, l*pointLen)
	for i := 0; i < l; i++ {
		p := g.ScalarMul(field.FromUint64(base + uint64(i) + 1))
		out = append(out, p.Bytes()...)
	}
	return out
}

func TestGroupGenCombineRecoversMessage(t *testing.T) {
	d := newTestDPF(t, 8, 3, 3)
	msg := testMessage(3, 10)

	keys, err := d.Gen(5, msg)
	require.NoError(t, err)
	require.Len(t, keys, 3)

	out, err := d.Combine(keys)
	require.NoError(t, err)
	// Off the special index every limb is the group identity, whose
	// canonical encoding is not the all-zero byte string.
	identity := bytesutil.Bytes(bytes.Repeat(field.Identity().Bytes(), 3))
	for i, v := range out {
		if i == 5 {
			assert.True(t, v.Equal(msg))
		} else {
			assert.True(t, v.Equal(identity))
		}
	}
}

func TestGroupGenEmptyCombinesToZero(t *testing.T) {
	d := newTestDPF(t, 8, 2, 4)
	keys, err := d.GenEmpty()
	require.NoError(t, err)

	out, err := d.Combine(keys)
	require.NoError(t, err)
	identity := bytesutil.Bytes(bytes.Repeat(field.Identity().Bytes(), 2))
	for _, v := range out {
		assert.True(t, v.Equal(identity))
	}
}

func TestGroupSeedHoldersLookIndependentlyRandom(t *testing.T) {
	d := newTestDPF(t, 8, 2, 3)
	keys, err := d.Gen(1, testMessage(2, 30))
	require.NoError(t, err)

	seenBytes := make(map[string]bool)
	for _, k := range keys[:2] {
		gk := k.(*Key)
		require.False(t, gk.IsLast)
		seenBytes[string(gk.SeedBytes)] = true
	}
	assert.Len(t, seenBytes, 2)
}

func TestGroupCombineWrongKeyCount(t *testing.T) {
	d := newTestDPF(t, 8, 2, 3)
	keys, err := d.Gen(0, testMessage(2, 0))
	require.NoError(t, err)

	_, err = d.Combine(keys[:2])
	assert.Error(t, err)
}

func TestGroupDigestAgreesOnInstanceShape(t *testing.T) {
	d := newTestDPF(t, 8, 2, 3)
	keys, err := d.Gen(1, testMessage(2, 40))
	require.NoError(t, err)

	first := keys[0].(*Key).Digest()
	for _, k := range keys[1:] {
		assert.Equal(t, first, k.(*Key).Digest())
	}
}

func TestNewRejectsSingleParty(t *testing.T) {
	_, err := New(dpf.Params{NumPoints: 4, MsgSize: pointLen}, 1)
	assert.Error(t, err)
}

func TestNewRejectsMisalignedMsgSize(t *testing.T) {
	_, err := New(dpf.Params{NumPoints: 4, MsgSize: pointLen + 1}, 2)
	assert.Error(t, err)
}

func TestSerializeDeserializeRoundTrip(t *testing.T) {
	d := newTestDPF(t, 4, 2, 2)
	keys, err := d.Gen(2, testMessage(2, 50))
	require.NoError(t, err)

	enc, err := keys[0].Serialize()
	require.NoError(t, err)

	var roundTripped Key
	require.NoError(t, roundTripped.Deserialize(enc))

	out, err := d.Combine([]dpf.Key{&roundTripped, keys[1]})
	require.NoError(t, err)
	assert.True(t, out[2].Equal(testMessage(2, 50)))
}
