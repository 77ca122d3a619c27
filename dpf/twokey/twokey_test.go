package twokey

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"spectrum-core/bytesutil"
	"spectrum-core/dpf"
)

func newTestDPF(t *testing.T, numPoints, msgSize int) *DPF {
	t.Helper()
	d, err := New(dpf.Params{NumPoints: numPoints, MsgSize: msgSize})
	require.NoError(t, err)
	return d
}

func TestGenCombineRecoversMessage(t *testing.T) {
	d := newTestDPF(t, 8, 4)
	msg := bytesutil.Bytes{1, 2, 3, 4}

	keys, err := d.Gen(5, msg)
	require.NoError(t, err)
	require.Len(t, keys, 2)

	out, err := d.Combine(keys)
	require.NoError(t, err)
	require.Len(t, out, 8)
	for i, v := range out {
		if i == 5 {
			assert.True(t, v.Equal(msg))
		} else {
			assert.True(t, v.IsZero())
		}
	}
}

func TestGenEmptyCombinesToZero(t *testing.T) {
	d := newTestDPF(t, 8, 4)

	keys, err := d.GenEmpty()
	require.NoError(t, err)

	out, err := d.Combine(keys)
	require.NoError(t, err)
	for _, v := range out {
		assert.True(t, v.IsZero())
	}
}

func TestFullEvalMatchesCombine(t *testing.T) {
	d := newTestDPF(t, 8, 4)
	msg := bytesutil.Bytes{9, 9, 9, 9}

	keys, err := d.Gen(2, msg)
	require.NoError(t, err)

	combined, err := d.Combine(keys)
	require.NoError(t, err)

	aliceFull, err := d.FullEval(keys[0])
	require.NoError(t, err)
	bobFull, err := d.FullEval(keys[1])
	require.NoError(t, err)

	for i := range combined {
		xored, err := aliceFull[i].XOR(bobFull[i])
		require.NoError(t, err)
		assert.True(t, xored.Equal(combined[i]))
	}
}

func TestGenIndexOutOfRange(t *testing.T) {
	d := newTestDPF(t, 4, 4)
	_, err := d.Gen(4, bytesutil.Zero(4))
	assert.ErrorIs(t, err, dpf.ErrIndexOutOfRange)
}

func TestGenWrongMessageSize(t *testing.T) {
	d := newTestDPF(t, 4, 4)
	_, err := d.Gen(0, bytesutil.Zero(3))
	assert.ErrorIs(t, err, dpf.ErrMessageSize)
}

func TestDigestAgreesAcrossHonestKeys(t *testing.T) {
	d := newTestDPF(t, 8, 4)
	keys, err := d.Gen(3, bytesutil.Bytes{1, 2, 3, 4})
	require.NoError(t, err)

	alice := keys[0].(*Key)
	bob := keys[1].(*Key)
	assert.Equal(t, alice.Digest(), bob.Digest())
}

func TestSerializeDeserializeRoundTrip(t *testing.T) {
	d := newTestDPF(t, 8, 4)
	keys, err := d.Gen(1, bytesutil.Bytes{5, 6, 7, 8})
	require.NoError(t, err)

	enc, err := keys[0].Serialize()
	require.NoError(t, err)

	var restored Key
	require.NoError(t, restored.Deserialize(enc))
	assert.Equal(t, keys[0].(*Key).FinalCW, restored.FinalCW)
}
