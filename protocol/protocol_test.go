package protocol

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"spectrum-core/bytesutil"
	"spectrum-core/dpf"
	"spectrum-core/dpf/twokey"
	"spectrum-core/field"
	"spectrum-core/vdpf"
)

func newTestProtocol(t *testing.T, numChannels, msgSize int) *Protocol {
	t.Helper()
	inner, err := twokey.New(dpf.Params{NumPoints: numChannels, MsgSize: msgSize})
	require.NoError(t, err)
	p, err := New(vdpf.New(inner), 2)
	require.NoError(t, err)
	return p
}

func TestBroadcastAuditAccumulate(t *testing.T) {
	p := newTestProtocol(t, 4, 4)
	authKey := field.Random()
	msg := bytesutil.Bytes{1, 2, 3, 4}

	tokens, err := p.Broadcast(msg, ChannelKey{Idx: 2, Secret: authKey})
	require.NoError(t, err)
	require.Len(t, tokens, 2)

	shares := make([]AuditShare, 2)
	for i, tok := range tokens {
		share, err := p.GenAudit(authKey, tok)
		require.NoError(t, err)
		shares[i] = share
	}
	assert.True(t, p.CheckAudit(shares))

	serverVec, err := p.ToAccumulator(tokens[0])
	require.NoError(t, err)
	peerVec, err := p.ToAccumulator(tokens[1])
	require.NoError(t, err)

	for i := range serverVec {
		combined, err := serverVec[i].XOR(peerVec[i])
		require.NoError(t, err)
		if i == 2 {
			assert.True(t, combined.Equal(msg))
		} else {
			assert.True(t, combined.IsZero())
		}
	}
}

func TestNullBroadcastAccepted(t *testing.T) {
	p := newTestProtocol(t, 4, 4)

	tokens, err := p.NullBroadcast()
	require.NoError(t, err)

	shares := make([]AuditShare, 2)
	for i, tok := range tokens {
		share, err := p.GenAudit(field.Zero(), tok)
		require.NoError(t, err)
		shares[i] = share
	}
	assert.True(t, p.CheckAudit(shares))
}

func TestCheckAuditWrongShareCount(t *testing.T) {
	p := newTestProtocol(t, 4, 4)
	assert.False(t, p.CheckAudit([]AuditShare{{}}))
}

func TestWriteTokenMarshalRoundTrip(t *testing.T) {
	p := newTestProtocol(t, 4, 4)
	authKey := field.Random()
	tokens, err := p.Broadcast(bytesutil.Bytes{7, 7, 7, 7}, ChannelKey{Idx: 1, Secret: authKey})
	require.NoError(t, err)

	enc, err := tokens[0].MarshalBinary()
	require.NoError(t, err)

	var restored WriteToken
	require.NoError(t, restored.UnmarshalBinary(enc))

	encAgain, err := restored.MarshalBinary()
	require.NoError(t, err)
	assert.Equal(t, enc, encAgain)
}

func TestNewRejectsNonPositiveServers(t *testing.T) {
	inner, err := twokey.New(dpf.Params{NumPoints: 4, MsgSize: 4})
	require.NoError(t, err)
	_, err = New(vdpf.New(inner), 0)
	assert.Error(t, err)
}
