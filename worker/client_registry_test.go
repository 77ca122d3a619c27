package worker

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"spectrum-core/protocol"
)

func TestClientRegistryRegisterAndLookup(t *testing.T) {
	r := NewClientRegistry()
	shards := []protocol.ShardInfo{{Group: "A", Index: 0}, {Group: "B", Index: 1}}

	r.Register("client-1", shards)

	got, err := r.Peers("client-1")
	require.NoError(t, err)
	assert.Equal(t, shards, got)
	assert.Equal(t, 1, r.NumClients())
}

func TestClientRegistryUnknownClient(t *testing.T) {
	r := NewClientRegistry()
	_, err := r.Peers("nope")
	assert.Error(t, err)
}

func TestClientRegistryReregisterOverwrites(t *testing.T) {
	r := NewClientRegistry()
	r.Register("c", []protocol.ShardInfo{{Group: "A", Index: 0}})
	r.Register("c", []protocol.ShardInfo{{Group: "A", Index: 1}})

	got, err := r.Peers("c")
	require.NoError(t, err)
	assert.Equal(t, []protocol.ShardInfo{{Group: "A", Index: 1}}, got)
	assert.Equal(t, 1, r.NumClients())
}
