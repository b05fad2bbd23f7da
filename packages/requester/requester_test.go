package requester

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iotaledger/tanglenode/packages/tangle"
	"github.com/iotaledger/tanglenode/packages/ternary"
	"github.com/iotaledger/tanglenode/packages/testframework"
)

func TestRequester(t *testing.T) {
	tf := testframework.New(t)
	requester, err := New(time.Minute)
	require.NoError(t, err)
	defer func() { assert.NoError(t, requester.Shutdown()) }()
	requester.Attach(tf.Storage)

	tf.CreateTransaction("Missing1", testframework.GenesisAlias, testframework.GenesisAlias)
	tf.CreateTransaction("Missing2", testframework.GenesisAlias, testframework.GenesisAlias)
	tf.IssueTransaction("Tip", "Missing1", "Missing2")

	solid, err := tangle.NewSolidifier(tf.Storage, 0).CheckSolidity(tf.Hash("Tip"), false)
	require.NoError(t, err)
	assert.False(t, solid)
	assert.Equal(t, 2, requester.Size())
	assert.True(t, requester.IsRequested(tf.Hash("Missing1")))

	// a milestone request is served first
	requester.Request(tf.Hash("Missing2"), true)
	requests := requester.Requests()
	require.Len(t, requests, 2)
	assert.Equal(t, tf.Hash("Missing2"), requests[0].Hash)
	assert.True(t, requests[0].Milestone)

	// the milestone flag sticks
	requester.Request(tf.Hash("Missing2"), false)
	assert.True(t, requester.Requests()[0].Milestone)

	requester.Request(ternary.NullHash, true)
	assert.Equal(t, 2, requester.Size())

	tf.Store("Missing1")
	assert.False(t, requester.IsRequested(tf.Hash("Missing1")))
	assert.Equal(t, 1, requester.Size())

	requester.Detach(tf.Storage)
	tf.Store("Missing2")
	assert.True(t, requester.IsRequested(tf.Hash("Missing2")))
}

func TestRequester_Expiry(t *testing.T) {
	requester, err := New(50 * time.Millisecond)
	require.NoError(t, err)
	defer func() { assert.NoError(t, requester.Shutdown()) }()

	hash := testframework.Address(t, "EXPIRING")
	requester.Request(hash, false)
	assert.True(t, requester.IsRequested(hash))

	assert.Eventually(t, func() bool {
		return !requester.IsRequested(hash)
	}, 5*time.Second, 10*time.Millisecond)
}
