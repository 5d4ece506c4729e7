// Package storetest holds the behaviour every store backend must share.
// Driver packages call Run from their own tests.
package storetest

import (
	"context"
	"testing"
	"time"

	"github.com/Dias221467/Beer_Rating/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Factory returns a fresh, empty backend. Run closes it.
type Factory func(t *testing.T) store.Backend

type request struct {
	SenderID   string `json:"senderId"`
	ReceiverID string `json:"receiverId"`
	Status     string `json:"status"`
}

// Run exercises a backend through store.Client.
func Run(t *testing.T, factory Factory) {
	cases := []struct {
		name string
		fn   func(t *testing.T, c *store.Client)
	}{
		{"SetAndGet", testSetAndGet},
		{"GetMissing", testGetMissing},
		{"SetReplacesSubtree", testSetReplacesSubtree},
		{"UpdateMultiPath", testUpdateMultiPath},
		{"UpdateRejectsOverlap", testUpdateRejectsOverlap},
		{"DeleteSubtree", testDeleteSubtree},
		{"DeleteMissing", testDeleteMissing},
		{"PushAssignsKeys", testPushAssignsKeys},
		{"SiblingPrefixIsolation", testSiblingPrefixIsolation},
		{"InvalidPath", testInvalidPath},
		{"Subscribe", testSubscribe},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c := store.New(factory(t))
			defer c.Close()
			tc.fn(t, c)
		})
	}
}

func ctxT(t *testing.T) context.Context {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	t.Cleanup(cancel)
	return ctx
}

func testSetAndGet(t *testing.T, c *store.Client) {
	ctx := ctxT(t)
	require.NoError(t, c.Set(ctx, "friendRequests/r1", request{SenderID: "a", ReceiverID: "b", Status: "pending"}))

	snap, err := c.Get(ctx, "friendRequests/r1")
	require.NoError(t, err)
	require.True(t, snap.Exists())

	var got request
	require.NoError(t, snap.Decode(&got))
	assert.Equal(t, request{SenderID: "a", ReceiverID: "b", Status: "pending"}, got)

	status, err := c.Get(ctx, "friendRequests/r1/status")
	require.NoError(t, err)
	assert.Equal(t, "pending", status.String())

	all, err := c.Get(ctx, "friendRequests")
	require.NoError(t, err)
	assert.Equal(t, []string{"r1"}, all.Keys())
}

func testGetMissing(t *testing.T, c *store.Client) {
	snap, err := c.Get(ctxT(t), "users/nobody/username")
	require.NoError(t, err)
	assert.False(t, snap.Exists())
}

func testSetReplacesSubtree(t *testing.T, c *store.Client) {
	ctx := ctxT(t)
	require.NoError(t, c.Set(ctx, "users/a", map[string]any{"username": "ann", "bio": "hi"}))
	require.NoError(t, c.Set(ctx, "users/a", map[string]any{"username": "anna"}))

	snap, err := c.Get(ctx, "users/a")
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"username": "anna"}, snap.Value())
}

func testUpdateMultiPath(t *testing.T, c *store.Client) {
	ctx := ctxT(t)
	require.NoError(t, c.Set(ctx, "friendRequests/r1", request{SenderID: "a", ReceiverID: "b", Status: "pending"}))

	require.NoError(t, c.Update(ctx, map[string]any{
		"friendRequests/r1": nil,
		"users/a/friends/b": true,
		"users/b/friends/a": true,
		"users/b/username":  "bob",
	}))

	req, err := c.Get(ctx, "friendRequests/r1")
	require.NoError(t, err)
	assert.False(t, req.Exists())

	a, err := c.Get(ctx, "users/a/friends")
	require.NoError(t, err)
	assert.Equal(t, []string{"b"}, a.Keys())

	b, err := c.Get(ctx, "users/b")
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"friends": map[string]any{"a": true}, "username": "bob"}, b.Value())
}

func testUpdateRejectsOverlap(t *testing.T, c *store.Client) {
	err := c.Update(ctxT(t), map[string]any{
		"users/a":           map[string]any{"username": "ann"},
		"users/a/friends/b": true,
	})
	require.ErrorIs(t, err, store.ErrOverlappingPaths)
}

func testDeleteSubtree(t *testing.T, c *store.Client) {
	ctx := ctxT(t)
	require.NoError(t, c.Set(ctx, "users/a", map[string]any{
		"username": "ann",
		"friends":  map[string]any{"b": true, "c": true},
	}))
	require.NoError(t, c.Delete(ctx, "users/a/friends"))

	snap, err := c.Get(ctx, "users/a")
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"username": "ann"}, snap.Value())
}

func testDeleteMissing(t *testing.T, c *store.Client) {
	ctx := ctxT(t)
	require.NoError(t, c.Delete(ctx, "friendRequests/gone"))
	require.NoError(t, c.Delete(ctx, "friendRequests/gone"))
}

func testPushAssignsKeys(t *testing.T, c *store.Client) {
	ctx := ctxT(t)
	k1, err := c.Push(ctx, "users/a/reviews", map[string]any{"beerName": "Duvel"})
	require.NoError(t, err)
	k2, err := c.Push(ctx, "users/a/reviews", map[string]any{"beerName": "Orval"})
	require.NoError(t, err)
	assert.NotEqual(t, k1, k2)

	snap, err := c.Get(ctx, "users/a/reviews")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{k1, k2}, snap.Keys())
}

func testSiblingPrefixIsolation(t *testing.T, c *store.Client) {
	ctx := ctxT(t)
	require.NoError(t, c.Set(ctx, "users/u1/username", "one"))
	require.NoError(t, c.Set(ctx, "users/u10/username", "ten"))

	snap, err := c.Get(ctx, "users/u1")
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"username": "one"}, snap.Value())

	require.NoError(t, c.Delete(ctx, "users/u1"))
	ten, err := c.Get(ctx, "users/u10/username")
	require.NoError(t, err)
	assert.Equal(t, "ten", ten.String())
}

func testInvalidPath(t *testing.T, c *store.Client) {
	ctx := ctxT(t)
	_, err := c.Get(ctx, "users/a.b")
	require.ErrorIs(t, err, store.ErrInvalidPath)
	require.ErrorIs(t, c.Set(ctx, "users//x", "v"), store.ErrInvalidPath)
	require.ErrorIs(t, c.Set(ctx, "", "v"), store.ErrInvalidPath)
}

func testSubscribe(t *testing.T, c *store.Client) {
	ctx := ctxT(t)
	sub, err := c.Subscribe(ctx, "friendRequests")
	require.NoError(t, err)

	first := next(t, sub)
	assert.False(t, first.Exists())

	require.NoError(t, c.Set(ctx, "friendRequests/r1", request{SenderID: "a", ReceiverID: "b", Status: "pending"}))
	snap := next(t, sub)
	for !snap.Exists() {
		snap = next(t, sub)
	}
	assert.Equal(t, []string{"r1"}, snap.Keys())

	sub.Close()
	sub.Close()
	for range sub.Updates() {
	}
}

func next(t *testing.T, sub *store.Subscription) store.Snapshot {
	t.Helper()
	select {
	case snap, ok := <-sub.Updates():
		require.True(t, ok, "subscription ended early: %v", sub.Err())
		return snap
	case <-time.After(10 * time.Second):
		t.Fatal("timed out waiting for snapshot")
		return store.Snapshot{}
	}
}
