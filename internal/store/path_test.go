package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalize(t *testing.T) {
	testCases := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{in: "", want: ""},
		{in: "/", want: ""},
		{in: "/users/a/", want: "users/a"},
		{in: "friendRequests/r1/status", want: "friendRequests/r1/status"},
		{in: "users//a", wantErr: true},
		{in: "users/a.b", wantErr: true},
		{in: "users/$a", wantErr: true},
		{in: "users/[0]", wantErr: true},
		{in: "users/a#b", wantErr: true},
	}

	for _, tc := range testCases {
		t.Run(tc.in, func(t *testing.T) {
			got, err := Normalize(tc.in)
			if tc.wantErr {
				require.ErrorIs(t, err, ErrInvalidPath)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestValidateKey(t *testing.T) {
	assert.NoError(t, ValidateKey("0190a1b2-c3d4"))
	for _, key := range []string{"", "a/b", "/", "a.b", "a$", "a\x00"} {
		assert.Error(t, ValidateKey(key), "key %q", key)
	}
}

func TestUnderAndRelated(t *testing.T) {
	assert.True(t, Under("users/u1/friends/u2", "users/u1"))
	assert.True(t, Under("users/u1", "users/u1"))
	assert.True(t, Under("anything", ""))
	assert.False(t, Under("users/u10", "users/u1"))
	assert.False(t, Under("users", "users/u1"))

	assert.True(t, Related("users", "users/u1/friends"))
	assert.True(t, Related("users/u1/friends", "users"))
	assert.False(t, Related("users/u1", "friendRequests"))
}

func TestFlattenAndBuild(t *testing.T) {
	value := map[string]any{
		"username": "ann",
		"friends":  map[string]any{"b": true},
		"location": map[string]any{"latitude": 51.2, "longitude": 4.4},
		"empty":    map[string]any{},
		"tags":     []any{"ipa", "stout"},
	}

	leaves, err := Flatten("users/a", value)
	require.NoError(t, err)
	assert.Equal(t, map[string][]byte{
		"users/a/username":           []byte(`"ann"`),
		"users/a/friends/b":          []byte(`true`),
		"users/a/location/latitude":  []byte(`51.2`),
		"users/a/location/longitude": []byte(`4.4`),
		"users/a/tags/0":             []byte(`"ipa"`),
		"users/a/tags/1":             []byte(`"stout"`),
	}, leaves)

	built, err := Build("users/a", leaves)
	require.NoError(t, err)
	assert.Equal(t, map[string]any{
		"username": "ann",
		"friends":  map[string]any{"b": true},
		"location": map[string]any{"latitude": 51.2, "longitude": 4.4},
		"tags":     map[string]any{"0": "ipa", "1": "stout"},
	}, built)

	scalar, err := Build("users/a/username", leaves)
	require.NoError(t, err)
	assert.Equal(t, "ann", scalar)

	missing, err := Build("users/b", leaves)
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestFlattenRejectsBadKeys(t *testing.T) {
	_, err := Flatten("users", map[string]any{"a.b": true})
	require.ErrorIs(t, err, ErrInvalidPath)

	_, err = Flatten("", "scalar")
	require.ErrorIs(t, err, ErrInvalidPath)
}

func TestBuildMutation(t *testing.T) {
	m, err := buildMutation(map[string]any{
		"friendRequests/r1": nil,
		"users/a/friends/b": true,
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"friendRequests/r1", "users/a/friends/b"}, m.Clear)
	assert.Equal(t, map[string][]byte{"users/a/friends/b": []byte("true")}, m.Put)
	assert.ElementsMatch(t, []string{"friendRequests/r1", "users/a/friends/b"}, m.Paths())

	_, err = buildMutation(map[string]any{"users/a": 1, "/users/a/": 2})
	require.ErrorIs(t, err, ErrOverlappingPaths)
}

func TestSnapshotChildren(t *testing.T) {
	snap := NewSnapshot("friendRequests", map[string]any{
		"r2": map[string]any{"status": "pending"},
		"r1": map[string]any{"status": "accepted"},
	})

	children := snap.Children()
	require.Len(t, children, 2)
	assert.Equal(t, "r1", children[0].Key())
	assert.Equal(t, "friendRequests/r1", children[0].Path())
	assert.Equal(t, "pending", snap.Child("r2").Child("status").String())
	assert.False(t, snap.Child("r3").Exists())

	var decoded struct {
		Status string `json:"status"`
	}
	require.NoError(t, children[1].Decode(&decoded))
	assert.Equal(t, "pending", decoded.Status)
}
