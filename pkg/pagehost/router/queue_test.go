package router

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseIsDeterministic(t *testing.T) {
	want := Queue{{View: "A"}, {View: "B", QueryString: "x=1"}}
	for i := 0; i < 3; i++ {
		q, err := Parse("A/B?x=1", nil)
		require.NoError(t, err)
		assert.Equal(t, want, q)
	}
}

func TestParseEmptyPathFails(t *testing.T) {
	for _, path := range []string{"", "   ", "/", "//"} {
		_, err := Parse(path, nil)
		require.Error(t, err, "path %q", path)
		assert.ErrorIs(t, err, ErrParse)
	}
}

func TestParseChecksRegistry(t *testing.T) {
	reg := NewRegistry()
	require.NoError(t, reg.Register("Home", "", ""))

	_, err := Parse("Home/Missing", reg)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrParse)
	assert.ErrorIs(t, err, ErrNotRegistered)

	q, err := Parse("/Home/", reg)
	require.NoError(t, err)
	assert.Equal(t, Queue{{View: "Home"}}, q)
}

func TestParseSegmentQueries(t *testing.T) {
	q, err := Parse("Shell?tab=2/Details?id=42&mode=view", nil)
	require.NoError(t, err)
	require.Len(t, q, 2)
	assert.Equal(t, Entry{View: "Shell", QueryString: "tab=2"}, q[0])
	assert.Equal(t, Entry{View: "Details", QueryString: "id=42&mode=view"}, q.Last())
	assert.Equal(t, "Shell?tab=2/Details?id=42&mode=view", q.String())
}

func TestParseStripsSchemeAndHost(t *testing.T) {
	q, err := Parse("app://main/Home/Details?id=7", nil)
	require.NoError(t, err)
	assert.Equal(t, Queue{{View: "Home"}, {View: "Details", QueryString: "id=7"}}, q)
}

func TestParseRejectsBadSegments(t *testing.T) {
	_, err := Parse("Home/?id=1", nil)
	assert.ErrorIs(t, err, ErrParse)

	_, err = Parse("Details?id=%zz", nil)
	assert.ErrorIs(t, err, ErrParse)
}

func TestQueueLastOnEmpty(t *testing.T) {
	assert.Equal(t, Entry{}, Queue(nil).Last())
}
