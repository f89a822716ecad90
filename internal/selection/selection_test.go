package selection

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSelectionKeepsClickOrder(t *testing.T) {
	s := New()
	require.NoError(t, s.Add("c"))
	require.NoError(t, s.Add("a"))
	require.NoError(t, s.Add("b"))

	assert.Equal(t, []string{"c", "a", "b"}, s.IDs())
	assert.ErrorIs(t, s.Add("a"), ErrDuplicate)
	assert.Equal(t, 3, s.Len())
}

func TestSelectionRemove(t *testing.T) {
	s := New()
	_ = s.Add("a")
	_ = s.Add("b")
	_ = s.Add("c")

	assert.True(t, s.Remove("b"))
	assert.False(t, s.Remove("b"))
	assert.Equal(t, []string{"a", "c"}, s.IDs())
	assert.False(t, s.Contains("b"))

	// re-adding goes to the end
	require.NoError(t, s.Add("b"))
	assert.Equal(t, []string{"a", "c", "b"}, s.IDs())

	s.Clear()
	assert.Zero(t, s.Len())
}

func TestIDsReturnsCopy(t *testing.T) {
	s := New()
	_ = s.Add("a")
	ids := s.IDs()
	ids[0] = "z"
	assert.Equal(t, []string{"a"}, s.IDs())
}
