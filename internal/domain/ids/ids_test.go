package ids

import (
	"testing"

	"github.com/stretchr/testify/require"
)

const testULID = "01HYX3KQW7ERTV9XNBM2P8QJZF"

func TestNewULIDReturnsValid(t *testing.T) {
	value, err := NewULID()

	require.NoError(t, err)
	require.NoError(t, ValidateULID(value))
}

func TestNewULIDIsMonotonic(t *testing.T) {
	prev, err := NewULID()
	require.NoError(t, err)
	for i := 0; i < 100; i++ {
		next, err := NewULID()
		require.NoError(t, err)
		require.Greater(t, next, prev)
		prev = next
	}
}

func TestIsULIDAndValidateULID(t *testing.T) {
	require.True(t, IsULID(testULID))
	require.True(t, IsULID(" "+testULID+" "))
	require.NoError(t, ValidateULID(testULID))

	require.False(t, IsULID("not-a-ulid"))
	require.ErrorIs(t, ValidateULID("not-a-ulid"), ErrInvalidULID)
}

func TestNormalize(t *testing.T) {
	got, err := Normalize("  01hyx3kqw7ertv9xnbm2p8qjzf ")
	require.NoError(t, err)
	require.Equal(t, testULID, got)

	_, err = Normalize("")
	require.ErrorIs(t, err, ErrInvalidULID)
}
