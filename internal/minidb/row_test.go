package minidb

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRow_MarshalUnmarshal(t *testing.T) {
	t.Parallel()

	aRow := gen.Row()

	buf, err := aRow.Marshal()
	require.NoError(t, err)
	assert.Len(t, buf, RowSize)

	var actual Row
	require.NoError(t, UnmarshalRow(buf, &actual))
	assert.Equal(t, aRow, actual)
}

func TestRow_Marshal_NullPadding(t *testing.T) {
	t.Parallel()

	aRow := Row{
		ID:       42,
		Username: "bob",
		Email:    "bob@example.com",
	}

	buf, err := aRow.Marshal()
	require.NoError(t, err)

	// ID is little endian
	assert.Equal(t, []byte{42, 0, 0, 0}, buf[0:4])

	// Text fields are null padded to their fixed width
	assert.Equal(t, []byte("bob"), buf[4:7])
	assert.True(t, bytes.Equal(buf[7:4+UsernameSize], make([]byte, UsernameSize-3)))
	assert.Equal(t, []byte("bob@example.com"), buf[4+UsernameSize:4+UsernameSize+15])
}

func TestRow_Marshal_FieldTooLong(t *testing.T) {
	t.Parallel()

	_, err := Row{ID: 1, Username: strings.Repeat("a", UsernameSize+1)}.Marshal()
	assert.Error(t, err)

	_, err = Row{ID: 1, Email: strings.Repeat("a", EmailSize+1)}.Marshal()
	assert.Error(t, err)

	// Exactly at the limit is fine, no null padding remains
	aRow := Row{
		ID:       1,
		Username: strings.Repeat("u", UsernameSize),
		Email:    strings.Repeat("e", EmailSize),
	}
	buf, err := aRow.Marshal()
	require.NoError(t, err)

	var actual Row
	require.NoError(t, UnmarshalRow(buf, &actual))
	assert.Equal(t, aRow, actual)
}

func TestUnmarshalRow_BufferTooSmall(t *testing.T) {
	t.Parallel()

	var aRow Row
	assert.Error(t, UnmarshalRow(make([]byte, RowSize-1), &aRow))
}
