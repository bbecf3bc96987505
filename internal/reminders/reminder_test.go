package reminders

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseListName(t *testing.T) {
	for _, name := range []string{"Active", "Delegated", "Backlog"} {
		got, err := ParseListName(name)
		require.NoError(t, err)
		assert.Equal(t, ListName(name), got)
	}

	for _, name := range []string{"", "active", "Archive", " Active"} {
		_, err := ParseListName(name)
		assert.True(t, errors.Is(err, ErrUnknownList), "expected %q to be rejected", name)
	}
}

func TestListStringsOrder(t *testing.T) {
	assert.Equal(t, []string{"Active", "Delegated", "Backlog"}, ListStrings())
}

func TestDecodeList(t *testing.T) {
	out := `[
	  {"id":"1","title":"Buy milk","isCompleted":false,"priority":0,"list":"Active"},
	  {"id":"2","title":"Call Bob","notes":"re: invoice","dueDate":"2026-10-20","isCompleted":true,"priority":5,"list":"Active","creationDate":"2026-10-01"}
	]`

	items, err := DecodeList([]byte(out))
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "1", items[0].ID)
	assert.Equal(t, "Call Bob", items[1].Title)
	assert.Equal(t, "re: invoice", items[1].Notes)
	assert.True(t, items[1].IsCompleted)
	assert.Equal(t, 5, items[1].Priority)
}

func TestDecodeListBlankAndNull(t *testing.T) {
	items, err := DecodeList([]byte("  \n"))
	require.NoError(t, err)
	assert.NotNil(t, items)
	assert.Empty(t, items)

	items, err = DecodeList([]byte("null"))
	require.NoError(t, err)
	assert.NotNil(t, items)
	assert.Empty(t, items)
}

func TestDecodeListMalformed(t *testing.T) {
	_, err := DecodeList([]byte("Reminders: none"))
	assert.Error(t, err)
}
