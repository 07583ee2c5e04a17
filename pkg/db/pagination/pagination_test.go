package pagination

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestCursorRoundTrip(t *testing.T) {
	in := Cursor{CreatedAt: time.Date(2025, 5, 1, 10, 0, 0, 123, time.UTC), ID: "42"}

	raw, err := EncodeCursor(in)
	require.NoError(t, err)

	out, err := DecodeCursor(raw)
	require.NoError(t, err)
	require.True(t, in.CreatedAt.Equal(out.CreatedAt))
	require.Equal(t, in.ID, out.ID)

	_, err = DecodeCursor("%%%")
	require.Error(t, err)
}

func TestPageSize(t *testing.T) {
	require.Equal(t, DefaultLimit, Pagination{}.PageSize())
	require.Equal(t, 7, Pagination{Limit: 7}.PageSize())
	require.Equal(t, MaxLimit, Pagination{Limit: 10_000}.PageSize())
}

func TestBuildCursorPage(t *testing.T) {
	extract := func(id string) Cursor { return Cursor{ID: id} }

	items, info, err := BuildCursorPage([]string{"c", "b"}, 2, extract)
	require.NoError(t, err)
	require.Equal(t, []string{"c", "b"}, items)
	require.False(t, info.HasMore)
	require.Empty(t, info.NextCursor)

	items, info, err = BuildCursorPage([]string{"c", "b", "a"}, 2, extract)
	require.NoError(t, err)
	require.Equal(t, []string{"c", "b"}, items)
	require.True(t, info.HasMore)

	next, err := DecodeCursor(info.NextCursor)
	require.NoError(t, err)
	require.Equal(t, "b", next.ID)
}
