package search

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMockProvider_Search(t *testing.T) {
	data, err := NewMockProvider().Search(context.Background(), "remote work")
	require.NoError(t, err)
	require.Equal(t, "remote work", data.Query)
	require.Len(t, data.Results, 10)

	for i, r := range data.Results {
		require.Equal(t, i+1, r.Rank)
	}
	require.Equal(t, "https://example0.com/article", data.Results[0].URL)
	require.Equal(t, "Top 19 remote work - Complete Guide 2025", data.Results[9].Title)
	require.Contains(t, data.Results[3].Snippet, "best practices for remote work")
}

func TestMockProvider_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := NewMockProvider().Search(ctx, "x")
	require.ErrorIs(t, err, context.Canceled)
}
