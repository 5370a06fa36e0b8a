package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPublisherStoresMessages(t *testing.T) {
	t.Parallel()

	pub := New()
	id1, err := pub.Publish(context.Background(), "dataset.built", map[string]string{"run": "a"})
	require.NoError(t, err)
	assert.Equal(t, "memory-1", id1)
	id2, err := pub.Publish(context.Background(), "cast.scraped", "payload")
	require.NoError(t, err)
	assert.Equal(t, "memory-2", id2)

	msgs := pub.Messages()
	require.Len(t, msgs, 2)
	assert.Equal(t, "dataset.built", msgs[0].Event)
	assert.Equal(t, "cast.scraped", msgs[1].Event)

	msgs[0].Event = "modified"
	assert.Equal(t, "dataset.built", pub.Messages()[0].Event)
}
