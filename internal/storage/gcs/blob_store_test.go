package gcs

import (
	"testing"

	"cloud.google.com/go/storage"
	"github.com/stretchr/testify/assert"
)

func TestNewValidation(t *testing.T) {
	t.Parallel()

	_, err := New(nil, Config{Bucket: "survivor"})
	assert.Error(t, err)

	_, err = New(&storage.Client{}, Config{})
	assert.Error(t, err)

	store, err := New(&storage.Client{}, Config{Bucket: "survivor", Prefix: "/exports/"})
	assert.NoError(t, err)
	assert.Equal(t, "exports", store.prefix)
}

func TestObjectName(t *testing.T) {
	t.Parallel()

	plain := &BlobStore{}
	assert.Equal(t, "overall/all_seasons.csv", plain.objectName("/overall/all_seasons.csv"))

	prefixed := &BlobStore{prefix: "exports"}
	assert.Equal(t, "exports/overall/all_seasons.csv", prefixed.objectName("overall/all_seasons.csv"))
}
