package archive

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"contactd/internal/contact/models"
	"contactd/internal/kv"
	"contactd/pkg/requestcontext"
)

var fixedNow = time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)

type failingStore struct{ kv.Store }

func (failingStore) Put(context.Context, string, []byte, time.Duration) error {
	return errors.New("connection refused")
}

func TestSave(t *testing.T) {
	mem := kv.NewMemoryStore(kv.WithClock(func() time.Time { return fixedNow }))
	store, err := New(mem, WithIDGenerator(func() string { return "b7c1" }))
	require.NoError(t, err)

	ctx := requestcontext.WithTime(context.Background(), fixedNow)
	ts := int64(1773133197000)
	key, err := store.Save(ctx, models.OutboundMessage{
		Name:            "Ada",
		Email:           "ada@example.com",
		Subject:         "Hello",
		Message:         "A message long enough",
		TimestampMillis: &ts,
	})
	require.NoError(t, err)
	assert.Equal(t, "contact:1773133200000:b7c1", key)
	assert.Equal(t, DefaultTTL, mem.TTL(key))

	raw, err := mem.Get(ctx, key)
	require.NoError(t, err)

	var stored map[string]any
	require.NoError(t, json.Unmarshal(raw, &stored))
	assert.Equal(t, "Ada", stored["name"])
	assert.Equal(t, "en", stored["lang"])
	assert.Equal(t, "2026-03-10T09:00:00Z", stored["createdAt"])
	assert.EqualValues(t, ts, stored["ts"])
	assert.NotContains(t, stored, "company")
	assert.NotContains(t, stored, "captcha")
}

func TestSaveKeepsLanguageAndUniqueKeys(t *testing.T) {
	mem := kv.NewMemoryStore()
	store, err := New(mem, WithTTL(time.Hour))
	require.NoError(t, err)

	ctx := requestcontext.WithTime(context.Background(), fixedNow)
	msg := models.OutboundMessage{Name: "Ada", Language: "ja"}

	k1, err := store.Save(ctx, msg)
	require.NoError(t, err)
	k2, err := store.Save(ctx, msg)
	require.NoError(t, err)
	assert.NotEqual(t, k1, k2, "same millisecond still yields distinct keys")
	assert.Len(t, mem.Keys(KeyPrefix), 2)

	raw, err := mem.Get(ctx, k1)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"lang":"ja"`)
}

func TestSaveError(t *testing.T) {
	store, err := New(failingStore{Store: kv.NewMemoryStore()})
	require.NoError(t, err)

	_, err = store.Save(context.Background(), models.OutboundMessage{Name: "Ada"})
	assert.ErrorContains(t, err, "connection refused")
}

func TestNewRequiresStore(t *testing.T) {
	_, err := New(nil)
	assert.Error(t, err)
}
