package redis

import (
	"context"
	"errors"
	"testing"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/invoice-builder/internal/domain/entity"
)

// fakeKV guarda strings en memoria y registra el TTL pedido.
type fakeKV struct {
	data map[string]string
	ttl  map[string]time.Duration
	err  error
}

func newFakeKV() *fakeKV {
	return &fakeKV{data: map[string]string{}, ttl: map[string]time.Duration{}}
}

func (f *fakeKV) Get(_ context.Context, key string) *goredis.StringCmd {
	if f.err != nil {
		return goredis.NewStringResult("", f.err)
	}
	v, ok := f.data[key]
	if !ok {
		return goredis.NewStringResult("", goredis.Nil)
	}
	return goredis.NewStringResult(v, nil)
}

func (f *fakeKV) Set(_ context.Context, key string, value interface{}, exp time.Duration) *goredis.StatusCmd {
	if f.err != nil {
		return goredis.NewStatusResult("", f.err)
	}
	f.data[key] = string(value.([]byte))
	f.ttl[key] = exp
	return goredis.NewStatusResult("OK", nil)
}

func (f *fakeKV) Del(_ context.Context, keys ...string) *goredis.IntCmd {
	if f.err != nil {
		return goredis.NewIntResult(0, f.err)
	}
	var n int64
	for _, k := range keys {
		if _, ok := f.data[k]; ok {
			delete(f.data, k)
			n++
		}
	}
	return goredis.NewIntResult(n, nil)
}

func TestDraftRepo_SaveLoadDeleteConTTL(t *testing.T) {
	kv := newFakeKV()
	repo := NewDraftRepository(kv, 72*time.Hour)
	ctx := context.Background()

	d := &entity.Draft{
		Header: entity.InvoiceHeader{InvoiceNumber: "INV-3", Currency: "USD"},
		Items:  []entity.LineItem{{ID: "a", Quantity: decimal.NewFromInt(3), Rate: decimal.RequireFromString("9.99")}},
	}
	require.NoError(t, repo.Save(ctx, "invoice-draft:c:u", d))
	assert.Equal(t, 72*time.Hour, kv.ttl["invoice-draft:c:u"])

	got, err := repo.Load(ctx, "invoice-draft:c:u")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "INV-3", got.Header.InvoiceNumber)
	assert.True(t, got.Items[0].Rate.Equal(decimal.RequireFromString("9.99")))

	require.NoError(t, repo.Delete(ctx, "invoice-draft:c:u"))
	got, err = repo.Load(ctx, "invoice-draft:c:u")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestDraftRepo_Errores(t *testing.T) {
	cause := errors.New("READONLY You can't write against a read only replica")
	kv := newFakeKV()
	kv.err = cause
	repo := NewDraftRepository(kv, 0)
	ctx := context.Background()

	assert.ErrorIs(t, repo.Save(ctx, "k", &entity.Draft{}), cause)
	_, err := repo.Load(ctx, "k")
	assert.ErrorIs(t, err, cause)
	assert.ErrorIs(t, repo.Delete(ctx, "k"), cause)
	assert.Error(t, repo.Save(ctx, "k", nil))
}

func TestDraftRepo_JSONCorrupto(t *testing.T) {
	kv := newFakeKV()
	kv.data["k"] = "{"
	_, err := NewDraftRepository(kv, 0).Load(context.Background(), "k")
	assert.Error(t, err)
}
