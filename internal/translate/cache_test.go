package translate

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

type fakeTranslator struct {
	out   string
	err   error
	calls int
}

func (f *fakeTranslator) Translate(_ context.Context, _, _, _ string) (string, error) {
	f.calls++
	return f.out, f.err
}

func TestCachedTranslator_HitSkipsRemote(t *testing.T) {
	fake := &fakeTranslator{out: "hello"}
	ct := NewCachedTranslator(fake, NewMemoryCache())

	got, changed := ct.Translate(context.Background(), "olá", "auto", "en")
	assert.Equal(t, "hello", got)
	assert.True(t, changed)
	assert.Equal(t, 1, fake.calls)

	got, _ = ct.Translate(context.Background(), "olá", "auto", "en")
	assert.Equal(t, "hello", got)
	assert.Equal(t, 1, fake.calls, "second call must come from the cache")
}

func TestCachedTranslator_FailurePassesThroughAndPoisonsCache(t *testing.T) {
	fake := &fakeTranslator{err: errors.New("remote down")}
	ct := NewCachedTranslator(fake, NewMemoryCache())

	got, changed := ct.Translate(context.Background(), "olá", "auto", "en")
	assert.Equal(t, "olá", got)
	assert.False(t, changed)

	// The failure is cached as a no-op translation: no retry per row.
	got, _ = ct.Translate(context.Background(), "olá", "auto", "en")
	assert.Equal(t, "olá", got)
	assert.Equal(t, 1, fake.calls)
}

func TestCachedTranslator_EmptyTextShortCircuits(t *testing.T) {
	fake := &fakeTranslator{out: "x"}
	ct := NewCachedTranslator(fake, NewMemoryCache())

	got, changed := ct.Translate(context.Background(), "   ", "auto", "en")
	assert.Equal(t, "   ", got)
	assert.False(t, changed)
	assert.Equal(t, 0, fake.calls)
}

func TestCacheKey_NormalizesCase(t *testing.T) {
	assert.Equal(t, cacheKey("Hello There", "en"), cacheKey("hello there", "en"))
	assert.NotEqual(t, cacheKey("hello", "en"), cacheKey("hello", "es"))
}
