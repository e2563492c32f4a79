package prefs

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/go-logr/logr"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptr[T any](v T) *T { return &v }

func TestDefaults(t *testing.T) {
	assert.Equal(t, Prefs{AutoExpand: true, Theme: ThemeSystem, CSVDelimiter: ","}, Defaults())
}

func TestRecordApply(t *testing.T) {
	got := Record{AutoExpand: ptr(false), Theme: ptr(ThemeDark), CSVDelimiter: ptr(";")}.Apply(Defaults())
	assert.Equal(t, Prefs{AutoExpand: false, Theme: ThemeDark, CSVDelimiter: ";"}, got)

	got = Record{Theme: ptr(Theme("neon")), CSVDelimiter: ptr("")}.Apply(Defaults())
	assert.Equal(t, Defaults(), got)
}

func TestParseTheme(t *testing.T) {
	for in, want := range map[string]Theme{"": ThemeSystem, "System": ThemeSystem, "light": ThemeLight, " DARK ": ThemeDark} {
		got, err := ParseTheme(in)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
	_, err := ParseTheme("neon")
	assert.Error(t, err)
}

func TestResolveFallsBackOnFailure(t *testing.T) {
	store := NewMemoryStore(Record{AutoExpand: ptr(false)})
	got, err := Resolve(context.Background(), store, Defaults(), logr.Discard())
	require.NoError(t, err)
	assert.False(t, got.AutoExpand)

	store.Fail(errors.New("boom"))
	got, err = Resolve(context.Background(), store, Defaults(), logr.Discard())
	assert.ErrorIs(t, err, ErrUnavailable)
	assert.Equal(t, Defaults(), got)

	got, err = Resolve(context.Background(), nil, Defaults(), logr.Discard())
	require.NoError(t, err)
	assert.Equal(t, Defaults(), got)
}

func TestMemoryStorePutMerges(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore(Record{Theme: ptr(ThemeLight)})
	require.NoError(t, store.Put(ctx, Record{CSVDelimiter: ptr(";")}))
	rec, err := store.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, ThemeLight, *rec.Theme)
	assert.Equal(t, ";", *rec.CSVDelimiter)
}

func TestFileStore(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "nested", "prefs.toml")
	store, err := NewFileStore(path)
	require.NoError(t, err)

	rec, err := store.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, Record{}, rec)

	require.NoError(t, store.Put(ctx, Record{AutoExpand: ptr(false)}))
	require.NoError(t, store.Put(ctx, Record{Theme: ptr(ThemeDark)}))
	rec, err = store.Get(ctx)
	require.NoError(t, err)
	require.NotNil(t, rec.AutoExpand)
	assert.False(t, *rec.AutoExpand)
	assert.Equal(t, ThemeDark, *rec.Theme)
	assert.Nil(t, rec.CSVDelimiter)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "auto_expand = false")
}

func TestFileStoreCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "prefs.toml")
	require.NoError(t, os.WriteFile(path, []byte("auto_expand = [oops"), 0o600))
	store, err := NewFileStore(path)
	require.NoError(t, err)
	_, err = store.Get(context.Background())
	assert.ErrorIs(t, err, ErrUnavailable)
}

type fakeRedis struct {
	hashes map[string]map[string]string
	err    error
}

func (f *fakeRedis) HGetAll(_ context.Context, key string) *redis.MapStringStringCmd {
	if f.err != nil {
		return redis.NewMapStringStringResult(nil, f.err)
	}
	out := map[string]string{}
	for k, v := range f.hashes[key] {
		out[k] = v
	}
	return redis.NewMapStringStringResult(out, nil)
}

func (f *fakeRedis) HSet(_ context.Context, key string, values ...interface{}) *redis.IntCmd {
	if f.err != nil {
		return redis.NewIntResult(0, f.err)
	}
	if f.hashes[key] == nil {
		f.hashes[key] = map[string]string{}
	}
	for i := 0; i+1 < len(values); i += 2 {
		f.hashes[key][values[i].(string)] = values[i+1].(string)
	}
	return redis.NewIntResult(int64(len(values)/2), nil)
}

func TestRedisStore(t *testing.T) {
	ctx := context.Background()
	client := &fakeRedis{hashes: map[string]map[string]string{}}
	store := NewRedisStoreWithClient(client, "")
	assert.Equal(t, DefaultRedisKey, store.Key())

	rec, err := store.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, Record{}, rec)

	require.NoError(t, store.Put(ctx, Record{AutoExpand: ptr(false), CSVDelimiter: ptr(";")}))
	assert.Equal(t, map[string]string{"autoExpand": "false", "csvDelimiter": ";"}, client.hashes[DefaultRedisKey])

	got, err := Resolve(ctx, store, Defaults(), logr.Discard())
	require.NoError(t, err)
	assert.Equal(t, Prefs{AutoExpand: false, Theme: ThemeSystem, CSVDelimiter: ";"}, got)

	other := store.WithKey("jsontable:prefs:abc")
	rec, err = other.Get(ctx)
	require.NoError(t, err)
	assert.Nil(t, rec.AutoExpand)
}

func TestRedisStoreFailures(t *testing.T) {
	ctx := context.Background()
	client := &fakeRedis{hashes: map[string]map[string]string{}, err: errors.New("connection refused")}
	store := NewRedisStoreWithClient(client, "k")

	_, err := store.Get(ctx)
	assert.ErrorIs(t, err, ErrUnavailable)
	assert.ErrorIs(t, store.Put(ctx, Record{Theme: ptr(ThemeDark)}), ErrUnavailable)

	client.err = nil
	client.hashes["k"] = map[string]string{"autoExpand": "maybe"}
	_, err = store.Get(ctx)
	assert.ErrorIs(t, err, ErrUnavailable)
}

func TestDelimiterForLocale(t *testing.T) {
	tests := []struct {
		locale string
		want   string
	}{
		{"en_US.UTF-8", ","},
		{"de_DE.UTF-8", ";"},
		{"fr", ";"},
		{"pt-PT", ";"},
		{"pt_BR", ","},
		{"sv_SE@euro", ";"},
		{"C", ","},
		{"", ","},
	}
	for _, tt := range tests {
		t.Run(tt.locale, func(t *testing.T) {
			assert.Equal(t, tt.want, DelimiterForLocale(tt.locale))
		})
	}
}
