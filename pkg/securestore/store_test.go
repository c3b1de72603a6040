package securestore

import (
	"context"
	"encoding/base64"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"rbx/logicore/pkg/config"
	"rbx/logicore/pkg/errorutil"
)

// 测试里用较少的迭代次数，派生逻辑与生产一致
const testIterations = 1000

func newStore(t *testing.T, backend Backend) *Store {
	t.Helper()
	s, err := New(backend, Options{Passphrase: "test-passphrase", Iterations: testIterations})
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	return s
}

func TestRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := newStore(t, NewMemoryBackend(0))

	values := []string{"", "hello", "नमस्ते दुनिया", "运费🚚", strings.Repeat("x", 10000)}
	for i, v := range values {
		key := string(rune('a' + i))
		if err := s.SetItem(ctx, key, v); err != nil {
			t.Fatalf("set %q: %v", key, err)
		}
		got, ok, err := s.GetItem(ctx, key)
		if err != nil || !ok {
			t.Fatalf("get %q: ok=%v err=%v", key, ok, err)
		}
		if got != v {
			t.Fatalf("round trip mismatch for %q", key)
		}
	}
}

func TestEnvelopeFormatAndFreshIV(t *testing.T) {
	ctx := context.Background()
	backend := NewMemoryBackend(0)
	s := newStore(t, backend)

	if err := s.SetItem(ctx, "k", "same value"); err != nil {
		t.Fatalf("set: %v", err)
	}
	first, _, _ := backend.Get(ctx, "k")
	if err := s.SetItem(ctx, "k", "same value"); err != nil {
		t.Fatalf("set: %v", err)
	}
	second, _, _ := backend.Get(ctx, "k")

	if first == second {
		t.Fatalf("two writes of the same value must differ")
	}

	raw, err := base64.StdEncoding.DecodeString(first)
	if err != nil {
		t.Fatalf("stored value must be standard base64: %v", err)
	}
	if want := ivLen + len("same value") + tagLen; len(raw) != want {
		t.Fatalf("expected %d bytes (iv+ct+tag), got %d", want, len(raw))
	}
	if strings.Contains(first, "same value") {
		t.Fatalf("plaintext leaked into storage")
	}
}

func TestGetMissingKey(t *testing.T) {
	s := newStore(t, NewMemoryBackend(0))
	v, ok, err := s.GetItem(context.Background(), "nope")
	if err != nil || ok || v != "" {
		t.Fatalf("expected absent, got %q %v %v", v, ok, err)
	}
}

func TestTamperedValueIsStorageError(t *testing.T) {
	ctx := context.Background()
	backend := NewMemoryBackend(0)
	s := newStore(t, backend)

	if err := s.SetItem(ctx, "token", "secret"); err != nil {
		t.Fatalf("set: %v", err)
	}
	stored, _, _ := backend.Get(ctx, "token")
	raw, _ := base64.StdEncoding.DecodeString(stored)
	raw[len(raw)-1] ^= 0x01

	cases := map[string]string{
		"flipped tag": base64.StdEncoding.EncodeToString(raw),
		"not base64":  "%%%not-base64%%%",
		"too short":   base64.StdEncoding.EncodeToString([]byte("short")),
	}
	for name, value := range cases {
		t.Run(name, func(t *testing.T) {
			_ = backend.Set(ctx, "token", value)
			v, ok, err := s.GetItem(ctx, "token")
			if !errorutil.IsKind(err, errorutil.KindStorage) {
				t.Fatalf("expected STORAGE error, got %v", err)
			}
			if ok || v != "" {
				t.Fatalf("must not return plaintext on failure, got %q", v)
			}
		})
	}
}

func TestWrongPassphraseCannotRead(t *testing.T) {
	ctx := context.Background()
	backend := NewMemoryBackend(0)
	if err := newStore(t, backend).SetItem(ctx, "k", "v"); err != nil {
		t.Fatalf("set: %v", err)
	}

	other, err := New(backend, Options{Passphrase: "other", Iterations: testIterations})
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	if _, _, err := other.GetItem(ctx, "k"); !errorutil.IsKind(err, errorutil.KindStorage) {
		t.Fatalf("expected STORAGE error, got %v", err)
	}
}

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) { return 0, errors.New("entropy exhausted") }

func TestRandomSourceFailure(t *testing.T) {
	backend := NewMemoryBackend(0)
	s, err := New(backend, Options{Passphrase: "p", Iterations: testIterations, Rand: failingReader{}})
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	if err := s.SetItem(context.Background(), "k", "v"); !errorutil.IsKind(err, errorutil.KindStorage) {
		t.Fatalf("expected STORAGE error, got %v", err)
	}
	if backend.Len() != 0 {
		t.Fatalf("nothing should be written")
	}
}

func TestQuotaExceeded(t *testing.T) {
	ctx := context.Background()
	s := newStore(t, NewMemoryBackend(64))

	err := s.SetItem(ctx, "big", strings.Repeat("x", 100))
	if !errorutil.IsKind(err, errorutil.KindStorage) || !errors.Is(err, ErrQuotaExceeded) {
		t.Fatalf("expected quota STORAGE error, got %v", err)
	}
	if err := s.SetItem(ctx, "small", "ok"); err != nil {
		t.Fatalf("small value should fit: %v", err)
	}
}

func TestRemoveAndClear(t *testing.T) {
	ctx := context.Background()
	s := newStore(t, NewMemoryBackend(0))

	_ = s.SetItem(ctx, "a", "1")
	_ = s.SetItem(ctx, "b", "2")

	s.RemoveItem(ctx, "a")
	s.RemoveItem(ctx, "missing")
	if _, ok, _ := s.GetItem(ctx, "a"); ok {
		t.Fatalf("a should be removed")
	}
	if _, ok, _ := s.GetItem(ctx, "b"); !ok {
		t.Fatalf("b should remain")
	}

	s.Clear(ctx)
	if _, ok, _ := s.GetItem(ctx, "b"); ok {
		t.Fatalf("clear should remove everything")
	}
}

func TestFileBackendSurvivesReload(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "nested", "store.json")

	fb, err := NewFileBackend(path, 0)
	if err != nil {
		t.Fatalf("file backend: %v", err)
	}
	if err := newStore(t, fb).SetItem(ctx, "session", "abc123"); err != nil {
		t.Fatalf("set: %v", err)
	}

	// 新的后端 + 新的 Store，相同口令
	fb2, _ := NewFileBackend(path, 0)
	s2 := newStore(t, fb2)
	v, ok, err := s2.GetItem(ctx, "session")
	if err != nil || !ok || v != "abc123" {
		t.Fatalf("expected value after reload, got %q %v %v", v, ok, err)
	}

	s2.Clear(ctx)
	if _, ok, _ := s2.GetItem(ctx, "session"); ok {
		t.Fatalf("clear should remove file contents")
	}
}

func TestFileBackendQuota(t *testing.T) {
	fb, _ := NewFileBackend(filepath.Join(t.TempDir(), "store.json"), 128)
	s := newStore(t, fb)

	err := s.SetItem(context.Background(), "k", strings.Repeat("v", 200))
	if !errors.Is(err, ErrQuotaExceeded) {
		t.Fatalf("expected quota error, got %v", err)
	}
}

func TestRedisBackend(t *testing.T) {
	ctx := context.Background()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()

	// 其他前缀的 key 不受 Clear 影响
	mr.Set("other:keep", "1")

	rb, err := NewRedisBackend(client, "securestore:")
	if err != nil {
		t.Fatalf("redis backend: %v", err)
	}
	s := newStore(t, rb)
	for _, k := range []string{"a", "b", "c"} {
		if err := s.SetItem(ctx, k, "value-"+k); err != nil {
			t.Fatalf("set %s: %v", k, err)
		}
	}
	if !mr.Exists("securestore:a") {
		t.Fatalf("expected prefixed key")
	}

	v, ok, err := s.GetItem(ctx, "b")
	if err != nil || !ok || v != "value-b" {
		t.Fatalf("unexpected get: %q %v %v", v, ok, err)
	}

	s.RemoveItem(ctx, "a")
	if mr.Exists("securestore:a") {
		t.Fatalf("a should be deleted")
	}

	s.Clear(ctx)
	if mr.Exists("securestore:b") || mr.Exists("securestore:c") {
		t.Fatalf("clear should delete prefixed keys")
	}
	if !mr.Exists("other:keep") {
		t.Fatalf("clear must not touch other prefixes")
	}
}

func TestNewRequiresPassphrase(t *testing.T) {
	if _, err := New(NewMemoryBackend(0), Options{}); !errorutil.IsKind(err, errorutil.KindInvalidInput) {
		t.Fatalf("expected INVALID_INPUT, got %v", err)
	}
}

func TestDeriveKeyIsDeterministic(t *testing.T) {
	a := DeriveKey("p", DefaultSalt, testIterations)
	b := DeriveKey("p", DefaultSalt, testIterations)
	if len(a) != keyLen || string(a) != string(b) {
		t.Fatalf("derivation must be deterministic and 32 bytes")
	}
	if string(a) == string(DeriveKey("q", DefaultSalt, testIterations)) {
		t.Fatalf("different passphrases must give different keys")
	}
}

func TestNewFromConfig(t *testing.T) {
	ctx := context.Background()
	cfg := config.StoreConfig{
		Backend:    config.BackendFile,
		Path:       filepath.Join(t.TempDir(), "store.json"),
		Passphrase: "cfg-pass",
		Iterations: testIterations,
	}

	s, err := NewFromConfig(cfg, nil, nil)
	if err != nil {
		t.Fatalf("new from config: %v", err)
	}
	if err := s.SetItem(ctx, "k", "v"); err != nil {
		t.Fatalf("set: %v", err)
	}

	cfg.Backend = config.BackendRedis
	if _, err := NewFromConfig(cfg, nil, nil); err == nil {
		t.Fatalf("redis backend without client should fail")
	}
	cfg.Backend = config.BackendRedis
	cfg.KeyPrefix = ""
	client := redis.NewClient(&redis.Options{Addr: miniredis.RunT(t).Addr()})
	defer client.Close()
	if _, err := NewFromConfig(cfg, client, nil); !errors.Is(err, ErrEmptyPrefix) {
		t.Fatalf("redis backend without prefix should fail, got %v", err)
	}
	cfg.Backend = "s3"
	if _, err := NewFromConfig(cfg, nil, nil); err == nil {
		t.Fatalf("unknown backend should fail")
	}
}

func TestRedisBackendRequiresPrefix(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()

	if _, err := NewRedisBackend(client, ""); !errors.Is(err, ErrEmptyPrefix) {
		t.Fatalf("expected ErrEmptyPrefix, got %v", err)
	}
	if _, err := NewRedisBackend(nil, "securestore:"); err == nil {
		t.Fatalf("nil client should be rejected")
	}
}

func TestRedisClearTreatsPrefixLiterally(t *testing.T) {
	ctx := context.Background()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()

	mr.Set("lmstfy:unrelated", "1")
	mr.Set("store-x:other", "1")

	rb, err := NewRedisBackend(client, "store*")
	if err != nil {
		t.Fatalf("redis backend: %v", err)
	}
	s := newStore(t, rb)
	if err := s.SetItem(ctx, "k", "v"); err != nil {
		t.Fatalf("set: %v", err)
	}

	s.Clear(ctx)
	if mr.Exists("store*k") {
		t.Fatalf("own key should be cleared")
	}
	if !mr.Exists("store-x:other") || !mr.Exists("lmstfy:unrelated") {
		t.Fatalf("glob characters in the prefix must not widen Clear")
	}
}
