// Package securestore 加密键值存储。
//
// 密钥由口令经 PBKDF2-HMAC-SHA256（默认 100,000 次、固定盐）派生，仅派生一次；
// 每次写入使用新的 12 字节随机 IV，以 AES-256-GCM 加密，
// 存储格式为 base64(iv || ciphertext || tag)。
//
// 口令与盐随程序分发，这里只防止明文落盘，不提供针对本机攻击者的机密性。
// 同一 key 的并发写入以最后一次为准。
package securestore

import (
	"context"
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"io"

	"golang.org/x/crypto/pbkdf2"

	"rbx/logicore/pkg/errorutil"
	"rbx/logicore/pkg/logger"
)

const (
	// DefaultIterations PBKDF2 迭代次数
	DefaultIterations = 100000
	// DefaultSalt 固定盐
	DefaultSalt = "logicore-static-salt"

	keyLen   = 32 // AES-256
	ivLen    = 12
	tagLen   = 16
	minBytes = ivLen + tagLen
)

// Options 密钥派生参数
type Options struct {
	Passphrase string
	Salt       string
	Iterations int
	Logger     logger.Logger
	Rand       io.Reader // 测试注入，默认 crypto/rand
}

// Store 加密键值存储，可并发使用
type Store struct {
	backend Backend
	aead    cipher.AEAD
	rand    io.Reader
	logger  logger.Logger
}

// New 派生密钥并创建 Store
func New(backend Backend, opts Options) (*Store, error) {
	if backend == nil {
		return nil, errorutil.InvalidInput("backend", "backend is required")
	}
	if opts.Passphrase == "" {
		return nil, errorutil.InvalidInput("passphrase", "passphrase is required")
	}
	if opts.Salt == "" {
		opts.Salt = DefaultSalt
	}
	if opts.Iterations <= 0 {
		opts.Iterations = DefaultIterations
	}
	if opts.Logger == nil {
		opts.Logger = logger.NewNop()
	}
	if opts.Rand == nil {
		opts.Rand = rand.Reader
	}

	key := DeriveKey(opts.Passphrase, opts.Salt, opts.Iterations)
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, errorutil.Storage("init cipher failed", err)
	}
	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, errorutil.Storage("init gcm failed", err)
	}

	return &Store{
		backend: backend,
		aead:    aead,
		rand:    opts.Rand,
		logger:  opts.Logger,
	}, nil
}

// DeriveKey PBKDF2-HMAC-SHA256 派生 32 字节密钥
func DeriveKey(passphrase, salt string, iterations int) []byte {
	return pbkdf2.Key([]byte(passphrase), []byte(salt), iterations, keyLen, sha256.New)
}

// SetItem 加密并写入
func (s *Store) SetItem(ctx context.Context, key, value string) error {
	if key == "" {
		return errorutil.InvalidInput("key", "key is required")
	}

	envelope, err := s.seal([]byte(value))
	if err != nil {
		return err
	}

	if err := s.backend.Set(ctx, key, envelope); err != nil {
		return errorutil.Storage(fmt.Sprintf("write %q failed", key), err)
	}
	return nil
}

// GetItem 读取并解密；不存在时返回 ("", false, nil)
// 数据损坏或被篡改时返回 STORAGE 错误，绝不返回错误的明文
func (s *Store) GetItem(ctx context.Context, key string) (string, bool, error) {
	envelope, ok, err := s.backend.Get(ctx, key)
	if err != nil {
		return "", false, errorutil.Storage(fmt.Sprintf("read %q failed", key), err)
	}
	if !ok {
		return "", false, nil
	}

	plaintext, err := s.open(envelope)
	if err != nil {
		return "", false, err
	}
	return string(plaintext), true, nil
}

// RemoveItem 删除；后端错误只记录日志
func (s *Store) RemoveItem(ctx context.Context, key string) {
	if err := s.backend.Delete(ctx, key); err != nil {
		s.logger.Warnf(ctx, "[SecureStore] Remove %q failed: %v", key, err)
	}
}

// Clear 清空；后端错误只记录日志
func (s *Store) Clear(ctx context.Context) {
	if err := s.backend.Clear(ctx); err != nil {
		s.logger.Warnf(ctx, "[SecureStore] Clear failed: %v", err)
	}
}

// seal iv || ciphertext || tag → base64
func (s *Store) seal(plaintext []byte) (string, error) {
	iv := make([]byte, ivLen)
	if _, err := io.ReadFull(s.rand, iv); err != nil {
		return "", errorutil.Storage("random source unavailable", err)
	}

	out := make([]byte, ivLen, ivLen+len(plaintext)+tagLen)
	copy(out, iv)
	out = s.aead.Seal(out, iv, plaintext, nil)

	return base64.StdEncoding.EncodeToString(out), nil
}

func (s *Store) open(envelope string) ([]byte, error) {
	raw, err := base64.StdEncoding.DecodeString(envelope)
	if err != nil {
		return nil, errorutil.Storage("stored value is not valid base64", err)
	}
	if len(raw) < minBytes {
		return nil, errorutil.Storage("stored value is too short", fmt.Errorf("got %d bytes, need at least %d", len(raw), minBytes))
	}

	plaintext, err := s.aead.Open(nil, raw[:ivLen], raw[ivLen:], nil)
	if err != nil {
		return nil, errorutil.Storage("stored value failed authentication", err)
	}
	return plaintext, nil
}
