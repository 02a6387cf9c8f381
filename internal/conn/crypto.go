package conn

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"io"

	"golang.org/x/crypto/pbkdf2"

	"sqlchat/internal/errs"
)

// kdfSalt is fixed so the same process secret always derives the same key.
// Rotating the secret invalidates every stored connection string.
var kdfSalt = []byte("sqlchat_descriptor_salt_v1")

const kdfIterations = 100_000

// Cipher encrypts descriptor connection strings before they reach disk.
// The key is derived from a process-wide secret with PBKDF2-SHA256 and the
// payload is sealed with AES-256-GCM.
type Cipher struct {
	key []byte
}

// NewCipher derives an AES-256 key from the given secret.
func NewCipher(secret string) *Cipher {
	return &Cipher{
		key: pbkdf2.Key([]byte(secret), kdfSalt, kdfIterations, 32, sha256.New),
	}
}

// Encrypt seals plain and returns base64url(nonce || ciphertext).
// An empty input encrypts to an empty string.
func (c *Cipher) Encrypt(plain string) (string, error) {
	if plain == "" {
		return "", nil
	}

	block, err := aes.NewCipher(c.key)
	if err != nil {
		return "", errs.Wrap(errs.ErrKindUnknown, "cipher init failed", err)
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return "", errs.Wrap(errs.ErrKindUnknown, "cipher init failed", err)
	}

	nonce := make([]byte, gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", errs.Wrap(errs.ErrKindUnknown, "nonce generation failed", err)
	}

	sealed := gcm.Seal(nonce, nonce, []byte(plain), nil)
	return base64.RawURLEncoding.EncodeToString(sealed), nil
}

// Decrypt reverses Encrypt. An empty input decrypts to an empty string.
func (c *Cipher) Decrypt(enc string) (string, error) {
	if enc == "" {
		return "", nil
	}

	raw, err := base64.RawURLEncoding.DecodeString(enc)
	if err != nil {
		return "", errs.Wrap(errs.ErrKindInvalidInput, "malformed encrypted value", err)
	}

	block, err := aes.NewCipher(c.key)
	if err != nil {
		return "", errs.Wrap(errs.ErrKindUnknown, "cipher init failed", err)
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return "", errs.Wrap(errs.ErrKindUnknown, "cipher init failed", err)
	}

	if len(raw) < gcm.NonceSize() {
		return "", errs.New(errs.ErrKindInvalidInput, "encrypted value too short")
	}

	nonce, sealed := raw[:gcm.NonceSize()], raw[gcm.NonceSize():]
	plain, err := gcm.Open(nil, nonce, sealed, nil)
	if err != nil {
		return "", errs.Wrap(errs.ErrKindPermissionDenied, "decryption failed (wrong secret?)", err)
	}
	return string(plain), nil
}
