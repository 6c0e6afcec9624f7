// Package cryptox implements the credential vault used to keep provider API
// keys encrypted at rest, together with password hashing for user accounts.
//
// Keys are derived from the server root secret with PBKDF2-HMAC-SHA256 and a
// fixed salt, so every server process sharing the secret derives the same key
// and can read every stored token. Tokens are authenticated (AES-256-GCM) and
// carry a random nonce, so encrypting the same value twice never yields the
// same token.
package cryptox

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/binary"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/doccoon/internal/common"
	"golang.org/x/crypto/pbkdf2"
)

const (
	// DefaultSaltPhrase is hashed with SHA-256 to obtain the default salt.
	DefaultSaltPhrase = "doccoon-encryption-salt-v1"
	// DefaultIterations is the PBKDF2 work factor used in production.
	DefaultIterations = 480000
	// KeySize is the derived key length in bytes (AES-256).
	KeySize = 32
	// TokenPrefix is the leading text of every token produced by Encrypt.
	TokenPrefix = "gAAAAA"

	tokenVersion byte = 0x80
	headerSize        = 1 + 8
	nonceSize         = 12
)

// ErrDecryption is returned when a token is malformed, truncated, was
// produced under a different key, or has been tampered with.
var ErrDecryption = errors.New("decryption failed")

// KDFParams configures key derivation.
type KDFParams struct {
	Salt       []byte
	Iterations int
}

// SaltFromPhrase turns a configured phrase into a 32-byte salt.
func SaltFromPhrase(phrase string) []byte {
	sum := sha256.Sum256([]byte(phrase))
	return sum[:]
}

// DefaultKDFParams returns the production derivation parameters.
func DefaultKDFParams() KDFParams {
	return KDFParams{Salt: SaltFromPhrase(DefaultSaltPhrase), Iterations: DefaultIterations}
}

// DeriveKey derives a KeySize-byte symmetric key from secret.
// The same inputs always produce the same key.
func DeriveKey(secret []byte, p KDFParams) []byte {
	return pbkdf2.Key(secret, p.Salt, p.Iterations, KeySize, sha256.New)
}

// EncodeKey returns the URL-safe base64 form of a derived key.
func EncodeKey(key []byte) string {
	return base64.URLEncoding.EncodeToString(key)
}

// Vault encrypts and decrypts short secrets with a key derived once at
// construction. It is safe for concurrent use.
type Vault struct {
	aead cipher.AEAD
	now  func() time.Time
}

// NewVault derives the vault key from secret.
func NewVault(secret []byte, p KDFParams) (*Vault, error) {
	if len(secret) == 0 {
		return nil, errors.New("vault secret must not be empty")
	}
	if p.Iterations < 1 {
		return nil, fmt.Errorf("invalid kdf iterations: %d", p.Iterations)
	}

	key := DeriveKey(secret, p)
	defer common.WipeByteArray(key)

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}

	return &Vault{aead: aead, now: time.Now}, nil
}

// Encrypt returns an opaque text token for plaintext. The empty string maps
// to the empty string.
func (v *Vault) Encrypt(plaintext string) (string, error) {
	if plaintext == "" {
		return "", nil
	}

	header := make([]byte, headerSize)
	header[0] = tokenVersion
	binary.BigEndian.PutUint64(header[1:], uint64(v.now().Unix()))

	nonce := make([]byte, nonceSize)
	if _, err := rand.Read(nonce); err != nil {
		return "", err
	}

	out := make([]byte, 0, headerSize+nonceSize+len(plaintext)+v.aead.Overhead())
	out = append(out, header...)
	out = append(out, nonce...)
	out = v.aead.Seal(out, nonce, []byte(plaintext), header)

	return base64.URLEncoding.EncodeToString(out), nil
}

// Decrypt recovers the plaintext of a token produced by Encrypt under the
// same key. The empty string maps to the empty string. Any failure wraps
// ErrDecryption and no partial plaintext is returned.
func (v *Vault) Decrypt(token string) (string, error) {
	if token == "" {
		return "", nil
	}

	raw, err := base64.URLEncoding.DecodeString(token)
	if err != nil {
		return "", fmt.Errorf("%w: malformed token", ErrDecryption)
	}
	if len(raw) < headerSize+nonceSize+v.aead.Overhead() {
		return "", fmt.Errorf("%w: token too short", ErrDecryption)
	}
	if raw[0] != tokenVersion {
		return "", fmt.Errorf("%w: unsupported token version %#x", ErrDecryption, raw[0])
	}

	header := raw[:headerSize]
	nonce := raw[headerSize : headerSize+nonceSize]
	plaintext, err := v.aead.Open(nil, nonce, raw[headerSize+nonceSize:], header)
	if err != nil {
		return "", fmt.Errorf("%w: authentication failed", ErrDecryption)
	}

	return string(plaintext), nil
}

// IsToken reports whether s is structurally shaped like a vault token.
// It does not prove that s decrypts.
func IsToken(s string) bool {
	return strings.HasPrefix(s, TokenPrefix)
}

// MaskKey returns a display form of a plaintext key: the first four and
// last four characters, or "****" for keys of eight characters or fewer.
func MaskKey(plaintext string) string {
	r := []rune(plaintext)
	if len(r) <= 8 {
		return "****"
	}
	return string(r[:4]) + "..." + string(r[len(r)-4:])
}
