package secrets

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"io"
	"strings"

	"golang.org/x/crypto/pbkdf2"
)

const (
	saltSize   = 16
	keySize    = 32 // AES-256
	iterations = 100000

	// encPrefix marks encrypted values so legacy plaintext rows stay readable
	encPrefix = "enc:v1:"
)

// defaultPassphrase provides basic obfuscation when no passphrase is
// configured. Production deployments should set API_KEY_PASSPHRASE.
const defaultPassphrase = "easy-website-default-key-2025"

// Keeper encrypts provider API keys before they reach the database
type Keeper struct {
	passphrase string
}

// NewKeeper creates a Keeper. An empty passphrase falls back to the built-in
// default.
func NewKeeper(passphrase string) *Keeper {
	if passphrase == "" {
		passphrase = defaultPassphrase
	}
	return &Keeper{passphrase: passphrase}
}

// deriveKey derives an AES key from the passphrase and salt using PBKDF2
func (k *Keeper) deriveKey(salt []byte) []byte {
	return pbkdf2.Key([]byte(k.passphrase), salt, iterations, keySize, sha256.New)
}

// EncryptString encrypts a secret with AES-256-GCM for database storage.
// Empty values pass through unchanged.
func (k *Keeper) EncryptString(plaintext string) (string, error) {
	if plaintext == "" {
		return "", nil
	}

	salt := make([]byte, saltSize)
	if _, err := io.ReadFull(rand.Reader, salt); err != nil {
		return "", err
	}

	block, err := aes.NewCipher(k.deriveKey(salt))
	if err != nil {
		return "", err
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return "", err
	}

	nonce := make([]byte, gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", err
	}

	ciphertext := gcm.Seal(nonce, nonce, []byte(plaintext), nil)

	blob := make([]byte, saltSize+len(ciphertext))
	copy(blob, salt)
	copy(blob[saltSize:], ciphertext)

	return encPrefix + base64.StdEncoding.EncodeToString(blob), nil
}

// DecryptString reverses EncryptString. Values without the encryption prefix
// are returned as-is; rows written before encryption was introduced hold
// plaintext keys.
func (k *Keeper) DecryptString(stored string) (string, error) {
	payload, ok := strings.CutPrefix(stored, encPrefix)
	if !ok {
		return stored, nil
	}

	blob, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return "", errors.New("malformed encrypted value")
	}
	if len(blob) < saltSize {
		return "", errors.New("encrypted value too short")
	}

	salt := blob[:saltSize]
	ciphertext := blob[saltSize:]

	block, err := aes.NewCipher(k.deriveKey(salt))
	if err != nil {
		return "", err
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return "", err
	}
	if len(ciphertext) < gcm.NonceSize() {
		return "", errors.New("encrypted value too short")
	}

	nonce := ciphertext[:gcm.NonceSize()]
	plaintext, err := gcm.Open(nil, nonce, ciphertext[gcm.NonceSize():], nil)
	if err != nil {
		return "", errors.New("decryption failed: wrong passphrase or corrupted value")
	}
	return string(plaintext), nil
}

// Mask returns a display hint for a secret: the last four characters behind
// a fixed prefix, or a fully masked string for short values.
func Mask(secret string) string {
	if secret == "" {
		return ""
	}
	if len(secret) <= 4 {
		return "****"
	}
	return "****" + secret[len(secret)-4:]
}
