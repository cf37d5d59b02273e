// Package crypto implements the password-derived encryption scheme for notes:
// a PBKDF2 base key per session, a second PBKDF2 pass per note with a stored
// random salt, and AES-256-CBC with PKCS7 padding for the note body.
package crypto

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"fmt"

	"github.com/google/uuid"
	"golang.org/x/crypto/pbkdf2"

	"github.com/atarasov/NoteVault/internal/models"
)

const (
	// BaseSalt is the fixed, public salt for the session base key. Per-note
	// security comes from the second, per-note salted derivation pass.
	BaseSalt = "fixedSaltForDemo"

	// DefaultIterations is the PBKDF2 iteration count used when the caller
	// does not configure one. Low for interactive latency; raising it only
	// affects notes encrypted after the change.
	DefaultIterations = 1000

	keySize  = 32
	saltSize = 16
)

// DeriveBaseKey turns a password into the 32-byte session key. Deterministic;
// any password, including the empty string, produces a key.
func DeriveBaseKey(password string, iterations int) []byte {
	if iterations < 1 {
		iterations = DefaultIterations
	}
	return pbkdf2.Key([]byte(password), []byte(BaseSalt), iterations, keySize, sha256.New)
}

// DeriveNoteKey derives the per-note AES key from the base key and the note's
// stored salt, so no two notes are encrypted under the same key.
func DeriveNoteKey(baseKey, salt []byte, iterations int) []byte {
	if iterations < 1 {
		iterations = DefaultIterations
	}
	return pbkdf2.Key(baseKey, salt, iterations, keySize, sha256.New)
}

// KeyFingerprint returns a short non-secret identifier for a base key, used
// to scope cached plaintext to the key that produced it.
func KeyFingerprint(baseKey []byte) string {
	sum := sha256.Sum256(baseKey)
	return base64.StdEncoding.EncodeToString(sum[:8])
}

// Encrypt seals plaintext into a persisted note record with a fresh random
// salt and IV and a newly assigned note ID. Salt and IV are never reused
// across calls.
func Encrypt(plaintext string, baseKey []byte, iterations int) (models.EncryptedNote, error) {
	salt := make([]byte, saltSize)
	if _, err := rand.Read(salt); err != nil {
		return models.EncryptedNote{}, fmt.Errorf("generate salt: %w", err)
	}
	iv := make([]byte, aes.BlockSize)
	if _, err := rand.Read(iv); err != nil {
		return models.EncryptedNote{}, fmt.Errorf("generate iv: %w", err)
	}

	block, err := aes.NewCipher(DeriveNoteKey(baseKey, salt, iterations))
	if err != nil {
		return models.EncryptedNote{}, fmt.Errorf("create cipher: %w", err)
	}

	// PKCS7 pads zero-length input to one full block, so the empty note
	// round-trips like any other.
	padded := pad([]byte(plaintext), aes.BlockSize)
	ciphertext := make([]byte, len(padded))
	cipher.NewCBCEncrypter(block, iv).CryptBlocks(ciphertext, padded)

	return models.EncryptedNote{
		ID:        uuid.NewString(),
		Encrypted: base64.StdEncoding.EncodeToString(ciphertext),
		Salt:      base64.StdEncoding.EncodeToString(salt),
		IV:        base64.StdEncoding.EncodeToString(iv),
	}, nil
}

// Decrypt opens a note record under the given base key. ok is false when the
// record does not decrypt: wrong key and corrupt record are indistinguishable
// in unauthenticated CBC, and both mean "not visible under this password",
// not an error.
func Decrypt(note models.EncryptedNote, baseKey []byte, iterations int) (string, bool) {
	salt, err := base64.StdEncoding.DecodeString(note.Salt)
	if err != nil || len(salt) != saltSize {
		return "", false
	}
	iv, err := base64.StdEncoding.DecodeString(note.IV)
	if err != nil || len(iv) != aes.BlockSize {
		return "", false
	}
	ciphertext, err := base64.StdEncoding.DecodeString(note.Encrypted)
	if err != nil || len(ciphertext) == 0 || len(ciphertext)%aes.BlockSize != 0 {
		return "", false
	}

	block, err := aes.NewCipher(DeriveNoteKey(baseKey, salt, iterations))
	if err != nil {
		return "", false
	}
	plain := make([]byte, len(ciphertext))
	cipher.NewCBCDecrypter(block, iv).CryptBlocks(plain, ciphertext)

	unpadded, ok := unpad(plain, aes.BlockSize)
	if !ok {
		return "", false
	}
	return string(unpadded), true
}

func pad(data []byte, blockSize int) []byte {
	n := blockSize - len(data)%blockSize
	out := make([]byte, len(data)+n)
	copy(out, data)
	for i := len(data); i < len(out); i++ {
		out[i] = byte(n)
	}
	return out
}

func unpad(data []byte, blockSize int) ([]byte, bool) {
	if len(data) == 0 || len(data)%blockSize != 0 {
		return nil, false
	}
	n := int(data[len(data)-1])
	if n < 1 || n > blockSize {
		return nil, false
	}
	for _, b := range data[len(data)-n:] {
		if int(b) != n {
			return nil, false
		}
	}
	return data[:len(data)-n], true
}
