// Package models defines the persisted data structures for encrypted notes.
package models

// EncryptedNote is the persisted unit: a ciphertext plus the salt and IV it
// was sealed with, all base64-encoded. Records are immutable once created;
// an edit is modeled as delete plus re-create.
type EncryptedNote struct {
	// ID is the stable identifier assigned at creation time.
	ID string `json:"id"`
	// Encrypted is the base64-encoded AES-CBC ciphertext.
	Encrypted string `json:"encrypted"`
	// Salt is the base64-encoded 16-byte per-note salt for key derivation.
	Salt string `json:"salt"`
	// IV is the base64-encoded 16-byte AES initialization vector.
	IV string `json:"iv"`
}
