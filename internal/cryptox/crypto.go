// Package cryptox implements the symmetric cipher applied to sensitive
// profile fields before they leave the client and after they come back.
package cryptox

import (
	"crypto/aes"
	"crypto/cipher"
	"encoding/base64"
	"errors"

	"github.com/dmitrijs2005/staffdesk/internal/common"
	"golang.org/x/crypto/argon2"
)

// ErrUndecryptable is returned for ciphertext that is malformed or was
// produced with a different key.
var ErrUndecryptable = errors.New("value cannot be decrypted")

// fieldSalt is fixed so that every client sharing a passphrase derives the
// same key.
var fieldSalt = []byte("staffdesk/sensitive-fields/v1")

// DeriveKey stretches a passphrase into a 32-byte AES-256 key.
func DeriveKey(passphrase []byte, salt []byte) []byte {
	return argon2.IDKey(passphrase, salt, 1, 64*1024, 4, 32)
}

// FieldCipher encrypts short strings with AES-GCM. The encoded form is
// base64(nonce || ciphertext). It is safe for concurrent use.
type FieldCipher struct {
	aead cipher.AEAD
}

// NewFieldCipher derives the key from passphrase. An empty passphrase is
// rejected.
func NewFieldCipher(passphrase string) (*FieldCipher, error) {
	if passphrase == "" {
		return nil, errors.New("empty passphrase")
	}
	return NewFieldCipherWithKey(DeriveKey([]byte(passphrase), fieldSalt))
}

// NewFieldCipherWithKey uses key as is; it must be 16, 24 or 32 bytes long.
func NewFieldCipherWithKey(key []byte) (*FieldCipher, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}
	return &FieldCipher{aead: aead}, nil
}

// Encrypt returns the encoded ciphertext of plain. An empty string stays
// empty so optional fields are sent unchanged.
func (c *FieldCipher) Encrypt(plain string) (string, error) {
	if plain == "" {
		return "", nil
	}
	nonce := common.GenerateRandByteArray(c.aead.NonceSize())
	sealed := c.aead.Seal(nonce, nonce, []byte(plain), nil)
	return base64.StdEncoding.EncodeToString(sealed), nil
}

// Decrypt reverses Encrypt. Empty input yields "" and no error. Any
// failure yields "" and ErrUndecryptable.
func (c *FieldCipher) Decrypt(encoded string) (string, error) {
	if encoded == "" {
		return "", nil
	}
	raw, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return "", ErrUndecryptable
	}
	ns := c.aead.NonceSize()
	if len(raw) < ns+c.aead.Overhead() {
		return "", ErrUndecryptable
	}
	plain, err := c.aead.Open(nil, raw[:ns], raw[ns:], nil)
	if err != nil {
		return "", ErrUndecryptable
	}
	return string(plain), nil
}
