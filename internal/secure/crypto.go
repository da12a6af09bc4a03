package secure

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"fmt"
	"io"
)

const keyLen = 32

// Crypter seals and opens byte payloads with AES-256-GCM.
// The nonce is prepended to the ciphertext.
type Crypter struct {
	gcm cipher.AEAD
}

// NewCrypter builds a crypter from a key phrase. The phrase must be at
// least 32 bytes, only the first 32 are used.
func NewCrypter(key string) (*Crypter, error) {
	if len(key) < keyLen {
		return nil, fmt.Errorf("key length must be >= %d bytes, got %d", keyLen, len(key))
	}
	block, err := aes.NewCipher([]byte(key)[:keyLen])
	if err != nil {
		return nil, err
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}
	return &Crypter{gcm: gcm}, nil
}

func (c *Crypter) Encrypt(data []byte) ([]byte, error) {
	nonce := make([]byte, c.gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, err
	}
	return c.gcm.Seal(nonce, nonce, data, nil), nil
}

func (c *Crypter) Decrypt(data []byte) ([]byte, error) {
	ns := c.gcm.NonceSize()
	if len(data) < ns {
		return nil, fmt.Errorf("ciphertext too short")
	}
	return c.gcm.Open(nil, data[:ns], data[ns:], nil)
}
