package encryption

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"io"

	"github.com/Norconex/commons-lang-sub007/errors"
)

// aeadEncryptor implements Encryptor over any AEAD cipher. Ciphertexts are
// base64-encoded with the random nonce prefixed to the sealed payload.
type aeadEncryptor struct {
	aead cipher.AEAD
}

// deriveKey stretches a passphrase to the 32-byte key both supported
// algorithms require. The derivation is deterministic so the same
// passphrase always yields the same key.
func deriveKey(passphrase string) []byte {
	sum := sha256.Sum256([]byte(passphrase))
	return sum[:]
}

// NewService returns an AES-256-GCM Encryptor keyed from the passphrase.
func NewService(passphrase string) (Encryptor, error) {
	block, err := aes.NewCipher(deriveKey(passphrase))
	if err != nil {
		return nil, errors.Encryption("creating AES cipher", err)
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, errors.Encryption("creating GCM mode", err)
	}
	return &aeadEncryptor{aead: gcm}, nil
}

func (e *aeadEncryptor) Encrypt(plaintext string) (string, error) {
	nonce := make([]byte, e.aead.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", errors.Encryption("generating nonce", err)
	}
	sealed := e.aead.Seal(nonce, nonce, []byte(plaintext), nil)
	return base64.StdEncoding.EncodeToString(sealed), nil
}

func (e *aeadEncryptor) Decrypt(ciphertext string) (string, error) {
	raw, err := base64.StdEncoding.DecodeString(ciphertext)
	if err != nil {
		return "", errors.Encryption("decoding ciphertext", err)
	}
	nonceSize := e.aead.NonceSize()
	if len(raw) < nonceSize {
		return "", errors.Encryption("ciphertext shorter than nonce", nil)
	}
	plaintext, err := e.aead.Open(nil, raw[:nonceSize], raw[nonceSize:], nil)
	if err != nil {
		return "", errors.Encryption("decrypting ciphertext", err)
	}
	return string(plaintext), nil
}
