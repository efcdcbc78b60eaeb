package encryption

import (
	"golang.org/x/crypto/chacha20poly1305"

	"github.com/Norconex/commons-lang-sub007/errors"
)

// NewChaCha20 returns a ChaCha20-Poly1305 Encryptor keyed from the
// passphrase. The cipher performs well on CPUs without AES hardware
// acceleration.
func NewChaCha20(passphrase string) (Encryptor, error) {
	aead, err := chacha20poly1305.New(deriveKey(passphrase))
	if err != nil {
		return nil, errors.Encryption("creating ChaCha20-Poly1305 cipher", err)
	}
	return &aeadEncryptor{aead: aead}, nil
}
