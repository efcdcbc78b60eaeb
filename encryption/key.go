package encryption

import (
	"os"
	"strings"

	"github.com/Norconex/commons-lang-sub007/errors"
)

// KeySource tells where key material comes from.
type KeySource string

const (
	// KeySourceValue uses Key.Value directly as the passphrase.
	KeySourceValue KeySource = "value"
	// KeySourceEnvironment reads the passphrase from the environment
	// variable named by Key.Value.
	KeySourceEnvironment KeySource = "environment"
	// KeySourceFile reads the passphrase from the file at Key.Value.
	KeySourceFile KeySource = "file"
)

// Key identifies encryption key material. The zero Source means
// KeySourceValue. Passphrases are always derived to 256-bit keys.
type Key struct {
	// Value is the passphrase itself, an environment variable name, or a
	// file path, depending on Source.
	Value string
	// Source tells how to interpret Value.
	Source KeySource
}

// Resolve returns the passphrase the key points at.
func (k Key) Resolve() (string, error) {
	switch k.Source {
	case KeySourceValue, "":
		if k.Value == "" {
			return "", errors.Encryption("key value is empty", nil)
		}
		return k.Value, nil
	case KeySourceEnvironment:
		value := os.Getenv(k.Value)
		if value == "" {
			return "", errors.Encryption(
				"environment variable "+k.Value+" is not set", nil)
		}
		return value, nil
	case KeySourceFile:
		data, err := os.ReadFile(k.Value)
		if err != nil {
			return "", errors.Encryption("reading key file "+k.Value, err)
		}
		value := strings.TrimSpace(string(data))
		if value == "" {
			return "", errors.Encryption("key file "+k.Value+" is empty", nil)
		}
		return value, nil
	default:
		return "", errors.Encryption("unknown key source: "+string(k.Source), nil)
	}
}
