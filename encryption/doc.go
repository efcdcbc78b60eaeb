// Package encryption provides symmetric authenticated encryption for
// sensitive values such as credentials handed to external commands.
//
// Keys are modeled by Key, whose material can come from a literal value,
// an environment variable, or a file. Passphrases are derived to 256-bit
// keys with SHA-256. AES-256-GCM is the default cipher; ChaCha20-Poly1305
// is available for CPUs without AES hardware support.
//
// # Usage
//
//	enc, err := encryption.New(encryption.Key{Value: "passphrase"})
//	ciphertext, err := enc.Encrypt(plaintext)
//	plaintext, err := enc.Decrypt(ciphertext)
package encryption
