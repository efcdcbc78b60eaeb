package encryption

// Encryptor defines the interface for symmetric encryption and decryption.
type Encryptor interface {
	Encrypt(plaintext string) (string, error)
	Decrypt(ciphertext string) (string, error)
}

// Algorithm represents supported encryption algorithms.
type Algorithm string

const (
	// AlgorithmAESGCM is AES-256-GCM (default, widely supported).
	AlgorithmAESGCM Algorithm = "aes-256-gcm"

	// AlgorithmChaCha20 is ChaCha20-Poly1305 (modern, fast on CPUs without AES-NI).
	AlgorithmChaCha20 Algorithm = "chacha20-poly1305"
)

// Option configures the encryption service.
type Option func(*options)

type options struct {
	algorithm Algorithm
}

// WithAlgorithm selects the encryption algorithm (default: AES-256-GCM).
func WithAlgorithm(alg Algorithm) Option {
	return func(o *options) { o.algorithm = alg }
}

// New creates an Encryptor from the given key. The key material is
// resolved first, then hashed to the required length for the chosen
// algorithm. Default algorithm is AES-256-GCM; use WithAlgorithm to select
// ChaCha20-Poly1305.
func New(key Key, opts ...Option) (Encryptor, error) {
	o := &options{algorithm: AlgorithmAESGCM}
	for _, opt := range opts {
		opt(o)
	}

	passphrase, err := key.Resolve()
	if err != nil {
		return nil, err
	}

	switch o.algorithm {
	case AlgorithmChaCha20:
		return NewChaCha20(passphrase)
	default:
		return NewService(passphrase)
	}
}
