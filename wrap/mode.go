package wrap

import (
	"crypto/aes"
	"crypto/cipher"
	"fmt"
	"sort"

	"golang.org/x/crypto/chacha20poly1305"
)

// Mode names an AEAD construction.
type Mode string

const (
	AES256GCM         Mode = "aes-256-gcm"
	ChaCha20Poly1305  Mode = "chacha20-poly1305"
	XChaCha20Poly1305 Mode = "xchacha20-poly1305"
)

// DefaultMode is used when no mode is given.
const DefaultMode = ChaCha20Poly1305

type mode struct {
	id          byte
	description string
	keySize     int
	aead        func(key []byte) (cipher.AEAD, error)
}

var modes = map[Mode]mode{
	AES256GCM: {
		id:          1,
		description: "AES 256-bit in Galois Counter Mode",
		keySize:     32,
		aead: func(key []byte) (cipher.AEAD, error) {
			b, err := aes.NewCipher(key)
			if err != nil {
				return nil, err
			}

			return cipher.NewGCM(b)
		},
	},
	ChaCha20Poly1305: {
		id:          2,
		description: "ChaCha20 with Poly1305 MAC",
		keySize:     chacha20poly1305.KeySize,
		aead:        chacha20poly1305.New,
	},
	XChaCha20Poly1305: {
		id:          3,
		description: "XChaCha20 with Poly1305 MAC, 192-bit nonce",
		keySize:     chacha20poly1305.KeySize,
		aead:        chacha20poly1305.NewX,
	},
}

// Modes returns all supported modes, sorted by name.
func Modes() []Mode {
	r := make([]Mode, 0, len(modes))
	for m := range modes {
		r = append(r, m)
	}
	sort.Slice(r, func(i, j int) bool { return r[i] < r[j] })
	return r
}

// ParseMode validates a mode name. The empty name selects DefaultMode.
func ParseMode(name string) (Mode, error) {
	if name == "" {
		return DefaultMode, nil
	}
	if _, ok := modes[Mode(name)]; !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownMode, name)
	}
	return Mode(name), nil
}

func (m Mode) Description() string {
	return modes[m].description
}

// KeySize returns the key length in bytes, or 0 for an unknown mode.
func (m Mode) KeySize() int {
	return modes[m].keySize
}

// NewAEAD returns the AEAD for mode m keyed with key.
func NewAEAD(m Mode, key []byte) (cipher.AEAD, error) {
	md, ok := modes[m]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownMode, m)
	}
	if len(key) != md.keySize {
		return nil, fmt.Errorf("%s needs a %d byte key, got %d", m, md.keySize, len(key))
	}
	return md.aead(key)
}

func modeByID(id byte) (Mode, bool) {
	for m, md := range modes {
		if md.id == id {
			return m, true
		}
	}
	return "", false
}
