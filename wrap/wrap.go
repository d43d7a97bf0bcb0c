// Package wrap encrypts serialized share records for transport to their
// holders. Records are sealed either under a raw key (SealKey/OpenKey) or
// under a passphrase stretched with Argon2id (Seal/Open).
//
// The raw-key format is
//
//	mode(1) | nonce | ciphertext
//
// and the passphrase format is the base64url (unpadded) encoding of
//
//	version(1) | time(4) | memory(4) | threads(1) | salt(16) | raw-key format
//
// Everything in front of the ciphertext is authenticated as associated data.
package wrap

import (
	"crypto/rand"
	"encoding/base64"
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"golang.org/x/crypto/argon2"
)

var (
	// ErrUnknownMode is returned for mode names or ids that are not supported.
	ErrUnknownMode = errors.New("unknown mode")

	// ErrMalformed is returned when a ciphertext cannot be parsed.
	ErrMalformed = errors.New("malformed ciphertext")

	// ErrDecrypt is returned when authentication fails: wrong key or
	// passphrase, or a modified ciphertext.
	ErrDecrypt = errors.New("decryption failed")
)

const (
	version   = 1
	saltLen   = 16
	headerLen = 1 + 4 + 4 + 1 + saltLen
)

// Params are the Argon2id cost parameters.
type Params struct {
	Time    uint32
	Memory  uint32 // KiB
	Threads uint8
}

// DefaultParams follow the OWASP recommendation for Argon2id.
var DefaultParams = Params{
	Time:    3,
	Memory:  64 * 1024,
	Threads: 4,
}

// DeriveKey derives a 32 byte key from passphrase and salt.
func DeriveKey(passphrase string, salt []byte, p Params) []byte {
	return argon2.IDKey([]byte(passphrase), salt, p.Time, p.Memory, p.Threads, 32)
}

// SealKey encrypts plaintext under key with mode m.
func SealKey(m Mode, key, plaintext []byte) ([]byte, error) {
	return sealKey(m, key, plaintext, nil)
}

// OpenKey decrypts the output of SealKey.
func OpenKey(key, data []byte) ([]byte, error) {
	return openKey(key, data, nil)
}

// Seal encrypts plaintext under passphrase with DefaultParams and returns an
// opaque string.
func Seal(plaintext []byte, passphrase string, m Mode) (string, error) {
	return SealWithParams(plaintext, passphrase, m, DefaultParams)
}

// SealWithParams is Seal with explicit Argon2id parameters. The parameters are
// stored in the output so Open needs only the passphrase.
func SealWithParams(plaintext []byte, passphrase string, m Mode, p Params) (string, error) {
	if p.Time == 0 || p.Memory == 0 || p.Threads == 0 {
		return "", fmt.Errorf("invalid argon2 parameters %+v", p)
	}

	header := make([]byte, headerLen)
	header[0] = version
	binary.BigEndian.PutUint32(header[1:5], p.Time)
	binary.BigEndian.PutUint32(header[5:9], p.Memory)
	header[9] = p.Threads

	salt := header[10:]
	if _, err := io.ReadFull(rand.Reader, salt); err != nil {
		return "", fmt.Errorf("failed to generate salt: %w", err)
	}

	key := DeriveKey(passphrase, salt, p)

	body, err := sealKey(m, key, plaintext, header)
	if err != nil {
		return "", err
	}

	return base64.RawURLEncoding.EncodeToString(append(header, body...)), nil
}

// Open decrypts the output of Seal or SealWithParams.
func Open(ciphertext, passphrase string) ([]byte, error) {
	data, err := base64.RawURLEncoding.DecodeString(ciphertext)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if len(data) < headerLen+1 {
		return nil, fmt.Errorf("%w: too short", ErrMalformed)
	}
	if data[0] != version {
		return nil, fmt.Errorf("%w: unsupported version %d", ErrMalformed, data[0])
	}

	header := data[:headerLen]
	p := Params{
		Time:    binary.BigEndian.Uint32(header[1:5]),
		Memory:  binary.BigEndian.Uint32(header[5:9]),
		Threads: header[9],
	}
	if p.Time == 0 || p.Memory == 0 || p.Threads == 0 {
		return nil, fmt.Errorf("%w: invalid argon2 parameters", ErrMalformed)
	}

	key := DeriveKey(passphrase, header[10:], p)

	return openKey(key, data[headerLen:], header)
}

func sealKey(m Mode, key, plaintext, aad []byte) ([]byte, error) {
	aead, err := NewAEAD(m, key)
	if err != nil {
		return nil, err
	}

	out := make([]byte, 1+aead.NonceSize(), 1+aead.NonceSize()+len(plaintext)+aead.Overhead())
	out[0] = modes[m].id

	nonce := out[1:]
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, fmt.Errorf("failed to generate nonce: %w", err)
	}

	return aead.Seal(out, nonce, plaintext, associated(aad, out[0])), nil
}

func openKey(key, data, aad []byte) ([]byte, error) {
	if len(data) < 1 {
		return nil, fmt.Errorf("%w: empty", ErrMalformed)
	}

	m, ok := modeByID(data[0])
	if !ok {
		return nil, fmt.Errorf("%w: id %d", ErrUnknownMode, data[0])
	}

	aead, err := NewAEAD(m, key)
	if err != nil {
		return nil, err
	}

	if len(data) < 1+aead.NonceSize()+aead.Overhead() {
		return nil, fmt.Errorf("%w: too short", ErrMalformed)
	}

	nonce := data[1 : 1+aead.NonceSize()]
	plaintext, err := aead.Open(nil, nonce, data[1+aead.NonceSize():], associated(aad, data[0]))
	if err != nil {
		return nil, ErrDecrypt
	}

	return plaintext, nil
}

func associated(aad []byte, id byte) []byte {
	r := make([]byte, 0, len(aad)+1)
	r = append(r, aad...)
	return append(r, id)
}
