package fpshamir

import (
	"fmt"
	"math/big"
)

// MaxSecretLength bounds the length of a secret, counting leading zero bytes.
// Lengths read back from share records are checked against it before any
// buffer is allocated.
const MaxSecretLength = 1 << 16

// Encode interprets secret as a big-endian unsigned integer. It fails instead
// of reducing when that integer is not below P. The empty secret encodes to 0.
func (f *Field) Encode(secret []byte) (*big.Int, error) {
	if len(secret) > MaxSecretLength {
		return nil, fmt.Errorf("%w: %d byte secret exceeds %d bytes", ErrSecretExceedsFieldCapacity, len(secret), MaxSecretLength)
	}
	e := new(big.Int).SetBytes(secret)
	if e.Cmp(f.p) >= 0 {
		return nil, fmt.Errorf("%w: %d byte secret does not fit %s", ErrSecretExceedsFieldCapacity, len(secret), f)
	}
	return e, nil
}

// Decode converts e back to a big-endian byte string of exactly length bytes,
// restoring leading zero bytes.
func (f *Field) Decode(e *big.Int, length int) ([]byte, error) {
	if !f.Contains(e) {
		return nil, fmt.Errorf("%w: value outside %s", ErrInvalidShare, f)
	}
	if length < 0 || length > MaxSecretLength {
		return nil, fmt.Errorf("%w: length %d outside [0, %d]", ErrLengthMismatch, length, MaxSecretLength)
	}
	if (e.BitLen()+7)/8 > length {
		return nil, fmt.Errorf("%w: value needs %d bytes, have %d", ErrLengthMismatch, (e.BitLen()+7)/8, length)
	}
	return e.FillBytes(make([]byte, length)), nil
}
