package fpshamir

import (
	"crypto/rand"
	"fmt"
	"io"
	"math/big"

	"github.com/google/uuid"
)

var (
	defaultRandSrc io.Reader = rand.Reader
)

// Dealer is a Shamir secret sharing dealer over a prime field. A zero-value
// Dealer is ready to use with default settings: DefaultField and
// crypto/rand.Reader. A Dealer is never modified by its methods, so it may be
// shared between goroutines as long as Rand is safe for concurrent use.
type Dealer struct {
	F    *Field    // the prime field to use
	Rand io.Reader // cryptographically secure random source

	// SkipVerify disables the check that shares beyond the threshold lie on
	// the interpolated polynomial. Combine then uses the first threshold
	// shares and ignores the rest.
	SkipVerify bool
}

// Split splits a secret into n shares such that any threshold number of shares
// can be combined to recover the secret. n must be at least 2 and threshold
// must be in [2, n]. The secret's big-endian integer value must be below the
// field prime. Shares are returned in order of their x coordinates 1..n. The
// caller must keep len(secret) alongside the shares; SplitSet does that.
func (d *Dealer) Split(threshold, n int, secret []byte) ([]Share, error) {
	f := d.field()

	if err := checkParams(threshold, n); err != nil {
		return nil, err
	}
	if big.NewInt(int64(n)).Cmp(f.p) >= 0 {
		return nil, fmt.Errorf("%w: n = %d does not fit %s", ErrInvalidParameters, n, f)
	}

	s, err := f.Encode(secret)
	if err != nil {
		return nil, err
	}

	return split(f, d.random(), threshold, n, s)
}

// Combine recovers a secret of length bytes from shares. At least threshold
// shares with distinct x coordinates are required. The first threshold shares
// in input order are interpolated at x = 0; unless SkipVerify is set, every
// further share must lie on the same polynomial.
func (d *Dealer) Combine(threshold, length int, shares []Share) ([]byte, error) {
	f := d.field()

	s, err := combine(f, threshold, shares, !d.SkipVerify)
	if err != nil {
		return nil, err
	}

	return f.Decode(s, length)
}

// SplitSet splits secret like Split and wraps the shares in a ShareSet with a
// fresh random id.
func (d *Dealer) SplitSet(threshold, n int, secret []byte) (*ShareSet, error) {
	shares, err := d.Split(threshold, n, secret)
	if err != nil {
		return nil, err
	}

	id, err := uuid.NewRandomFromReader(d.random())
	if err != nil {
		return nil, fmt.Errorf("failed to generate share set id: %w", err)
	}

	return &ShareSet{
		ID:        id,
		Threshold: threshold,
		Length:    len(secret),
		Field:     d.field(),
		Shares:    shares,
	}, nil
}

// CombineSet recovers the secret of a share set using the set's own field,
// threshold and length. Only the dealer's SkipVerify setting is used.
func (d *Dealer) CombineSet(set *ShareSet) ([]byte, error) {
	if set.Field == nil || set.Field.p == nil {
		return nil, fmt.Errorf("%w: share set %s has no prime", ErrInvalidField, set.ID)
	}

	s, err := combine(set.Field, set.Threshold, set.Shares, !d.SkipVerify)
	if err != nil {
		return nil, err
	}

	return set.Field.Decode(s, set.Length)
}

// Default is a zero-value Dealer ready to use with default settings.
var Default = new(Dealer)

// Split a secret using the default dealer.
func Split(threshold, n int, secret []byte) ([]Share, error) {
	return Default.Split(threshold, n, secret)
}

// Combine a secret using the default dealer.
func Combine(threshold, length int, shares []Share) ([]byte, error) {
	return Default.Combine(threshold, length, shares)
}

func (d *Dealer) field() *Field {
	if d.F == nil || d.F.p == nil {
		return DefaultField
	}
	return d.F
}

func (d *Dealer) random() io.Reader {
	if d.Rand == nil {
		return defaultRandSrc
	}
	return d.Rand
}

func checkParams(threshold, n int) error {
	if n < 2 {
		return fmt.Errorf("%w: n = %d, must be at least 2", ErrInvalidParameters, n)
	}
	if threshold < 2 {
		return fmt.Errorf("%w: threshold = %d, must be at least 2", ErrInvalidParameters, threshold)
	}
	if threshold > n {
		return fmt.Errorf("%w: threshold %d exceeds n = %d", ErrInvalidParameters, threshold, n)
	}
	return nil
}

func split(f *Field, random io.Reader, threshold, n int, secret *big.Int) ([]Share, error) {
	polynomial, err := randomPolynomial(f, random, secret, threshold)
	if err != nil {
		return nil, err
	}

	shares := make([]Share, n)
	for i := range shares {
		x := i + 1
		shares[i] = Share{X: x, Y: evalPoly(f, polynomial, big.NewInt(int64(x)))}
	}

	return shares, nil
}

func combine(f *Field, threshold int, shares []Share, verify bool) (*big.Int, error) {
	if threshold < 2 {
		return nil, fmt.Errorf("%w: threshold = %d, must be at least 2", ErrInvalidParameters, threshold)
	}
	if len(shares) < threshold {
		return nil, fmt.Errorf("%w: have %d, need %d", ErrInsufficientShares, len(shares), threshold)
	}

	xvals := make([]*big.Int, len(shares))
	yvals := make([]*big.Int, len(shares))
	seen := make(map[int]struct{}, len(shares))

	for i, share := range shares {
		x := big.NewInt(int64(share.X))
		if share.X < 1 || x.Cmp(f.p) >= 0 {
			return nil, fmt.Errorf("%w: x = %d", ErrInvalidShare, share.X)
		}
		if !f.Contains(share.Y) {
			return nil, fmt.Errorf("%w: y of share x = %d outside %s", ErrInvalidShare, share.X, f)
		}
		if _, ok := seen[share.X]; ok {
			return nil, fmt.Errorf("%w: x = %d", ErrDuplicateXCoordinate, share.X)
		}
		seen[share.X] = struct{}{}

		xvals[i] = x
		yvals[i] = share.Y
	}

	xs, ys := xvals[:threshold], yvals[:threshold]

	secret, err := interpolate(f, xs, ys, new(big.Int))
	if err != nil {
		return nil, err
	}

	if verify {
		for k := threshold; k < len(shares); k++ {
			y, err := interpolate(f, xs, ys, xvals[k])
			if err != nil {
				return nil, err
			}
			if y.Cmp(yvals[k]) != 0 {
				return nil, fmt.Errorf("%w: share x = %d is not on the polynomial", ErrInconsistentShares, shares[k].X)
			}
		}
	}

	return secret, nil
}
