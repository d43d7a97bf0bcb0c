package fpshamir

import (
	"fmt"
	"math/big"
	"strconv"
)

// Field is the prime field GF(P). Only the constructors and the predefined
// fields produce a usable Field; a Dealer treats a zero Field as DefaultField.
// A Field is immutable after construction and safe for concurrent use. All arithmetic methods return fresh values reduced
// into [0, P).
type Field struct {
	p    *big.Int
	name string
}

var (
	// Legacy64 is GF(2^64 - 59). It holds at most 7 arbitrary bytes and only
	// exists to read shares produced with that prime.
	Legacy64 = mustField("legacy64", "18446744073709551557")

	// Mersenne127 is GF(2^127 - 1), holding any secret of up to 15 bytes.
	Mersenne127 = mersenneField(127)

	// Mersenne521 is GF(2^521 - 1), holding any secret of up to 65 bytes.
	Mersenne521 = mersenneField(521)

	// DefaultField is the field used by a zero-value Dealer.
	DefaultField = Mersenne521
)

// exponents k for which 2^k - 1 is prime, used by FieldFor
var mersenneExponents = []int{61, 89, 107, 127, 521, 607, 1279, 2203, 2281, 3217, 4253, 4423, 9689, 9941, 11213, 19937}

var knownFields []*Field

func init() {
	knownFields = append(knownFields, Legacy64)
	for _, k := range mersenneExponents {
		switch k {
		case 127:
			knownFields = append(knownFields, Mersenne127)
		case 521:
			knownFields = append(knownFields, Mersenne521)
		default:
			knownFields = append(knownFields, mersenneField(k))
		}
	}
}

// NewField returns the field with prime modulus p. p must be an odd prime.
func NewField(p *big.Int) (*Field, error) {
	if p == nil || p.Cmp(big.NewInt(2)) <= 0 {
		return nil, fmt.Errorf("%w: modulus must be an odd prime", ErrInvalidField)
	}
	if f := lookupField(p); f != nil {
		return f, nil
	}
	if !p.ProbablyPrime(32) {
		return nil, fmt.Errorf("%w: modulus is not prime", ErrInvalidField)
	}
	return &Field{p: new(big.Int).Set(p)}, nil
}

// FieldFor returns the smallest Mersenne prime field that holds every secret
// of secretLen bytes.
func FieldFor(secretLen int) (*Field, error) {
	if secretLen < 0 {
		return nil, fmt.Errorf("%w: negative secret length", ErrInvalidParameters)
	}
	for _, f := range knownFields[1:] {
		if f.Capacity() >= secretLen {
			return f, nil
		}
	}
	return nil, fmt.Errorf("%w: no predefined field holds %d bytes", ErrSecretExceedsFieldCapacity, secretLen)
}

// FieldByName resolves the names returned by Field.String for predefined
// fields, plus "default".
func FieldByName(name string) (*Field, error) {
	if name == "default" {
		return DefaultField, nil
	}
	for _, f := range knownFields {
		if f.name == name {
			return f, nil
		}
	}
	return nil, fmt.Errorf("%w: unknown field %q", ErrInvalidField, name)
}

// Fields returns the predefined fields ordered by size.
func Fields() []*Field {
	return append([]*Field(nil), knownFields...)
}

func lookupField(p *big.Int) *Field {
	for _, f := range knownFields {
		if f.p.Cmp(p) == 0 {
			return f
		}
	}
	return nil
}

func mersenneField(k int) *Field {
	p := new(big.Int).Lsh(big.NewInt(1), uint(k))
	p.Sub(p, big.NewInt(1))
	return &Field{p: p, name: "mersenne" + strconv.Itoa(k)}
}

func mustField(name, prime string) *Field {
	p, ok := new(big.Int).SetString(prime, 10)
	if !ok {
		panic("fpshamir: bad prime " + prime)
	}
	return &Field{p: p, name: name}
}

// Prime returns a copy of the field modulus.
func (f *Field) Prime() *big.Int {
	return new(big.Int).Set(f.p)
}

// Bits returns the bit length of the modulus.
func (f *Field) Bits() int {
	return f.p.BitLen()
}

// Capacity returns the largest secret length in bytes for which every secret
// encodes to a value below P.
func (f *Field) Capacity() int {
	return (f.p.BitLen() - 1) / 8
}

func (f *Field) String() string {
	if f.name != "" {
		return f.name
	}
	return fmt.Sprintf("prime%d", f.p.BitLen())
}

// Equal reports whether f and g have the same modulus.
func (f *Field) Equal(g *Field) bool {
	if f == nil || g == nil {
		return f == g
	}
	if f.p == nil || g.p == nil {
		return f.p == g.p
	}
	return f.p.Cmp(g.p) == 0
}

// Contains reports whether a is a canonical element, i.e. 0 <= a < P.
func (f *Field) Contains(a *big.Int) bool {
	return a != nil && a.Sign() >= 0 && a.Cmp(f.p) < 0
}

// Reduce returns a mod P.
func (f *Field) Reduce(a *big.Int) *big.Int {
	return new(big.Int).Mod(a, f.p)
}

func (f *Field) Add(a, b *big.Int) *big.Int {
	z := new(big.Int).Add(a, b)
	return z.Mod(z, f.p)
}

func (f *Field) Sub(a, b *big.Int) *big.Int {
	z := new(big.Int).Sub(a, b)
	return z.Mod(z, f.p)
}

func (f *Field) Neg(a *big.Int) *big.Int {
	z := new(big.Int).Neg(a)
	return z.Mod(z, f.p)
}

func (f *Field) Mul(a, b *big.Int) *big.Int {
	z := new(big.Int).Mul(a, b)
	return z.Mod(z, f.p)
}

// Exp returns a^e mod P. e must not be negative.
func (f *Field) Exp(a, e *big.Int) *big.Int {
	return new(big.Int).Exp(f.Reduce(a), e, f.p)
}

// Inv returns the multiplicative inverse of a, computed with the extended
// Euclidean algorithm.
func (f *Field) Inv(a *big.Int) (*big.Int, error) {
	r := f.Reduce(a)
	x := new(big.Int)
	g := new(big.Int).GCD(x, nil, r, f.p)
	if g.Cmp(big.NewInt(1)) != 0 {
		return nil, fmt.Errorf("%w: gcd(%s, P) = %s", ErrNoInverseExists, r, g)
	}
	return x.Mod(x, f.p), nil
}

// MarshalText encodes the field as the decimal modulus.
func (f *Field) MarshalText() ([]byte, error) {
	return f.p.MarshalText()
}

// UnmarshalText parses a decimal modulus and validates it like NewField.
func (f *Field) UnmarshalText(text []byte) error {
	p, ok := new(big.Int).SetString(string(text), 10)
	if !ok {
		return fmt.Errorf("%w: malformed modulus", ErrInvalidField)
	}
	g, err := NewField(p)
	if err != nil {
		return err
	}
	*f = *g
	return nil
}
