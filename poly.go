package fpshamir

import (
	"fmt"
	"io"
	"math/big"
)

// randomPolynomial returns [a0, a1, ..., a(t-1)] with a0 = secret and the
// remaining coefficients drawn uniformly from the field.
func randomPolynomial(f *Field, random io.Reader, secret *big.Int, threshold int) ([]*big.Int, error) {
	coeff := make([]*big.Int, threshold)
	coeff[0] = new(big.Int).Set(secret)

	for i := 1; i < threshold; i++ {
		c, err := randElement(f, random)
		if err != nil {
			return nil, err
		}
		coeff[i] = c
	}

	return coeff, nil
}

// randElement samples uniformly from [0, P) by rejection: draw BitLen(P)
// random bits and retry while the value is >= P.
func randElement(f *Field, random io.Reader) (*big.Int, error) {
	bits := f.p.BitLen()
	buf := make([]byte, (bits+7)/8)
	mask := byte(0xff >> (len(buf)*8 - bits))

	v := new(big.Int)
	for {
		if _, err := io.ReadFull(random, buf); err != nil {
			return nil, fmt.Errorf("failed to read randomness: %w", err)
		}
		buf[0] &= mask

		v.SetBytes(buf)
		if v.Cmp(f.p) < 0 {
			return v, nil
		}
	}
}

// evalPoly evaluates the polynomial at x with Horner's method.
func evalPoly(f *Field, coeff []*big.Int, x *big.Int) *big.Int {
	r := new(big.Int)
	for i := len(coeff) - 1; i >= 0; i-- {
		r.Mul(r, x)
		r.Add(r, coeff[i])
		r.Mod(r, f.p)
	}

	return r
}

// interpolate evaluates at x the unique polynomial of degree < len(xvals)
// passing through (xvals[i], yvals[i]):
//
//	L(x) = sum_i y_i * prod_{j != i} (x - x_j) / (x_i - x_j)
func interpolate(f *Field, xvals, yvals []*big.Int, x *big.Int) (*big.Int, error) {
	result := new(big.Int)

	for i := range xvals {
		num := big.NewInt(1)
		den := big.NewInt(1)
		for j := range xvals {
			if i == j {
				continue
			}
			num = f.Mul(num, f.Sub(x, xvals[j]))
			den = f.Mul(den, f.Sub(xvals[i], xvals[j]))
		}

		inv, err := f.Inv(den)
		if err != nil {
			return nil, err
		}

		term := f.Mul(yvals[i], f.Mul(num, inv))
		result = f.Add(result, term)
	}

	return result, nil
}
