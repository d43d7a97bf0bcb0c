package fpshamir

import (
	"encoding/json"
	"fmt"
	"math/big"

	"github.com/google/uuid"
)

// Share is one point (x, y) on the dealer's polynomial. X is in [1, n].
type Share struct {
	X int
	Y *big.Int
}

type shareJSON struct {
	X int    `json:"x"`
	Y string `json:"y"`
}

// MarshalJSON encodes the share as {"x": 1, "y": "<decimal>"}.
func (s Share) MarshalJSON() ([]byte, error) {
	if s.Y == nil {
		return nil, fmt.Errorf("%w: missing y", ErrInvalidShare)
	}
	return json.Marshal(shareJSON{X: s.X, Y: s.Y.String()})
}

func (s *Share) UnmarshalJSON(data []byte) error {
	var v shareJSON
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	y, ok := new(big.Int).SetString(v.Y, 10)
	if !ok {
		return fmt.Errorf("%w: malformed y %q", ErrInvalidShare, v.Y)
	}
	s.X, s.Y = v.X, y
	return nil
}

// ShareSet is everything needed to reconstruct a secret apart from the
// shares that are still missing. It is the record handed to storage and to
// guardians; a guardian's copy holds a single share (see Record).
type ShareSet struct {
	ID        uuid.UUID `json:"id"`
	Threshold int       `json:"threshold"`
	Length    int       `json:"length"`
	Field     *Field    `json:"prime"`
	Shares    []Share   `json:"shares"`
}

// Record returns a copy of the set that carries only the i-th share.
func (s *ShareSet) Record(i int) (*ShareSet, error) {
	if i < 0 || i >= len(s.Shares) {
		return nil, fmt.Errorf("share index %d out of range [0, %d)", i, len(s.Shares))
	}
	sh := s.Shares[i]
	if sh.Y == nil {
		return nil, fmt.Errorf("%w: missing y for x = %d", ErrInvalidShare, sh.X)
	}
	r := *s
	r.Shares = []Share{{X: sh.X, Y: new(big.Int).Set(sh.Y)}}
	return &r, nil
}

// Records splits the set into one single-share record per share.
func (s *ShareSet) Records() ([]*ShareSet, error) {
	records := make([]*ShareSet, len(s.Shares))
	for i := range s.Shares {
		r, err := s.Record(i)
		if err != nil {
			return nil, err
		}
		records[i] = r
	}
	return records, nil
}

// Merge combines records of the same share set. Records must agree on id,
// threshold, length and prime. A share repeated verbatim is kept once; two
// different y values for the same x fail with ErrDuplicateXCoordinate. The
// merged shares keep the order in which they were first seen. Nil records are
// rejected.
func Merge(records ...*ShareSet) (*ShareSet, error) {
	if len(records) == 0 {
		return nil, fmt.Errorf("%w: no records", ErrInsufficientShares)
	}
	for i, r := range records {
		if r == nil {
			return nil, fmt.Errorf("%w: record %d is nil", ErrInvalidShare, i)
		}
	}

	first := records[0]
	merged := &ShareSet{
		ID:        first.ID,
		Threshold: first.Threshold,
		Length:    first.Length,
		Field:     first.Field,
	}

	seen := make(map[int]*big.Int)
	for _, r := range records {
		if r.ID != first.ID {
			return nil, fmt.Errorf("%w: id %s != %s", ErrShareSetMismatch, r.ID, first.ID)
		}
		if r.Threshold != first.Threshold || r.Length != first.Length {
			return nil, fmt.Errorf("%w: threshold/length differ in set %s", ErrShareSetMismatch, r.ID)
		}
		if !r.Field.Equal(first.Field) {
			return nil, fmt.Errorf("%w: prime differs in set %s", ErrShareSetMismatch, r.ID)
		}

		for _, sh := range r.Shares {
			if sh.Y == nil {
				return nil, fmt.Errorf("%w: missing y for x = %d", ErrInvalidShare, sh.X)
			}
			if y, ok := seen[sh.X]; ok {
				if y.Cmp(sh.Y) != 0 {
					return nil, fmt.Errorf("%w: x = %d", ErrDuplicateXCoordinate, sh.X)
				}
				continue
			}
			seen[sh.X] = sh.Y
			merged.Shares = append(merged.Shares, sh)
		}
	}

	return merged, nil
}
