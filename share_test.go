package fpshamir

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math/big"
	mrand "math/rand/v2"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestShare_JSON(t *testing.T) {
	s := Share{X: 3, Y: big.NewInt(123456789)}

	data, err := json.Marshal(s)
	require.NoError(t, err)
	assert.JSONEq(t, `{"x": 3, "y": "123456789"}`, string(data))

	var got Share
	require.NoError(t, json.Unmarshal(data, &got))
	assert.Equal(t, 3, got.X)
	assert.Equal(t, 0, got.Y.Cmp(s.Y))

	assert.ErrorIs(t, json.Unmarshal([]byte(`{"x": 1, "y": "0x12"}`), &got), ErrInvalidShare)

	_, err = json.Marshal(Share{X: 1})
	assert.Error(t, err)
}

func TestShareSet_JSON(t *testing.T) {
	d := Dealer{F: Mersenne127}
	set, err := d.SplitSet(2, 3, []byte("key"))
	require.NoError(t, err)

	data, err := json.Marshal(set)
	require.NoError(t, err)

	var raw map[string]any
	require.NoError(t, json.Unmarshal(data, &raw))
	assert.Equal(t, "170141183460469231731687303715884105727", raw["prime"])
	assert.Equal(t, set.ID.String(), raw["id"])
	assert.EqualValues(t, 3, raw["length"])

	var got ShareSet
	require.NoError(t, json.Unmarshal(data, &got))
	assert.Equal(t, set.ID, got.ID)
	assert.True(t, got.Field.Equal(Mersenne127))
	assert.Equal(t, "mersenne127", got.Field.String())

	secret, err := Default.CombineSet(&got)
	require.NoError(t, err)
	assert.Equal(t, []byte("key"), secret)

	// an unauthenticated record may claim any length
	for _, length := range []int{1 << 62, MaxSecretLength + 1, -1} {
		tampered := bytes.Replace(data, []byte(`"length":3`), []byte(fmt.Sprintf(`"length":%d`, length)), 1)
		var bad ShareSet
		require.NoError(t, json.Unmarshal(tampered, &bad))
		require.Equal(t, length, bad.Length)

		_, err = Default.CombineSet(&bad)
		assert.ErrorIs(t, err, ErrLengthMismatch, "length %d", length)
	}
}

func TestShareSet_JSON_badPrime(t *testing.T) {
	var got ShareSet
	err := json.Unmarshal([]byte(`{"prime": "91", "shares": []}`), &got)
	assert.ErrorIs(t, err, ErrInvalidField)
}

func TestDealer_SplitSet(t *testing.T) {
	secret := []byte{0, 0, 0x13, 0x37}
	d := Dealer{F: Legacy64}

	set, err := d.SplitSet(3, 5, secret)
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, set.ID)
	assert.Equal(t, 3, set.Threshold)
	assert.Equal(t, 4, set.Length)
	assert.Same(t, Legacy64, set.Field)
	assert.Len(t, set.Shares, 5)

	// the set's own field is used, not the combining dealer's
	got, err := Default.CombineSet(set)
	require.NoError(t, err)
	assert.Equal(t, secret, got)

	other, err := d.SplitSet(3, 5, secret)
	require.NoError(t, err)
	assert.NotEqual(t, set.ID, other.ID)

	_, err = d.SplitSet(1, 5, secret)
	assert.ErrorIs(t, err, ErrInvalidParameters)

	_, err = Default.CombineSet(&ShareSet{Threshold: 2, Shares: set.Shares})
	assert.ErrorIs(t, err, ErrInvalidField)
}

func TestShareSet_Records_Merge(t *testing.T) {
	secret := []byte("guardian recovery")
	set, err := Default.SplitSet(3, 6, secret)
	require.NoError(t, err)

	records, err := set.Records()
	require.NoError(t, err)
	require.Len(t, records, 6)
	for i, r := range records {
		require.Len(t, r.Shares, 1)
		assert.Equal(t, i+1, r.Shares[0].X)
		assert.Equal(t, set.ID, r.ID)
	}

	// records must not alias the set
	records[0].Shares[0].Y.SetInt64(0)
	assert.NotEqual(t, 0, set.Shares[0].Y.Sign())
	records, err = set.Records()
	require.NoError(t, err)

	mrand.Shuffle(len(records), func(i, j int) {
		records[i], records[j] = records[j], records[i]
	})

	merged, err := Merge(records[0], records[1], records[0], records[2])
	require.NoError(t, err)
	assert.Len(t, merged.Shares, 3, "repeated record is collapsed")
	assert.Equal(t, records[0].Shares[0].X, merged.Shares[0].X)

	got, err := Default.CombineSet(merged)
	require.NoError(t, err)
	assert.Equal(t, secret, got)

	merged, err = Merge(records[:2]...)
	require.NoError(t, err)
	_, err = Default.CombineSet(merged)
	assert.ErrorIs(t, err, ErrInsufficientShares)
}

func TestMerge_errors(t *testing.T) {
	a, err := Default.SplitSet(2, 3, []byte("a"))
	require.NoError(t, err)
	b, err := Default.SplitSet(2, 3, []byte("a"))
	require.NoError(t, err)

	ra, err := a.Records()
	require.NoError(t, err)
	rb, err := b.Records()
	require.NoError(t, err)

	_, err = Merge()
	assert.ErrorIs(t, err, ErrInsufficientShares)

	_, err = Merge(ra[0], rb[1])
	assert.ErrorIs(t, err, ErrShareSetMismatch)

	wrongThreshold := *ra[1]
	wrongThreshold.Threshold = 3
	_, err = Merge(ra[0], &wrongThreshold)
	assert.ErrorIs(t, err, ErrShareSetMismatch)

	wrongField := *ra[1]
	wrongField.Field = Mersenne127
	_, err = Merge(ra[0], &wrongField)
	assert.ErrorIs(t, err, ErrShareSetMismatch)

	conflict, err := a.Record(0)
	require.NoError(t, err)
	conflict.Shares[0].Y = big.NewInt(1)
	_, err = Merge(ra[0], conflict)
	assert.ErrorIs(t, err, ErrDuplicateXCoordinate)

	_, err = a.Record(3)
	assert.Error(t, err)

	_, err = Merge(ra[0], nil)
	assert.ErrorIs(t, err, ErrInvalidShare)

	_, err = Merge(nil)
	assert.ErrorIs(t, err, ErrInvalidShare)
}

func TestShareSet_Record_missingY(t *testing.T) {
	set := &ShareSet{
		ID:        uuid.New(),
		Threshold: 2,
		Length:    1,
		Field:     Mersenne127,
		Shares:    []Share{{X: 1, Y: big.NewInt(7)}, {X: 2}},
	}

	r, err := set.Record(0)
	require.NoError(t, err)
	assert.Equal(t, 0, r.Shares[0].Y.Cmp(big.NewInt(7)))

	_, err = set.Record(1)
	assert.ErrorIs(t, err, ErrInvalidShare)

	_, err = set.Records()
	assert.ErrorIs(t, err, ErrInvalidShare)
}
