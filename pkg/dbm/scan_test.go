package dbm_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Ratio1/dbm_sdk_go/pkg/dbm"
	"github.com/Ratio1/dbm_sdk_go/pkg/dbm/mock"
)

func TestEachAndRecords(t *testing.T) {
	_, d := startMock(t, nil)
	fillNumbers(t, d, 5)
	ctx := context.Background()

	var keys []string
	requireCode(t, dbm.Success, d.EachStr(ctx, func(k, _ string) error {
		keys = append(keys, k)
		return nil
	}))
	require.Equal(t, []string{"0", "1", "2", "3", "4"}, keys)

	records, st := d.Records(ctx)
	requireCode(t, dbm.Success, st)
	require.Len(t, records, 5)
	require.Equal(t, []byte("16"), records["4"])

	st = d.Each(ctx, func(k, _ []byte) error {
		if string(k) == "2" {
			return errors.New("stop here")
		}
		return nil
	})
	requireCode(t, dbm.ApplicationError, st)
	require.Equal(t, "stop here", st.Message)
}

func TestDigestIgnoresOrder(t *testing.T) {
	_, d := startMock(t, []mock.Option{mock.WithDBMs(mock.ClassTree, mock.ClassHash)})
	ctx := context.Background()
	fillNumbers(t, d, 30)
	tree, st := d.Digest(ctx)
	requireCode(t, dbm.Success, st)

	d.SetDBMIndex(1)
	fillNumbers(t, d, 30)
	hash, st := d.Digest(ctx)
	requireCode(t, dbm.Success, st)
	require.Equal(t, tree, hash)

	require.True(t, d.Set(ctx, "7", "changed", true).IsOK())
	changed, _ := d.Digest(ctx)
	require.NotEqual(t, tree, changed)

	// Moving bytes between key and value changes the digest.
	d.SetDBMIndex(0)
	require.True(t, d.Clear(ctx).IsOK())
	require.True(t, d.Set(ctx, "ab", "c", true).IsOK())
	a, _ := d.Digest(ctx)
	require.True(t, d.Clear(ctx).IsOK())
	require.True(t, d.Set(ctx, "a", "bc", true).IsOK())
	b, _ := d.Digest(ctx)
	require.NotEqual(t, a, b)
}

func TestEachWithoutConnection(t *testing.T) {
	d, err := dbm.New(dbm.WithLogger(quietLogger()))
	require.NoError(t, err)
	requireCode(t, dbm.PreconditionError, d.Each(context.Background(), func(_, _ []byte) error { return nil }))
}
