package dbm_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Ratio1/dbm_sdk_go/pkg/dbm"
)

func TestPipeline(t *testing.T) {
	_, d := startMock(t, nil)
	p, st := d.MakePipeline(context.Background())
	requireCode(t, dbm.Success, st)
	defer p.Close()

	echo, st := p.Echo("ping")
	requireCode(t, dbm.Success, st)
	require.Equal(t, "ping", echo)

	requireCode(t, dbm.Success, p.Set("k", "v", false))
	requireCode(t, dbm.DuplicationError, p.Set("k", "w", false))
	requireCode(t, dbm.Success, p.Append("k", "x", "-"))
	v, st := p.Get("k")
	requireCode(t, dbm.Success, st)
	require.Equal(t, "v-x", string(v))

	requireCode(t, dbm.InfeasibleError, p.CompareExchange("k", dbm.Present("v"), dbm.Absent()))
	requireCode(t, dbm.Success, p.CompareExchange("k", dbm.Present("v-x"), dbm.Present("y")))

	n, st := p.Increment("n", 3, 10)
	requireCode(t, dbm.Success, st)
	require.EqualValues(t, 13, n)

	requireCode(t, dbm.Success, p.Remove("k"))
	requireCode(t, dbm.NotFoundError, p.Remove("k"))
	_, st = p.Get("k")
	requireCode(t, dbm.NotFoundError, st)

	p.Close()
	p.Close()
	_, st = p.Echo("late")
	requireCode(t, dbm.PreconditionError, st)
	require.Equal(t, "closed pipeline", st.Message)
}

func TestNilPipeline(t *testing.T) {
	var p *dbm.Pipeline
	p.Close()
	requireCode(t, dbm.PreconditionError, p.Set("k", "v", true))
}
