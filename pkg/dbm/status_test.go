package dbm

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Ratio1/dbm_sdk_go/internal/wire"
)

func TestCodeNames(t *testing.T) {
	for code := Success; code <= ApplicationError; code++ {
		parsed, ok := ParseCodeName(CodeName(code))
		require.True(t, ok)
		require.Equal(t, code, parsed)
	}
	require.Equal(t, "NETWORK_ERROR", NetworkError.String())
	require.Equal(t, "unknown", CodeName(StatusCode(99)))
	require.Equal(t, "unknown", CodeName(StatusCode(-1)))
	_, ok := ParseCodeName("NOPE")
	require.False(t, ok)
}

func TestStatusBasics(t *testing.T) {
	var nilStatus *Status
	require.True(t, nilStatus.IsOK())
	require.Equal(t, Success, nilStatus.GetCode())
	require.Equal(t, "SUCCESS", nilStatus.String())
	require.NoError(t, nilStatus.Err())

	st := NewStatus(NotFoundError, "no ", "such record")
	require.False(t, st.IsOK())
	require.Equal(t, "NOT_FOUND_ERROR: no such record", st.String())
	require.True(t, st.Equals(NewStatus(NotFoundError)))
	require.False(t, st.Equals(nil))

	st.Set(Success)
	require.Equal(t, "SUCCESS", st.String())
}

func TestStatusJoinKeepsFirstFailure(t *testing.T) {
	st := NewStatus(Success)
	st.Join(nil)
	require.True(t, st.IsOK())
	st.Join(NewStatus(InfeasibleError, "first"))
	st.Join(NewStatus(SystemError, "second"))
	require.Equal(t, InfeasibleError, st.Code)
	require.Equal(t, "first", st.Message)
}

func TestStatusError(t *testing.T) {
	err := NewStatus(DuplicationError, "exists").Err()
	require.EqualError(t, err, "dbm: DUPLICATION_ERROR: exists")
	require.ErrorIs(t, err, NewStatusError(DuplicationError))
	require.NotErrorIs(t, err, NewStatusError(NotFoundError))

	var se *StatusError
	require.True(t, errors.As(err, &se))
	require.Equal(t, "exists", se.Status().Message)
}

func TestOrDie(t *testing.T) {
	require.NotPanics(t, func() { NewStatus(Success).OrDie() })
	require.PanicsWithError(t, "dbm: SYSTEM_ERROR: boom", func() { NewStatus(SystemError, "boom").OrDie() })
}

func TestFromProto(t *testing.T) {
	require.True(t, fromProto(nil).IsOK())
	st := fromProto(&wire.StatusProto{Code: 9, Message: "mismatch"})
	require.Equal(t, InfeasibleError, st.Code)
	require.Equal(t, "mismatch", st.Message)
}

func TestNetworkStatusWrapsTransportErrors(t *testing.T) {
	st := networkStatus(errors.New("socket closed"))
	require.Equal(t, NetworkError, st.Code)
	require.Contains(t, st.Message, "socket closed")
}
