package memcache

import (
	"testing"

	"github.com/quietbit/memcache/internal/testutils"
	"github.com/quietbit/memcache/meta"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestConn(responses ...string) (*Conn, *testutils.ConnectionMock) {
	mock := testutils.NewConnectionMock(responses...)
	return NewConn(mock), mock
}

func TestMetaGet(t *testing.T) {
	conn, mock := newTestConn("VA 5\r\nhello\r\n")

	value, err := conn.MetaGet(t.Context(), "foo", false, "", []string{"v"})
	require.NoError(t, err)
	require.NotNil(t, value)

	assert.Equal(t, "mg foo v\r\n", mock.GetWrittenRequest())
	assert.Equal(t, []byte("hello"), value.Data)
}

func TestMetaGetBareStatus(t *testing.T) {
	// A fetch only succeeds with data (VA) or a miss (EN/MN); any other
	// status surfaces as an error carrying the status.
	conn, mock := newTestConn("HD\r\n")

	_, err := conn.MetaGet(t.Context(), "foo", false, "", nil)
	require.Error(t, err)

	var protocolErr *meta.ProtocolError
	require.ErrorAs(t, err, &protocolErr)
	assert.Equal(t, meta.StatusHD, protocolErr.Status)
	assert.Equal(t, "mg foo\r\n", mock.GetWrittenRequest())
	assert.False(t, conn.IsClosed())
}

func TestMetaGetMiss(t *testing.T) {
	conn, mock := newTestConn("EN\r\n")

	value, err := conn.MetaGet(t.Context(), "foo", false, "", nil)
	require.NoError(t, err)
	assert.Nil(t, value)

	assert.Equal(t, "mg foo\r\n", mock.GetWrittenRequest())
}

func TestMetaGetQuietMiss(t *testing.T) {
	// Quiet mode: the EN reply is suppressed, only the sentinel's MN arrives.
	conn, mock := newTestConn("MN\r\n")

	value, err := conn.MetaGet(t.Context(), "missing", true, "", []string{"v"})
	require.NoError(t, err)
	assert.Nil(t, value)

	assert.Equal(t, "mg missing v q\r\nmn\r\n", mock.GetWrittenRequest())
	assert.False(t, conn.IsClosed())
}

func TestMetaGetQuietHit(t *testing.T) {
	// Quiet mode hit: the primary reply arrives first, the sentinel's MN is
	// drained and never surfaced.
	conn, _ := newTestConn("VA 3\r\nbar\r\nMN\r\n")

	value, err := conn.MetaGet(t.Context(), "foo", true, "", []string{"v"})
	require.NoError(t, err)
	require.NotNil(t, value)
	assert.Equal(t, []byte("bar"), value.Data)
	assert.False(t, conn.IsClosed())
}

func TestMetaGetQuietMisalignedSentinel(t *testing.T) {
	// A non-MN response where the sentinel should be means the stream is
	// misaligned: the operation fails and the connection is invalidated.
	conn, _ := newTestConn("VA 3\r\nbar\r\nHD\r\n")

	_, err := conn.MetaGet(t.Context(), "foo", true, "", []string{"v"})
	require.Error(t, err)
	assert.True(t, meta.ShouldCloseConnection(err))
	assert.True(t, conn.IsClosed())
}

func TestMetaGetOpaquePrecedence(t *testing.T) {
	conn, mock := newTestConn("VA 3 O42\r\nbar\r\n")

	value, err := conn.MetaGet(t.Context(), "foo", false, "42", []string{"O99", "v"})
	require.NoError(t, err)
	require.NotNil(t, value)

	assert.Equal(t, "mg foo O42 v\r\n", mock.GetWrittenRequest())

	opaque, ok := value.Opaque()
	require.True(t, ok)
	assert.Equal(t, "42", opaque)
}

func TestMetaSet(t *testing.T) {
	conn, mock := newTestConn("HD\r\n")

	value, err := conn.MetaSet(t.Context(), "foo", []byte("bar"), false, "42", nil)
	require.NoError(t, err)
	assert.Nil(t, value)

	assert.Equal(t, "ms foo 3 O42\r\nbar\r\n", mock.GetWrittenRequest())
}

func TestMetaSetNotStored(t *testing.T) {
	conn, _ := newTestConn("NS\r\n")

	_, err := conn.MetaSet(t.Context(), "foo", []byte("bar"), false, "", nil)
	require.Error(t, err)

	var protocolErr *meta.ProtocolError
	require.ErrorAs(t, err, &protocolErr)
	assert.Equal(t, meta.StatusNS, protocolErr.Status)
	assert.False(t, meta.ShouldCloseConnection(err))
	assert.False(t, conn.IsClosed())
}

func TestMetaSetQuiet(t *testing.T) {
	conn, mock := newTestConn("MN\r\n")

	value, err := conn.MetaSet(t.Context(), "foo", []byte("bar"), true, "", nil)
	require.NoError(t, err)
	assert.Nil(t, value)

	assert.Equal(t, "ms foo 3 q\r\nbar\r\nmn\r\n", mock.GetWrittenRequest())
}

func TestMetaDelete(t *testing.T) {
	conn, mock := newTestConn("HD\r\n")

	value, err := conn.MetaDelete(t.Context(), "foo", false, "", nil)
	require.NoError(t, err)
	assert.Nil(t, value)

	assert.Equal(t, "md foo\r\n", mock.GetWrittenRequest())
}

func TestMetaDeleteCASConflict(t *testing.T) {
	conn, _ := newTestConn("EX\r\n")

	_, err := conn.MetaDelete(t.Context(), "foo", false, "", []string{"C12345"})
	require.ErrorIs(t, err, meta.ErrCASConflict)

	// A CAS conflict is a well-formed response: the connection stays usable.
	assert.False(t, conn.IsClosed())
}

func TestMetaDeleteNotFound(t *testing.T) {
	conn, _ := newTestConn("NF\r\n")

	_, err := conn.MetaDelete(t.Context(), "foo", false, "", nil)
	require.Error(t, err)
	assert.NotErrorIs(t, err, meta.ErrCASConflict)
}

func TestMetaIncrement(t *testing.T) {
	conn, mock := newTestConn("VA 2\r\n10\r\n")

	value, err := conn.MetaIncrement(t.Context(), "ctr", false, "", nil, []string{"v"})
	require.NoError(t, err)
	require.NotNil(t, value)

	assert.Equal(t, "ma ctr v\r\n", mock.GetWrittenRequest())
	assert.Equal(t, []byte("10"), value.Data)
}

func TestMetaIncrementQuietDelta(t *testing.T) {
	conn, mock := newTestConn("MN\r\n")

	delta := uint64(5)
	value, err := conn.MetaIncrement(t.Context(), "ctr", true, "", &delta, nil)
	require.NoError(t, err)
	assert.Nil(t, value)

	assert.Equal(t, "ma ctr D5 q\r\nmn\r\n", mock.GetWrittenRequest())
}

func TestMetaIncrementDefaultDeltaNotWritten(t *testing.T) {
	conn, mock := newTestConn("HD\r\n")

	delta := uint64(1)
	_, err := conn.MetaIncrement(t.Context(), "ctr", false, "", &delta, nil)
	require.NoError(t, err)

	assert.Equal(t, "ma ctr\r\n", mock.GetWrittenRequest())
}

func TestMetaDecrement(t *testing.T) {
	conn, mock := newTestConn("HD\r\n")

	delta := uint64(2)
	_, err := conn.MetaDecrement(t.Context(), "ctr", false, "", &delta, []string{"v"})
	require.NoError(t, err)

	assert.Equal(t, "ma ctr MD D2 v\r\n", mock.GetWrittenRequest())
}

func TestMetaOperationLegacyError(t *testing.T) {
	conn, _ := newTestConn("CLIENT_ERROR bad data chunk\r\n")

	_, err := conn.MetaSet(t.Context(), "foo", []byte("bar"), false, "", nil)
	require.Error(t, err)

	var clientErr *meta.ClientError
	require.ErrorAs(t, err, &clientErr)
	assert.True(t, meta.ShouldCloseConnection(err))
}

func TestMetaOperationValidationWritesNothing(t *testing.T) {
	conn, mock := newTestConn()

	_, err := conn.MetaGet(t.Context(), "bad key", false, "", nil)
	require.Error(t, err)

	var keyErr *meta.InvalidKeyError
	require.ErrorAs(t, err, &keyErr)

	// Rejected client-side: no bytes on the wire, connection still usable.
	assert.Empty(t, mock.GetWrittenRequest())
	assert.False(t, conn.IsClosed())
}
