package tdx

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWithPort(t *testing.T) {
	assert.Equal(t, "1.2.3.4:7709", withPort("1.2.3.4"))
	assert.Equal(t, "1.2.3.4:80", withPort("1.2.3.4:80"))
}

func TestNewRangeDial(t *testing.T) {
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer l.Close()

	dial := NewRangeDial([]string{"127.0.0.1:1", l.Addr().String()}, 10*time.Millisecond)
	c, addr, err := dial(context.Background())
	require.NoError(t, err)
	defer c.Close()
	assert.Equal(t, l.Addr().String(), addr)
}

func TestNewRangeDial_Canceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, _, err := NewRangeDial([]string{"127.0.0.1:1"}, time.Second)(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}
