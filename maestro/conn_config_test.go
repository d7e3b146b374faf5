package maestro

import (
	"testing"
	"time"

	"github.com/arloliu/go-maestro/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewConnConfig_Defaults(t *testing.T) {
	cfg, err := NewConnConfig()
	require.NoError(t, err)

	assert.Zero(t, cfg.ReplyTimeout())
	assert.Equal(t, DefaultInterByteTimeout, cfg.InterByteTimeout())
	assert.NotNil(t, cfg.GetLogger())
}

func TestNewConnConfig_Options(t *testing.T) {
	l := logger.NewMockLogger()
	cfg, err := NewConnConfig(
		WithReplyTimeout(time.Second),
		WithInterByteTimeout(MinInterByteTimeout),
		WithLogger(l),
	)
	require.NoError(t, err)

	assert.Equal(t, time.Second, cfg.ReplyTimeout())
	assert.Equal(t, MinInterByteTimeout, cfg.InterByteTimeout())
	assert.Same(t, l, cfg.GetLogger())
}

func TestNewConnConfig_Invalid(t *testing.T) {
	tests := []struct {
		name string
		opt  ConnOption
	}{
		{"negative reply timeout", WithReplyTimeout(-time.Millisecond)},
		{"inter-byte too small", WithInterByteTimeout(0)},
		{"inter-byte too large", WithInterByteTimeout(MaxInterByteTimeout + time.Millisecond)},
		{"nil logger", WithLogger(nil)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewConnConfig(tt.opt)
			require.Error(t, err)
		})
	}
}
