package observability

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInit_DisabledIsNoop(t *testing.T) {
	t.Setenv("OTEL_ENABLED", "false")
	stop := Init(context.Background(), Config{ServiceName: "test"})
	require.NotNil(t, stop)
	assert.NoError(t, stop(context.Background()))
}

func TestSampleRatio(t *testing.T) {
	tests := []struct {
		raw  string
		want float64
	}{
		{"", DefaultSampleRatio},
		{"0.5", 0.5},
		{"2", 1},
		{"-1", 0},
		{"abc", DefaultSampleRatio},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			t.Setenv("OTEL_SAMPLER_RATIO", tt.raw)
			assert.Equal(t, tt.want, sampleRatio())
		})
	}
}

func TestParseHeaders(t *testing.T) {
	assert.Nil(t, parseHeaders(""))
	assert.Nil(t, parseHeaders("junk, =x, y="))
	assert.Equal(t,
		map[string]string{"authorization": "Bearer t", "x-team": "letters"},
		parseHeaders(" authorization = Bearer t ,x-team=letters,broken"),
	)
}
