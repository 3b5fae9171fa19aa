package metrics_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cavusmuhammed68/ICC-IEEE/core/factory"
	"github.com/cavusmuhammed68/ICC-IEEE/core/metrics"
	inframetrics "github.com/cavusmuhammed68/ICC-IEEE/infra/metrics"
)

func TestNewMetricsSink(t *testing.T) {
	tests := []struct {
		name  string
		cfgs  []factory.ModuleConfig
		check func(t *testing.T, s metrics.MetricsSink)
	}{
		{"empty", nil, func(t *testing.T, s metrics.MetricsSink) {
			assert.IsType(t, metrics.NopSink{}, s)
		}},
		{"nop entries collapse", []factory.ModuleConfig{{Type: "nop"}, {Type: "nop"}}, func(t *testing.T, s metrics.MetricsSink) {
			assert.IsType(t, metrics.NopSink{}, s)
		}},
		{"single sink unwrapped", []factory.ModuleConfig{{Type: "nop"}, {Type: "prometheus"}}, func(t *testing.T, s metrics.MetricsSink) {
			assert.IsType(t, &inframetrics.PromSink{}, s)
		}},
		{"fan out", []factory.ModuleConfig{{Type: "prometheus"}, {Type: "eco", Conf: map[string]any{"emission_factor": 40}}}, func(t *testing.T, s metrics.MetricsSink) {
			m, ok := s.(*metrics.MultiSink)
			require.True(t, ok, "got %T", s)
			assert.Len(t, m.Sinks, 2)
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := metrics.NewMetricsSink(tt.cfgs)
			require.NoError(t, err)
			tt.check(t, s)
		})
	}
}

func TestNewMetricsSinkErrors(t *testing.T) {
	_, err := metrics.NewMetricsSink([]factory.ModuleConfig{{Type: "nop"}, {Type: "statsd"}})
	require.Error(t, err)
	if !errors.Is(err, factory.ErrUnknownType) {
		t.Fatalf("expected ErrUnknownType, got %v", err)
	}
	assert.Contains(t, err.Error(), "metrics.sinks[1]")

	_, err = metrics.NewMetricsSink([]factory.ModuleConfig{{Type: "eco", Conf: map[string]any{"factor": 1}}})
	assert.Error(t, err, "unknown settings are rejected")
}
