package testutil

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPoll(t *testing.T) {
	var calls atomic.Int32
	err := Poll(context.Background(), func(context.Context) (bool, error) {
		return calls.Add(1) == 3, nil
	})
	require.NoError(t, err)
	assert.Equal(t, int32(3), calls.Load())

	stop := errors.New("fatal")
	err = Poll(context.Background(), func(context.Context) (bool, error) { return true, stop })
	assert.ErrorIs(t, err, stop)

	ctx, cancel := context.WithTimeout(context.Background(), 120*time.Millisecond)
	defer cancel()
	err = Poll(ctx, func(context.Context) (bool, error) { return false, errors.New("refused") })
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Contains(t, err.Error(), "refused")
}

func TestWaitForMetric(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprintf(w, "microgrid_runs_total %d\n", hits.Add(1))
	}))
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), MetricTimeout)
	defer cancel()
	require.NoError(t, WaitForMetric(ctx, srv.URL, "microgrid_runs_total 2"))

	short, cancelShort := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancelShort()
	err := WaitForMetric(short, srv.URL, "microgrid_missing")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "microgrid_missing")
}
