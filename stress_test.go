package ffi_fixtures_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	ffi_fixtures "github.com/statsig-io/ffi-fixtures"
	"github.com/statsig-io/ffi-fixtures/internal/testlib"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap/zaptest"
)

func TestStressFoo(t *testing.T) {
	defer goleak.VerifyNone(t)

	lib := openReference(t, testlib.Foo)

	result, err := ffi_fixtures.Stress(context.Background(), lib, ffi_fixtures.StressOptions{
		Logger: zaptest.NewLogger(t),
	})
	require.NoError(t, err)

	assert.Equal(t, int64(100*1000), result.TotalCalls)
	assert.Equal(t, 100, result.Goroutines)
	_, err = uuid.Parse(result.RunID)
	assert.NoError(t, err)
}

func TestStressMessage(t *testing.T) {
	lib := openReference(t, testlib.Message)

	result, err := ffi_fixtures.Stress(context.Background(), lib, ffi_fixtures.StressOptions{Goroutines: 8, Calls: 500})
	require.NoError(t, err)
	assert.Equal(t, int64(8*500), result.TotalCalls)
}

func TestStressCancelled(t *testing.T) {
	lib := openReference(t, testlib.Foo)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := ffi_fixtures.Stress(ctx, lib, ffi_fixtures.StressOptions{Goroutines: 4, Calls: 1000})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestStressClosedLibrary(t *testing.T) {
	lib := openReference(t, testlib.Foo)
	_ = lib.Close()

	_, err := ffi_fixtures.Stress(context.Background(), lib, ffi_fixtures.StressOptions{})
	assert.ErrorIs(t, err, ffi_fixtures.ErrClosed)
}

func TestStressCloseDuringRun(t *testing.T) {
	lib, err := ffi_fixtures.Open(testlib.ReferencePath(t, testlib.Foo))
	require.NoError(t, err)

	done := make(chan error, 1)
	go func() {
		_, err := ffi_fixtures.Stress(context.Background(), lib, ffi_fixtures.StressOptions{Goroutines: 16, Calls: 100000})
		done <- err
	}()

	time.Sleep(10 * time.Millisecond)
	require.NoError(t, lib.Close())

	select {
	case err := <-done:
		if err != nil && !errors.Is(err, ffi_fixtures.ErrClosed) {
			t.Errorf("stress after close returned %v, want nil or ErrClosed", err)
		}
	case <-time.After(time.Minute):
		t.Fatal("stress run did not stop after close")
	}
}
