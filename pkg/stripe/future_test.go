package stripe_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/fivetwenty-io/asyncstripe/pkg/stripe"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFuture_Go(t *testing.T) {
	t.Parallel()

	future := stripe.Go(context.Background(), func(ctx context.Context) (int, error) {
		return 42, nil
	})

	value, err := future.Await(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 42, value)

	// A resolved future can be read again.
	value, err = future.Result()
	require.NoError(t, err)
	assert.Equal(t, 42, value)
}

func TestFuture_ResolvedAndRejected(t *testing.T) {
	t.Parallel()

	resolved := stripe.Resolved("ok")
	select {
	case <-resolved.Done():
	default:
		t.Fatal("resolved future should be done")
	}

	errBoom := errors.New("boom")
	rejected := stripe.Rejected[string](errBoom)

	_, err := rejected.Result()
	assert.ErrorIs(t, err, errBoom)
}

func TestFuture_AwaitHonorsContext(t *testing.T) {
	t.Parallel()

	release := make(chan struct{})
	future := stripe.Go(context.Background(), func(ctx context.Context) (string, error) {
		<-release

		return "late", nil
	})

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	_, err := future.Await(ctx)
	require.ErrorIs(t, err, context.DeadlineExceeded)

	close(release)

	value, err := future.Result()
	require.NoError(t, err)
	assert.Equal(t, "late", value)
}

func TestFuture_CancelledContextDoesNotStopWork(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	future := stripe.Go(ctx, func(ctx context.Context) (bool, error) {
		return ctx.Err() == nil, nil
	})

	ran, err := future.Result()
	require.NoError(t, err)
	assert.True(t, ran)
}

func TestFuture_PanicBecomesError(t *testing.T) {
	t.Parallel()

	future := stripe.Go(context.Background(), func(ctx context.Context) (int, error) {
		panic("unexpected")
	})

	_, err := future.Result()
	require.ErrorIs(t, err, stripe.ErrPanicked)
	assert.Contains(t, err.Error(), "unexpected")
}

func TestThen(t *testing.T) {
	t.Parallel()

	first := stripe.Resolved(2)
	second := stripe.Then(context.Background(), first, func(ctx context.Context, v int) (string, error) {
		if v != 2 {
			return "", errors.New("wrong value")
		}

		return "two", nil
	})

	value, err := second.Result()
	require.NoError(t, err)
	assert.Equal(t, "two", value)

	errFirst := errors.New("first failed")
	called := false
	failed := stripe.Then(context.Background(), stripe.Rejected[int](errFirst), func(ctx context.Context, v int) (int, error) {
		called = true

		return v, nil
	})

	_, err = failed.Result()
	require.ErrorIs(t, err, errFirst)
	assert.False(t, called)
}
