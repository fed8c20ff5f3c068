package log

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFrom_Default(t *testing.T) {
	t.Parallel()

	require.Equal(t, slog.Default(), From(context.Background()))
}

func TestIntoFrom_RoundTrip(t *testing.T) {
	t.Parallel()

	l := slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
	ctx := Into(context.Background(), l)

	require.Same(t, l, From(ctx))
}

func TestWithFlow_TagsLogger(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	l := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	ctx := WithFlow(Into(context.Background(), l), "deeplink")
	From(ctx).Debug("ping")

	require.Contains(t, buf.String(), "flow=deeplink")
	require.Contains(t, buf.String(), "ping")
}
