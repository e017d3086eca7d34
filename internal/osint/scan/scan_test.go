package scan

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/danieljcheung/trace/internal/osintconfig"
)

func TestScan_RejectsEmptyEmail(t *testing.T) {
	_, err := Scan(context.Background(), osintconfig.Default(), ScanRequest{Email: "   ", Depth: 1})
	assert.Error(t, err)
}

func TestScan_RejectsMalformedEmail(t *testing.T) {
	_, err := Scan(context.Background(), osintconfig.Default(), ScanRequest{Email: "not-an-email", Depth: 1})
	assert.Error(t, err)
}

func TestScan_ValidRequestReturnsAnEventStream(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	stream, err := Scan(ctx, osintconfig.Default(), ScanRequest{Email: "person@example.com", Depth: 1})
	require.NoError(t, err)
	require.NotNil(t, stream)

	// Cancel immediately: draining the stream would otherwise run every
	// hop-1 probe against the real network, which this test must not do.
	cancel()
	for range stream {
	}
}
