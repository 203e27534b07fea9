package utils

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDistanceMeters(t *testing.T) {
	t.Parallel()

	require.InDelta(t, 0, DistanceMeters(24.8607, 67.0011, 24.8607, 67.0011), 1e-9)

	// One thousandth of a degree of latitude is roughly 111 meters.
	require.InDelta(t, 111.19, DistanceMeters(24.8607, 67.0011, 24.8617, 67.0011), 0.5)
}

func TestPhoneHelpers(t *testing.T) {
	t.Parallel()

	require.Equal(t, "03332261056", NormalizePhone(" 0333-226 1056 "))
	require.Equal(t, "+14155550100", NormalizePhone("+1 (415) 555-0100"))

	require.Equal(t, "*******1056", MaskPhone("03332261056"))
	require.Equal(t, "123", MaskPhone("123"))
	require.Equal(t, []string{"***0100", "abc"}, MaskPhones([]string{"5550100", "abc"}))
}
