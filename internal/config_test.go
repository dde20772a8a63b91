package internal

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearShippingEnv(t *testing.T) {
	t.Helper()
	t.Setenv("SHIPPING_FLAT_RATE_CENTS", "")
	t.Setenv("SHIPPING_FREE_THRESHOLD_CENTS", "")
}

func TestConfigShippingDefaults(t *testing.T) {
	clearShippingEnv(t)

	cfg, err := NewConfig()
	require.NoError(t, err)

	// The storefront's flat rule: $10 below the $50 threshold, free above.
	assert.Equal(t, int32(1000), cfg.Shipping.FlatRateCents)
	assert.Equal(t, int32(5000), cfg.Shipping.FreeThresholdCents)
}

func TestConfigShippingOverridesAboveUint16Range(t *testing.T) {
	clearShippingEnv(t)
	t.Setenv("SHIPPING_FREE_THRESHOLD_CENTS", "70000")
	t.Setenv("SHIPPING_FLAT_RATE_CENTS", "1500")

	cfg, err := NewConfig()
	require.NoError(t, err)

	assert.Equal(t, int32(70000), cfg.Shipping.FreeThresholdCents, "a $700 threshold must survive parsing")
	assert.Equal(t, int32(1500), cfg.Shipping.FlatRateCents)
}

func TestConfigNegativeShippingRejected(t *testing.T) {
	clearShippingEnv(t)
	t.Setenv("SHIPPING_FLAT_RATE_CENTS", "-100")

	_, err := NewConfig()
	assert.Error(t, err)
}
