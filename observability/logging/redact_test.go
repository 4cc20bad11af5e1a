package logging

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestIsAllowlistedIsCaseInsensitive(t *testing.T) {
	require.True(t, IsAllowlisted("Asset"))
	require.True(t, IsAllowlisted(" status "))
	require.False(t, IsAllowlisted("user_address"))
}

func TestMaskValueLeavesEmptyUnchanged(t *testing.T) {
	require.Equal(t, "", MaskValue(""))
	require.Equal(t, "   ", MaskValue("   "))
}

func TestMaskValueRedactsNonEmpty(t *testing.T) {
	require.Equal(t, RedactedValue, MaskValue("zx1abc..."))
}

func TestMaskFieldPassesThroughAllowlistedKeys(t *testing.T) {
	attr := MaskField("asset", "BTC")
	require.Equal(t, "BTC", attr.Value.String())
}

func TestMaskFieldRedactsNonAllowlistedKeys(t *testing.T) {
	attr := MaskField("user_address", "zx1abc...")
	require.Equal(t, RedactedValue, attr.Value.String())
}

func TestRedactionAllowlistIsSorted(t *testing.T) {
	keys := RedactionAllowlist()
	for i := 1; i < len(keys); i++ {
		require.True(t, keys[i-1] < keys[i])
	}
}
