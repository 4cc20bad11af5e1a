package pause

import (
	"testing"

	"github.com/stretchr/testify/require"
)

type fakeView bool

func (f fakeView) AllowsStateChange() bool { return bool(f) }

func TestGuardAllowsWhenViewPermits(t *testing.T) {
	require.NoError(t, Guard(fakeView(true)))
}

func TestGuardBlocksWhenViewForbids(t *testing.T) {
	err := Guard(fakeView(false))
	require.ErrorIs(t, err, ErrPaused)
}

func TestGuardNilViewAllows(t *testing.T) {
	require.NoError(t, Guard(nil))
}
