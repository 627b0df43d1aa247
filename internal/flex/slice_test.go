package flex

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSplitAndTrim(t *testing.T) {
	t.Parallel()

	require.Equal(t,
		[]string{"azalea-protocol", "azalea-client", "anyhow"},
		SplitAndTrim([]string{"azalea-protocol, azalea-client", " ", "anyhow,"}))
	require.Nil(t, SplitAndTrim(nil))
}
