package harness

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// Golden traces pin down the exact canonical serialization of scenario
// runs. Regenerate with: go test ./internal/harness -update

func TestGolden_LedgerBasics(t *testing.T) {
	sc, err := LoadScenario("testdata/ledger-basics.yaml")
	require.NoError(t, err)

	require.NoError(t, RunWithGolden(t, sc))
}

func TestGolden_Rejections(t *testing.T) {
	sc, err := LoadScenario("testdata/rejections.yaml")
	require.NoError(t, err)

	require.NoError(t, RunWithGolden(t, sc))
}
