package universe

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUniverseIntegrity(t *testing.T) {
	stocks := Stocks()
	require.Len(t, stocks, 45)

	seen := map[string]bool{}
	for _, s := range stocks {
		assert.NotEmpty(t, s.Name, "symbol %s", s.Symbol)
		assert.NotEmpty(t, s.Sector, "symbol %s", s.Symbol)
		assert.Contains(t, s.Symbol, ".JK")
		assert.False(t, seen[s.Symbol], "duplicate symbol %s", s.Symbol)
		seen[s.Symbol] = true
	}

	assert.Len(t, Symbols(), 45)
}

func TestLookup(t *testing.T) {
	s, ok := Lookup("BBCA.JK")
	require.True(t, ok)
	assert.Equal(t, "Bank Central Asia Tbk", s.Name)

	s, ok = Lookup("tlkm")
	require.True(t, ok)
	assert.Equal(t, "TLKM.JK", s.Symbol)

	_, ok = Lookup("AAPL")
	assert.False(t, ok)
}

func TestSymbolFormatting(t *testing.T) {
	assert.Equal(t, "BBCA.JK", FormatSymbol("bbca"))
	assert.Equal(t, "BBCA.JK", FormatSymbol(" BBCA.JK "))
	assert.Equal(t, "", FormatSymbol(""))
	assert.Equal(t, "BBCA", CleanSymbol("BBCA.JK"))
}
