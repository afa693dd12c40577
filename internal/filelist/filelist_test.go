package filelist

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mapLookup(m map[string]string) EnvLookup {
	return func(name string) (string, bool) {
		v, ok := m[name]
		return v, ok
	}
}

func TestParseQuoting(t *testing.T) {
	got, err := Parse(strings.NewReader(`"a b"  c`), mapLookup(nil), nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"a b", "c"}, got)
}

func TestParseUnterminatedQuote(t *testing.T) {
	_, err := Parse(strings.NewReader(`"a b`), mapLookup(nil), nil)
	assert.Error(t, err)
}

func TestParseBlankQuotedTokenSkipped(t *testing.T) {
	got, err := Parse(strings.NewReader(`"   " real.hdf`), mapLookup(nil), nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"real.hdf"}, got)
}

func TestEnvExpansion(t *testing.T) {
	got, err := Parse(strings.NewReader(`$(FOO)/y`), mapLookup(map[string]string{"FOO": "/x"}), nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"/x/y"}, got)
}

func TestEnvExpansionUndefined(t *testing.T) {
	_, err := Parse(strings.NewReader(`$(UNDEF)`), mapLookup(nil), nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "UNDEF")
}

func TestEnvExpansionUnterminated(t *testing.T) {
	_, err := Parse(strings.NewReader(`$(FOO`), mapLookup(map[string]string{"FOO": "x"}), nil)
	assert.Error(t, err)
}

func TestEnvExpansionRepeats(t *testing.T) {
	lookup := mapLookup(map[string]string{"A": "$(B)", "B": "leaf"})
	got, err := Parse(strings.NewReader(`$(A)`), lookup, nil)
	require.NoError(t, err)
	assert.Equal(t, "leaf", got[0])
}

func TestPathSeparatorNormalization(t *testing.T) {
	got, err := Parse(strings.NewReader(`C:/data/tile.hdf`), mapLookup(nil), nil)
	require.NoError(t, err)
	assert.Equal(t, `C:\data\tile.hdf`, got[0])

	got, err = Parse(strings.NewReader(`/data/tile.hdf`), mapLookup(nil), nil)
	require.NoError(t, err)
	assert.Equal(t, "/data/tile.hdf", got[0])
}

func TestRoundTripArbitraryNames(t *testing.T) {
	names := []string{"plain.hdf", "has space.hdf", "another", "third one here"}
	var sb strings.Builder
	for i, n := range names {
		if i > 0 {
			sb.WriteByte(' ')
		}
		sb.WriteByte('"')
		sb.WriteString(n)
		sb.WriteByte('"')
	}

	got, err := Parse(strings.NewReader(sb.String()), mapLookup(nil), nil)
	require.NoError(t, err)
	assert.Equal(t, names, got)
}

func TestCapAt360WithWarning(t *testing.T) {
	var sb strings.Builder
	for i := 0; i < 400; i++ {
		sb.WriteString("f")
		sb.WriteByte(' ')
	}
	var warned string
	got, err := Parse(strings.NewReader(sb.String()), mapLookup(nil), func(msg string) { warned = msg })
	require.NoError(t, err)
	assert.Len(t, got, NumISINTiles)
	assert.NotEmpty(t, warned)
}
