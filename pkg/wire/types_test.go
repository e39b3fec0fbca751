package wire

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseRef(t *testing.T) {
	ref, err := ParseRef("sim/abc")
	require.NoError(t, err)
	require.Equal(t, ConsoleRef{Model: "sim", ID: "abc"}, ref)
	require.Equal(t, "sim/abc", ref.Name())
	require.True(t, ref.IsValid())

	for _, s := range []string{"", "sim", "sim/", "/abc", "a/b/c"} {
		_, err := ParseRef(s)
		require.Errorf(t, err, "ParseRef(%q)", s)
	}
}
