package selection

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFilterSelectedDropsMissingAndMismatched(t *testing.T) {
	selected := []string{"a", "b", "c"}
	details := map[string]Attrs{
		"a": {"archived": false},
		"c": {"archived": true},
		// b has no entry
	}

	got := FilterSelected(selected, details, Attrs{"archived": false})
	require.Equal(t, []string{"a"}, got)
}

func TestFilterSelectedPreservesOrder(t *testing.T) {
	selected := []string{"c", "a", "b"}
	details := map[string]Attrs{
		"a": {"archived": false},
		"b": {"archived": false},
		"c": {"archived": false},
	}

	got := FilterSelected(selected, details, Attrs{"archived": false})
	require.Equal(t, []string{"c", "a", "b"}, got, "output order must follow input order")
}

func TestFilterSelectedRequiresEveryAttribute(t *testing.T) {
	selected := []string{"a", "b"}
	details := map[string]Attrs{
		"a": {"archived": false, "group": "g1"},
		"b": {"archived": false}, // group attribute absent
	}

	got := FilterSelected(selected, details, Attrs{"archived": false, "group": "g1"})
	require.Equal(t, []string{"a"}, got)
}

func TestFilterSelectedStrictEquality(t *testing.T) {
	details := map[string]Attrs{
		"a": {"pot_size": 10},
	}

	require.Empty(t, FilterSelected([]string{"a"}, details, Attrs{"pot_size": "10"}),
		"string \"10\" must not match int 10")
	require.Equal(t, []string{"a"}, FilterSelected([]string{"a"}, details, Attrs{"pot_size": 10}))
}

func TestFilterSelectedEmptyInputs(t *testing.T) {
	require.Empty(t, FilterSelected(nil, nil, Attrs{"archived": false}))
	require.Equal(t, []string{}, FilterSelected([]string{"a"}, nil, nil))
}
