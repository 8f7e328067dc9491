package hostversion

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse_Forms(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"9", "9.0.0"},
		{"9.1", "9.1.0"},
		{"9.1sp2", "9.1.2"},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			v, err := Parse(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.want, v.String())
		})
	}
}

func TestCompare_ServicePackOrdering(t *testing.T) {
	base, _ := Parse("9.1")
	sp0, _ := Parse("9.1sp0")
	sp1, _ := Parse("9.1sp1")
	next, _ := Parse("9.2")

	assert.Equal(t, 0, base.Compare(sp0))
	assert.True(t, base.Compare(sp1) < 0)
	assert.True(t, sp1.Compare(next) < 0)
}

func TestSpecifier_TwoComponentMatchesAnyServicePack(t *testing.T) {
	sp, err := ParseManifestSpecifier("==9.1")
	require.NoError(t, err)

	v1, _ := Parse("9.1")
	v2, _ := Parse("9.1sp2")
	v3, _ := Parse("9.2")

	assert.True(t, sp.Matches(v1))
	assert.True(t, sp.Matches(v2))
	assert.False(t, sp.Matches(v3))
}

func TestSpecifier_ThreeComponentMatchesBaseOnly(t *testing.T) {
	sp, err := ParseSpecifier("==9.1.0")
	require.NoError(t, err)

	v1, _ := Parse("9.1")
	v2, _ := Parse("9.1sp2")

	assert.True(t, sp.Matches(v1))
	assert.False(t, sp.Matches(v2))
}

func TestParseManifestSpecifier_RejectsThreeComponentLiteral(t *testing.T) {
	_, err := ParseManifestSpecifier("==9.1.0")
	assert.Error(t, err)
}

func TestSpecifier_HostVersionChangeFailsCompatibility(t *testing.T) {
	sp, err := ParseManifestSpecifier("==9.1")
	require.NoError(t, err)

	installed, _ := Parse("9.1sp2")
	assert.True(t, sp.Matches(installed))

	upgraded, _ := Parse("9.2")
	assert.False(t, sp.Matches(upgraded))
}

func TestParseSpecifier_EmptyMatchesAll(t *testing.T) {
	sp, err := ParseSpecifier("")
	require.NoError(t, err)
	v, _ := Parse("1")
	assert.True(t, sp.Matches(v))
}
