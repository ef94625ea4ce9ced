package app

import (
	"testing"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestListApp(t *testing.T) {
	service := NewService()

	result, err := service.List(t.Context(), ListRequest{BaseDir: fixtureStack(t)})
	require.NoError(t, err)
	var names []string
	for _, ref := range result.Manifests {
		names = append(names, ref.Package)
	}
	want := []string{"base", "broken", "cyc1", "cyc2", "diamond", "foo", "left", "right"}
	if diff := cmp.Diff(want, names); diff != "" {
		t.Fatalf("unexpected manifests (-want +got):\n%s", diff)
	}
	assert.False(t, result.HasCurrent)

	result, err = service.List(t.Context(), ListRequest{BaseDir: fixtureStack(t), Package: "foo", Flavor: "Linux64"})
	require.NoError(t, err)
	require.Len(t, result.Manifests, 1)
	assert.Equal(t, "Linux64", result.Manifests[0].Flavor)
	assert.True(t, result.HasCurrent)
	assert.Equal(t, "1.0", result.Current.Version)

	_, err = service.List(t.Context(), ListRequest{})
	assert.Equal(t, errbuilder.CodeInvalidArgument, errbuilder.CodeOf(err))
}
