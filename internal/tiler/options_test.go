package tiler

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseModes(t *testing.T) {
	assert.Equal(t, RefineModeAdd, ParseRefineMode(" add "))
	assert.Equal(t, RefineModeReplace, ParseRefineMode("Replace"))
	assert.Equal(t, RefineMode(""), ParseRefineMode("merge"))
	assert.Equal(t, "REPLACE", RefineModeReplace.String())

	assert.Equal(t, CullModeDestroy, ParseCullMode("destroy"))
	assert.Equal(t, CullModeDeactivate, ParseCullMode("DEACTIVATE"))
	assert.Equal(t, CullMode(""), ParseCullMode("hide"))

	assert.Equal(t, InstantiatorFile, ParseInstantiatorKind("file"))
	assert.Equal(t, InstantiatorMemory, ParseInstantiatorKind("Memory"))
	assert.Equal(t, InstantiatorKind(""), ParseInstantiatorKind("gpu"))
}

func TestOptionsCopy(t *testing.T) {
	opts := DefaultStreamerOptions()
	opts.StreamerLoadOptions = &StreamerLoadOptions{Output: "a"}

	copied := opts.Copy()
	copied.StreamerLoadOptions.Output = "b"
	copied.MaxNodes = 1

	assert.Equal(t, "a", opts.StreamerLoadOptions.Output)
	assert.Equal(t, DefaultMaxNodes, opts.MaxNodes)
	assert.Nil(t, copied.StreamerDecodeOptions)
}
