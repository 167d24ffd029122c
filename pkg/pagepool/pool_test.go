package pagepool

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAllocatePinsToNode(t *testing.T) {
	p := NewPool()
	p.Allocate(0, 64, 4)
	p.Allocate(0, 64, 4)
	p.Allocate(1, 64, 4)

	assert.Equal(t, 2, p.PageCount(0))
	assert.Equal(t, 1, p.PageCount(1))
}

func TestInstallChildIsCompareAndSwap(t *testing.T) {
	parent := NewPage(0, 0, 2)
	childA := NewPage(0, 8, 0)
	childB := NewPage(0, 8, 0)

	require.True(t, parent.InstallChild(0, childA))
	assert.False(t, parent.InstallChild(0, childB), "second install into the same slot must fail")
	assert.Same(t, childA, parent.Child(0))
}
