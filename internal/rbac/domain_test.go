package rbac

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAtLeast(t *testing.T) {
	assert.True(t, AtLeast(LevelOwner, LevelAdmin))
	assert.True(t, AtLeast(LevelAdmin, LevelAdmin))
	assert.False(t, AtLeast(LevelViewer, LevelAdmin))
	assert.True(t, AtLeast(LevelViewer, LevelViewer))
}

func TestStrictlyBelow(t *testing.T) {
	assert.True(t, StrictlyBelow(LevelViewer, LevelAdmin))
	assert.False(t, StrictlyBelow(LevelAdmin, LevelAdmin))
	assert.False(t, StrictlyBelow(LevelOwner, LevelAdmin))
}
