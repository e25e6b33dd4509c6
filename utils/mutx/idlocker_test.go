package mutx

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTryAcquire(t *testing.T) {
	a := assert.New(t)

	gl := NewGlobalLocks()
	a.True(gl.TryAcquire("vdb"))
	a.False(gl.TryAcquire("vdb"))
	a.True(gl.TryAcquire("vdc"))

	gl.Release("vdb")
	a.True(gl.TryAcquire("vdb"))
}

func TestReleaseUnheld(t *testing.T) {
	gl := NewGlobalLocks()
	// releasing a name nobody holds is a no-op
	gl.Release("vdz")
	if !gl.TryAcquire("vdz") {
		t.Error("TryAcquire after spurious Release")
	}
}
