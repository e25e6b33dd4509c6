package mutx

import (
	"sync"

	"k8s.io/apimachinery/pkg/util/sets"
)

// Teardown of a device stack must not interleave with another operation
// touching the same disk, so callers serialize on a per-resource name.
type GlobalLocks struct {
	locks sets.String
	mux   sync.Mutex
}

// NewGlobalLocks returns new GlobalLocks.
func NewGlobalLocks() *GlobalLocks {
	return &GlobalLocks{
		locks: sets.NewString(),
	}
}

// TryAcquire tries to acquire the lock for operating on id and returns true if successful.
// If another operation is already using id, returns false.
func (gl *GlobalLocks) TryAcquire(id string) bool {
	gl.mux.Lock()
	defer gl.mux.Unlock()
	if gl.locks.Has(id) {
		return false
	}
	gl.locks.Insert(id)
	return true
}

// Release deletes the lock on id.
func (gl *GlobalLocks) Release(id string) {
	gl.mux.Lock()
	defer gl.mux.Unlock()
	gl.locks.Delete(id)
}
