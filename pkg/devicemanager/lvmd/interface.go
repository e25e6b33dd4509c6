package lvmd

import (
	"github.com/puppis-io/puppis/pkg/devicemanager/types"
)

// Lvm2 is the slice of lvm2 that teardown and inspection need. Nothing
// here creates volumes, puppis only ever removes or reports them.
type Lvm2 interface {
	// lvremove --force --force vg/lv
	LVRemove(lv, vg string) error
	// pvremove --force --force --yes dev, wipes lvm metadata from a
	// physical volume after its volumes are gone
	PVRemove(dev string) error

	// report listings
	LVS(lvName string) ([]types.LvInfo, error)
	VGS() ([]types.VgGroup, error)
	PVS() ([]types.PVInfo, error)

	Version() (string, error)
}
