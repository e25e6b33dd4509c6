package sysfs

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestResolver builds a resolver over a throwaway tree shaped like
// sysfs: real entries under sys/devices/virtual/block, name symlinks under
// sys/class/block.
func newTestResolver(t *testing.T) (*Resolver, string) {
	t.Helper()
	root := t.TempDir()

	devices := filepath.Join(root, "sys", "devices", "virtual", "block")
	classBlock := filepath.Join(root, "sys", "class", "block")
	sysBlock := filepath.Join(root, "sys", "block")
	dev := filepath.Join(root, "dev")
	for _, d := range []string{devices, classBlock, sysBlock, dev} {
		require.NoError(t, os.MkdirAll(d, 0755))
	}

	r := &Resolver{
		SysBlock:      sysBlock,
		SysClassBlock: classBlock,
		SysDevBlock:   filepath.Join(root, "sys", "dev", "block"),
		Dev:           dev,
	}
	return r, root
}

func mkdev(t *testing.T, root, name string, subdirs ...string) string {
	t.Helper()
	entry := filepath.Join(root, "sys", "devices", "virtual", "block", name)
	require.NoError(t, os.MkdirAll(entry, 0755))
	for _, sub := range subdirs {
		require.NoError(t, os.MkdirAll(filepath.Join(entry, sub), 0755))
	}
	link := filepath.Join(root, "sys", "class", "block", name)
	require.NoError(t, os.Symlink(entry, link))
	return entry
}

func TestSysBlockPath(t *testing.T) {
	a := assert.New(t)
	r, root := newTestResolver(t)

	entry := mkdev(t, root, "vdb", "holders")
	want, err := filepath.EvalSymlinks(entry)
	require.NoError(t, err)

	table := []struct {
		device  string
		want    string
		wantErr bool
	}{
		{device: "vdb", want: want},
		{device: entry, want: want},
		{device: filepath.Join(root, "sys", "class", "block", "vdb"), want: want},
		{device: "vdz", wantErr: true},
		{device: "", wantErr: true},
	}

	for _, e := range table {
		got, err := r.SysBlockPath(e.device)
		if e.wantErr {
			a.Error(err, e.device)
			continue
		}
		a.NoError(err, e.device)
		a.Equal(e.want, got, e.device)
	}
}

func TestHolders(t *testing.T) {
	a := assert.New(t)
	r, root := newTestResolver(t)

	entry := mkdev(t, root, "vdb", "holders")

	holders, err := r.Holders(entry)
	a.NoError(err)
	a.Empty(holders)

	dm0 := mkdev(t, root, "dm-0")
	require.NoError(t, os.Symlink(dm0, filepath.Join(entry, "holders", "dm-0")))

	holders, err = r.Holders(entry)
	a.NoError(err)
	a.Equal([]string{"dm-0"}, holders)

	// a node with no holders directory at all has no holders
	bare := mkdev(t, root, "vdc")
	holders, err = r.Holders(bare)
	a.NoError(err)
	a.Empty(holders)
}

func TestRealHolderPath(t *testing.T) {
	a := assert.New(t)
	r, root := newTestResolver(t)

	entry := mkdev(t, root, "vdb", "holders")
	dm0 := mkdev(t, root, "dm-0")
	require.NoError(t, os.Symlink(dm0, filepath.Join(entry, "holders", "dm-0")))

	got, err := r.RealHolderPath(entry, "dm-0")
	a.NoError(err)
	want, err := filepath.EvalSymlinks(dm0)
	a.NoError(err)
	a.Equal(want, got)

	// dangling entry: the holder vanished mid walk
	require.NoError(t, os.Symlink(filepath.Join(root, "gone"), filepath.Join(entry, "holders", "dm-1")))
	_, err = r.RealHolderPath(entry, "dm-1")
	a.Error(err)
}

func TestSlaves(t *testing.T) {
	a := assert.New(t)
	r, root := newTestResolver(t)

	dm0 := mkdev(t, root, "dm-0", "slaves")
	vdb := mkdev(t, root, "vdb")
	require.NoError(t, os.Symlink(vdb, filepath.Join(dm0, "slaves", "vdb")))

	slaves, err := r.Slaves(dm0)
	a.NoError(err)
	a.Equal([]string{"vdb"}, slaves)
}

func TestHasLayerMarker(t *testing.T) {
	a := assert.New(t)
	r, root := newTestResolver(t)

	dm0 := mkdev(t, root, "dm-0", "dm")
	a.True(r.HasLayerMarker(dm0, "dm"))
	a.False(r.HasLayerMarker(dm0, "md"))
	a.False(r.HasLayerMarker(dm0, "bcache"))
}

func TestDMName(t *testing.T) {
	a := assert.New(t)
	r, root := newTestResolver(t)

	dm0 := mkdev(t, root, "dm-0", "dm")
	require.NoError(t, os.WriteFile(filepath.Join(dm0, "dm", "name"), []byte("vg0-data\n"), 0644))

	name, err := r.DMName(dm0)
	a.NoError(err)
	a.Equal("vg0-data", name)

	vdb := mkdev(t, root, "vdb")
	_, err = r.DMName(vdb)
	a.Error(err)
}

func TestDevNameAndPath(t *testing.T) {
	a := assert.New(t)
	r, root := newTestResolver(t)

	dm0 := mkdev(t, root, "dm-0")
	a.Equal("dm-0", r.DevName(dm0))

	_, err := r.DevPath(dm0)
	a.Error(err)

	require.NoError(t, os.WriteFile(filepath.Join(root, "dev", "dm-0"), nil, 0644))
	node, err := r.DevPath(dm0)
	a.NoError(err)
	a.Equal(filepath.Join(root, "dev", "dm-0"), node)
}
