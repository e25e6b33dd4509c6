package configuration

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func writeConfig(t *testing.T, body string) string {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "config.json"), []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return dir
}

func TestInitConfig(t *testing.T) {
	a := assert.New(t)
	dir := writeConfig(t, `{
  "protectedDevices": ["^vda$", "^/dev/nvme0n1$", ""],
  "commandTimeoutSeconds": 120,
  "wipeAfterShutdown": false,
  "umountBeforeClear": true
}`)

	old := GlobalConfig
	defer func() { GlobalConfig = old }()
	GlobalConfig = initConfig(dir)

	a.Equal(120*time.Second, CommandTimeout())
	a.False(WipeAfterShutdown())
	a.True(UmountBeforeClear())
	a.Equal([]string{"^vda$", "^/dev/nvme0n1$"}, ProtectedDevices())

	a.True(Protected("vda"))
	a.True(Protected("/dev/vda"))
	a.True(Protected("/dev/nvme0n1"))
	a.True(Protected("nvme0n1"))
	a.False(Protected("vdb"))
	a.False(Protected("/dev/sda"))
}

func TestInitConfigDefaults(t *testing.T) {
	a := assert.New(t)
	old := GlobalConfig
	defer func() { GlobalConfig = old }()
	GlobalConfig = initConfig(t.TempDir())

	a.Equal(60*time.Second, CommandTimeout())
	a.True(WipeAfterShutdown())
	a.True(UmountBeforeClear())
}

func TestValidate(t *testing.T) {
	a := assert.New(t)
	a.NoError(validate(Clear{}))
	a.NoError(validate(Clear{ProtectedDevices: []string{"^vd[ab]$", ""}}))
	a.Error(validate(Clear{CommandTimeoutSeconds: -1}))
	a.Error(validate(Clear{ProtectedDevices: []string{"["}}))
}
