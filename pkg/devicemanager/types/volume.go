package types

// VgGroup is one row of the vgs report.
type VgGroup struct {
	VGName  string    `json:"vgName"`
	PVCount uint64    `json:"pvCount"`
	LVCount uint64    `json:"lvCount"`
	VGAttr  string    `json:"vgAttr"`
	VGSize  uint64    `json:"vgSize"`
	VGFree  uint64    `json:"vgFree"`
	PVS     []*PVInfo `json:"pvs"`
}

// PVInfo is one row of the pvs report.
type PVInfo struct {
	PVName string `json:"pvName"`
	VGName string `json:"vgName"`
	PVFmt  string `json:"pvFmt"`
	PVAttr string `json:"pvAttr"`
	PVSize uint64 `json:"pvSize"`
	PVFree uint64 `json:"pvFree"`
}

// LvInfo is one row of the lvs report.
type LvInfo struct {
	LVName        string `json:"lvName"`
	VGName        string `json:"vgName"`
	LVPath        string `json:"lvPath"`
	LVSize        uint64 `json:"lvSize"`
	LVAttr        string `json:"lvAttr"`
	LVKernelMajor uint64 `json:"lvKernelMajor"`
	LVKernelMinor uint64 `json:"lvKernelMinor"`
}
