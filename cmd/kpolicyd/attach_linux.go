//go:build linux

package main

import (
	"io"

	"github.com/cloudnative-sec/kpolicyd/internal/ebpfmaps"
)

func attachHooksOrExplain(objPath string) (io.Closer, error) {
	return ebpfmaps.AttachHooks(objPath)
}
