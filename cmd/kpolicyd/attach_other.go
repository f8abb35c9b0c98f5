//go:build !linux

package main

import (
	"io"

	"github.com/pkg/errors"
)

func attachHooksOrExplain(string) (io.Closer, error) {
	return nil, errors.New("kpolicyd: kernel hook attachment requires linux; use --userspace-only")
}
