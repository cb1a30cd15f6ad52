// SPDX-License-Identifier: MPL-2.0

package testutil

import (
	"os"
	"runtime"
	"strconv"
	"sync"
)

// ContainerSemaphore returns a process-wide buffered channel capping how
// many engine-backed tests run at once. Send to acquire, receive to
// release:
//
//	sem := testutil.ContainerSemaphore()
//	sem <- struct{}{}
//	defer func() { <-sem }()
//
// Too many concurrent image builds hang constrained CI runners outright
// instead of failing, so the cap defaults to min(GOMAXPROCS, 2).
// KILN_TEST_CONTAINER_PARALLEL overrides it.
var ContainerSemaphore = sync.OnceValue(func() chan struct{} {
	if v := os.Getenv("KILN_TEST_CONTAINER_PARALLEL"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return make(chan struct{}, n)
		}
	}
	return make(chan struct{}, min(runtime.GOMAXPROCS(0), 2))
})
