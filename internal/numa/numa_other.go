// Copyright 2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

//go:build !linux

package numa

// NumDomains returns the number of NUMA memory domains. Topology discovery is
// only implemented for Linux; elsewhere a single domain is assumed.
func NumDomains() int {
	return 1
}
