// Copyright 2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

//go:build linux

package numa

import (
	"os"
	"strings"
)

const sysNodePath = "/sys/devices/system/node"

// NumDomains returns the number of NUMA memory domains reported by sysfs.
// It returns 1 if sysfs is unavailable or reports nothing (containers often
// hide the node topology).
func NumDomains() int {
	return countNodes(sysNodePath)
}

func countNodes(dir string) int {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return 1
	}
	count := 0
	for _, entry := range entries {
		name := entry.Name()
		if !strings.HasPrefix(name, "node") {
			continue
		}
		// Only node<digits> entries are domains ("node0", "node1", ...);
		// the directory also holds files like "possible" and "online".
		if isDigits(name[len("node"):]) {
			count++
		}
	}
	if count < 1 {
		return 1
	}
	return count
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
