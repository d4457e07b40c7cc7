// Copyright 2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

// Package numa discovers how many NUMA memory domains the machine exposes.
// The solver keeps one replica of its iterate per domain, so the count feeds
// the default replica configuration.
package numa
