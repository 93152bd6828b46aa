// Copyright 2024 The cfnvet Authors.
// SPDX-License-Identifier: Apache-2.0

// Package version records the release version stamped into the binary.
package version

// Version is overridden at build time via -ldflags.
var Version = "0.1.0"
