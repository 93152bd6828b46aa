// Copyright 2024 The cfnvet Authors.
// SPDX-License-Identifier: Apache-2.0

package ui

import (
	"io"
)

// UI is the command layer's output device.
type UI interface {
	Printf(string, ...interface{})
	Warnf(string, ...interface{})
	Debugf(string, ...interface{})
	DebugWriter() io.Writer
}
