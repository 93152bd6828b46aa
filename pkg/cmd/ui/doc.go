// Copyright 2024 The cfnvet Authors.
// SPDX-License-Identifier: Apache-2.0

/*
Package ui is a thin abstraction over command output (typically, a tty
device).
*/
package ui
