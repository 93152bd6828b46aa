// Copyright 2024 The cfnvet Authors.
// SPDX-License-Identifier: Apache-2.0

// Package filepos tracks source file positions of parsed template nodes so
// findings can point back at the offending line.
package filepos
