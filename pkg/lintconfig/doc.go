// Copyright 2024 The cfnvet Authors.
// SPDX-License-Identifier: Apache-2.0

// Package lintconfig reads the project's .cfnvet.toml and filters reports
// through its suppression rules.
package lintconfig
