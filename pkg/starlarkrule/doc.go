// Copyright 2024 The cfnvet Authors.
// SPDX-License-Identifier: Apache-2.0

// Package starlarkrule loads Starlark rule scripts and adapts them into
// awsType delegates, letting users extend semantic validation without
// recompiling.
package starlarkrule
