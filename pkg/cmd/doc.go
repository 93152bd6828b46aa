// Copyright 2024 The cfnvet Authors.
// SPDX-License-Identifier: Apache-2.0

/*
Package cmd is home to cfnvet's "commands" -- instances of cobra.Command
(not to be confused with ./cmd which contains the bootstrapping for executing
cfnvet in various environments).

The default command is "validate".
*/
package cmd
