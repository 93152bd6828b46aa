// Copyright 2024 The cfnvet Authors.
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"fmt"
	"os"

	uierrs "github.com/cppforlife/go-cli-ui/errors"

	"cfnvet.dev/cfnvet/pkg/cmd"
)

func main() {
	command := cmd.NewDefaultCfnvetCmd()

	err := command.Execute()
	if err != nil {
		fmt.Fprintf(os.Stderr, "cfnvet: Error: %s\n", uierrs.NewMultiLineError(err))
		os.Exit(1)
	}
}
