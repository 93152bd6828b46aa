// Copyright 2024 The cfnvet Authors.
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"github.com/cppforlife/cobrautil"
	"github.com/spf13/cobra"

	"cfnvet.dev/cfnvet/pkg/version"
)

type CfnvetOptions struct{}

func NewDefaultCfnvetOptions() *CfnvetOptions {
	return &CfnvetOptions{}
}

func NewDefaultCfnvetCmd() *cobra.Command {
	return NewCfnvetCmd(NewDefaultCfnvetOptions())
}

func NewCfnvetCmd(o *CfnvetOptions) *cobra.Command {
	cmd := NewValidateCmd(NewValidateOptions())

	cmd.Use = "cfnvet"
	cmd.Aliases = nil
	cmd.Version = version.Version
	cmd.Short = "cfnvet validates CloudFormation templates against resource schemas"
	cmd.Long = `cfnvet validates CloudFormation templates against resource schemas.

The default command is "validate": cfnvet -f template.yml`

	// Affects children as well
	cmd.SilenceErrors = true
	cmd.SilenceUsage = true

	// Disable docs header
	cmd.DisableAutoGenTag = true

	cmd.AddCommand(NewVersionCmd(NewVersionOptions()))
	cmd.AddCommand(NewValidateCmd(NewValidateOptions()))
	cmd.AddCommand(NewRulesCmd(NewRulesOptions()))

	// Reconfigure Commands
	cobrautil.VisitCommands(cmd, cobrautil.ReconfigureCmdWithSubcmd,
		cobrautil.DisallowExtraArgs, cobrautil.WrapRunEForCmd(cobrautil.ResolveFlagsForCmd))

	return cmd
}
