// Copyright 2024 The cfnvet Authors.
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"sort"

	"github.com/spf13/cobra"

	cmdui "cfnvet.dev/cfnvet/pkg/cmd/ui"
	"cfnvet.dev/cfnvet/pkg/jsonschema"
)

type RulesOptions struct{}

func NewRulesOptions() *RulesOptions {
	return &RulesOptions{}
}

func NewRulesCmd(o *RulesOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rules",
		Short: "List rule IDs usable in ignore-rules and mute config",
		RunE:  func(_ *cobra.Command, _ []string) error { return o.Run() },
	}
	return cmd
}

func (o *RulesOptions) Run() error {
	ui := cmdui.NewTTY(false)

	rules := jsonschema.Rules()
	byID := map[string]string{}
	var ids []string
	for keyword, id := range rules {
		byID[id] = keyword
		ids = append(ids, id)
	}
	sort.Strings(ids)

	for _, id := range ids {
		ui.Printf("%s\t%s\n", id, byID[id])
	}
	return nil
}
