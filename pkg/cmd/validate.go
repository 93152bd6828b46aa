// Copyright 2024 The cfnvet Authors.
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"cfnvet.dev/cfnvet/pkg/awstype"
	"cfnvet.dev/cfnvet/pkg/cfnfn"
	cmdui "cfnvet.dev/cfnvet/pkg/cmd/ui"
	"cfnvet.dev/cfnvet/pkg/document"
	"cfnvet.dev/cfnvet/pkg/jsonschema"
	"cfnvet.dev/cfnvet/pkg/lintconfig"
	"cfnvet.dev/cfnvet/pkg/schemaset"
	"cfnvet.dev/cfnvet/pkg/starlarkrule"
	"cfnvet.dev/cfnvet/pkg/template"
)

type ValidateOptions struct {
	Debug      bool
	Region     string
	ConfigPath string
	SchemaDirs []string
	RuleDirs   []string
	JSONOutput bool
	MaxDepth   int

	Files []string
}

func NewValidateOptions() *ValidateOptions {
	return &ValidateOptions{}
}

func NewValidateCmd(o *ValidateOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Validate CloudFormation templates against resource schemas",
		RunE:  func(_ *cobra.Command, _ []string) error { return o.Run() },
	}
	cmd.Flags().BoolVar(&o.Debug, "debug", false, "Enable debug output")
	cmd.Flags().StringVar(&o.Region, "region", "", "Region used to resolve pseudo parameters (default "+cfnfn.RegionPrimary+")")
	cmd.Flags().StringVar(&o.ConfigPath, "config", "", "Config file path (default "+lintconfig.DefaultFileName+" if present)")
	cmd.Flags().StringSliceVar(&o.SchemaDirs, "schema-dir", nil, "Directory of resource schema files (can be specified multiple times)")
	cmd.Flags().StringSliceVar(&o.RuleDirs, "rule-dir", nil, "Directory of Starlark rule files (can be specified multiple times)")
	cmd.Flags().BoolVar(&o.JSONOutput, "json", false, "Print findings as JSON")
	cmd.Flags().IntVar(&o.MaxDepth, "max-depth", 0, "Maximum schema descent depth (0 means the built-in default)")
	cmd.Flags().StringSliceVarP(&o.Files, "file", "f", nil, "Template file to validate (can be specified multiple times)")
	return cmd
}

func (o *ValidateOptions) Run() error {
	ui := cmdui.NewTTY(o.Debug)

	if len(o.Files) == 0 {
		return fmt.Errorf("Expected at least one template file (use -f)")
	}

	config, err := o.loadConfig()
	if err != nil {
		return err
	}

	validator, err := o.buildValidator(config)
	if err != nil {
		return err
	}

	totalFindings := 0
	for _, filePath := range o.Files {
		report, err := o.validateFile(validator, filePath)
		if err != nil {
			return err
		}
		report = config.Apply(report)
		totalFindings += len(report.Findings)

		if o.JSONOutput {
			err = printJSON(ui, filePath, report)
		} else {
			printText(ui, filePath, report)
		}
		if err != nil {
			return err
		}
	}

	if totalFindings > 0 {
		return fmt.Errorf("Validation failed with %d finding(s)", totalFindings)
	}
	return nil
}

func (o *ValidateOptions) loadConfig() (lintconfig.Config, error) {
	if o.ConfigPath != "" {
		return lintconfig.LoadFile(o.ConfigPath)
	}
	return lintconfig.LoadDefault()
}

func (o *ValidateOptions) buildValidator(config lintconfig.Config) (*template.Validator, error) {
	registry := schemaset.NewRegistry()
	for _, dir := range append(config.SchemaDirs, o.SchemaDirs...) {
		err := registry.LoadFS(os.DirFS(dir), ".")
		if err != nil {
			return nil, err
		}
	}

	delegates := awstype.Catalog()
	for _, dir := range append(config.RuleDirs, o.RuleDirs...) {
		loaded, err := starlarkrule.LoadFS(os.DirFS(dir), ".")
		if err != nil {
			return nil, err
		}
		for name, delegate := range loaded {
			delegates[name] = delegate
		}
	}

	region := o.Region
	if region == "" {
		region = config.Region
	}

	return &template.Validator{
		Registry: registry,
		Region:   region,
		Opts: jsonschema.Options{
			AwsTypes:   delegates,
			AuxSchemas: registry,
			MaxDepth:   o.MaxDepth,
		},
	}, nil
}

func (o *ValidateOptions) validateFile(validator *template.Validator, filePath string) (template.Report, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return template.Report{}, fmt.Errorf("Reading template '%s': %s", filePath, err)
	}
	doc, err := document.NewParser().ParseBytes(data, filePath)
	if err != nil {
		return template.Report{}, fmt.Errorf("Parsing template '%s': %s", filePath, err)
	}
	return validator.Validate(context.Background(), doc), nil
}

func printText(ui cmdui.UI, filePath string, report template.Report) {
	if report.Valid() && len(report.Skipped) == 0 {
		ui.Printf("%s: ok\n", filePath)
		return
	}

	for _, finding := range report.Findings {
		printFinding(ui, filePath, finding.Err, 0)
	}
	for _, skip := range report.Skipped {
		ui.Debugf("%s: skipped %s: %s\n", filePath, skip.Path.String(), skip.Reason)
	}
	ui.Printf("%s: %d finding(s), %d subtree(s) skipped\n",
		filePath, len(report.Findings), len(report.Skipped))
}

func printFinding(ui cmdui.UI, filePath string, err jsonschema.ValidationError, indent int) {
	prefix := ""
	for i := 0; i < indent; i++ {
		prefix += "  "
	}
	ui.Printf("%s%s: %s %s: %s\n", prefix, filePath, err.RuleID, err.Path.String(), err.Message)
	for _, cause := range err.Causes {
		printFinding(ui, filePath, cause, indent+1)
	}
}

type jsonReport struct {
	File     string         `json:"file"`
	Findings []jsonFinding  `json:"findings"`
	Skipped  []jsonSkip     `json:"skipped"`
}

type jsonFinding struct {
	RuleID   string        `json:"ruleId"`
	Resource string        `json:"resource,omitempty"`
	Path     string        `json:"path"`
	Kind     string        `json:"kind"`
	Message  string        `json:"message"`
	Causes   []jsonFinding `json:"causes,omitempty"`
}

type jsonSkip struct {
	Path   string `json:"path"`
	Reason string `json:"reason"`
}

func printJSON(ui cmdui.UI, filePath string, report template.Report) error {
	out := jsonReport{File: filePath, Findings: []jsonFinding{}, Skipped: []jsonSkip{}}
	for _, finding := range report.Findings {
		out.Findings = append(out.Findings, newJSONFinding(finding.LogicalID, finding.Err))
	}
	for _, skip := range report.Skipped {
		out.Skipped = append(out.Skipped, jsonSkip{Path: skip.Path.String(), Reason: skip.Reason})
	}

	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return err
	}
	ui.Printf("%s\n", data)
	return nil
}

func newJSONFinding(logicalID string, err jsonschema.ValidationError) jsonFinding {
	finding := jsonFinding{
		RuleID:   err.RuleID,
		Resource: logicalID,
		Path:     err.Path.String(),
		Kind:     string(err.Kind),
		Message:  err.Message,
	}
	for _, cause := range err.Causes {
		finding.Causes = append(finding.Causes, newJSONFinding("", cause))
	}
	return finding
}
