// Copyright 2024 The cfnvet Authors.
// SPDX-License-Identifier: Apache-2.0

package lintconfig

import (
	"fmt"
	"os"
	"strings"

	"github.com/BurntSushi/toml"

	"cfnvet.dev/cfnvet/pkg/jsonschema"
	"cfnvet.dev/cfnvet/pkg/template"
)

// DefaultFileName is looked up in the working directory when no explicit
// config path is given.
const DefaultFileName = ".cfnvet.toml"

// Config is the on-disk project configuration.
type Config struct {
	Region      string   `toml:"region"`
	SchemaDirs  []string `toml:"schema-dirs"`
	RuleDirs    []string `toml:"rule-dirs"`
	IgnoreRules []string `toml:"ignore-rules"`
	Mutes       []Mute   `toml:"mute"`
}

// Mute suppresses findings for the named rules under one document subtree.
type Mute struct {
	Rules      []string `toml:"rules"`
	PathPrefix string   `toml:"path-prefix"`
}

// LoadFile reads and decodes a config file.
func LoadFile(path string) (Config, error) {
	var config Config
	meta, err := toml.DecodeFile(path, &config)
	if err != nil {
		return Config{}, fmt.Errorf("Decoding config file '%s': %s", path, err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		var keys []string
		for _, key := range undecoded {
			keys = append(keys, key.String())
		}
		return Config{}, fmt.Errorf("Config file '%s' has unknown keys: %s",
			path, strings.Join(keys, ", "))
	}
	return config, nil
}

// LoadDefault reads DefaultFileName if it exists; a missing file yields the
// zero config.
func LoadDefault() (Config, error) {
	if _, err := os.Stat(DefaultFileName); os.IsNotExist(err) {
		return Config{}, nil
	}
	return LoadFile(DefaultFileName)
}

// Apply returns the report with suppressed findings removed.
func (c Config) Apply(report template.Report) template.Report {
	if len(c.IgnoreRules) == 0 && len(c.Mutes) == 0 {
		return report
	}

	filtered := template.Report{Skipped: report.Skipped}
	for _, finding := range report.Findings {
		if c.suppressed(finding.Err) {
			continue
		}
		filtered.Findings = append(filtered.Findings, finding)
	}
	return filtered
}

func (c Config) suppressed(err jsonschema.ValidationError) bool {
	for _, ruleID := range c.IgnoreRules {
		if err.RuleID == ruleID {
			return true
		}
	}
	pointer := err.Path.String()
	for _, mute := range c.Mutes {
		if !strings.HasPrefix(pointer, mute.PathPrefix) {
			continue
		}
		if len(mute.Rules) == 0 {
			return true
		}
		for _, ruleID := range mute.Rules {
			if err.RuleID == ruleID {
				return true
			}
		}
	}
	return false
}
