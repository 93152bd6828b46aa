// Copyright 2024 The cfnvet Authors.
// SPDX-License-Identifier: Apache-2.0

package cfnfn

import (
	"fmt"
)

const RegionPrimary = "us-east-1"

// Parameter carries the pieces of a template parameter that matter for
// best-effort resolution of a Ref to it.
type Parameter struct {
	Type          string
	Default       interface{}
	AllowedValues []interface{}
}

// RepresentativeValue picks a concrete stand-in value for the parameter, or
// (nil, false) when none can be known statically.
func (p Parameter) RepresentativeValue() (interface{}, bool) {
	if p.Default != nil {
		return p.Default, true
	}
	if len(p.AllowedValues) > 0 {
		return p.AllowedValues[0], true
	}
	return nil, false
}

// Context is the read-only table used to resolve intrinsic functions. It is
// built by the caller (see pkg/template) and never mutated by validation.
type Context struct {
	Region     string
	Parameters map[string]Parameter
	Mappings   map[string]map[string]map[string]interface{}
	// Conditions holds only the conditions whose outcome is statically known.
	Conditions map[string]bool

	pseudo map[string]interface{}
}

func NewContext(region string) *Context {
	if region == "" {
		region = RegionPrimary
	}
	return &Context{
		Region:     region,
		Parameters: map[string]Parameter{},
		Mappings:   map[string]map[string]map[string]interface{}{},
		Conditions: map[string]bool{},
		pseudo:     pseudoValues(region),
	}
}

// PseudoValue returns the sample value for a pseudo parameter such as
// "AWS::Region". AWS::NoValue is deliberately absent; it is handled by the
// resolver as the NoValue sentinel.
func (c *Context) PseudoValue(name string) (interface{}, bool) {
	val, found := c.pseudo[name]
	return val, found
}

func pseudoValues(region string) map[string]interface{} {
	partition := partitionForRegion(region)
	return map[string]interface{}{
		"AWS::AccountId": "123456789012",
		"AWS::NotificationARNs": []interface{}{
			fmt.Sprintf("arn:%s:sns:%s:123456789012:notification", partition, region),
		},
		"AWS::Partition": partition,
		"AWS::Region":    region,
		"AWS::StackId": fmt.Sprintf(
			"arn:%s:cloudformation:%s:123456789012:stack/teststack/51af3dc0-da77-11e4-872e-1234567db123",
			partition, region),
		"AWS::StackName": "teststack",
		"AWS::URLSuffix": urlSuffixForRegion(region),
	}
}

func partitionForRegion(region string) string {
	switch region {
	case "us-gov-east-1", "us-gov-west-1":
		return "aws-us-gov"
	case "cn-north-1", "cn-northwest-1":
		return "aws-cn"
	default:
		return "aws"
	}
}

func urlSuffixForRegion(region string) string {
	switch region {
	case "cn-north-1", "cn-northwest-1":
		return "amazonaws.com.cn"
	default:
		return "amazonaws.com"
	}
}
