// Copyright 2024 The cfnvet Authors.
// SPDX-License-Identifier: Apache-2.0

/*
Package pkg is the collection of packages that make up the implementation of
cfnvet.

From top-down, cfnvet code is layered in this way:

# Entry Point

cfnvet is built into two executable formats:

	./cmd/cfnvet          // a command-line tool
	./cmd/cfnvet-lambda   // an AWS Lambda function

# Commands

The most commonly used command is "validate"; it is also the default.

	pkg/cmd
	pkg/cmd/ui

# The Template

Validation is driven per template: the template model is extracted from the
parsed document, the intrinsic-function resolution table is derived from its
Parameters, Mappings and Conditions sections, and every resource is checked
against the schema registered for its type.

	pkg/template
	pkg/schemaset
	pkg/lintconfig

# The Engine

The heart of cfnvet is structural validation: a recursive walk of a document
fragment against a schema, with CloudFormation's own semantics layered on
top of the standard keywords -- intrinsic calls are resolved best-effort
before leaf checks, values resolving to AWS::NoValue are absent for
group-level keywords, and unresolvable values are reported as skipped rather
than failed.

	pkg/jsonschema
	pkg/cfnfn
	pkg/awstype
	pkg/starlarkrule

# Document Structures

cfnvet delegates parsing YAML to gopkg.in/yaml.v3 and converts the output
into its own position-annotated document tree so findings can point at the
authored source.

	pkg/document
	pkg/filepos

# Utilities

	pkg/version
*/
package pkg
