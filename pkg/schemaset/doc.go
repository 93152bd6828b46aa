// Copyright 2024 The cfnvet Authors.
// SPDX-License-Identifier: Apache-2.0

// Package schemaset loads and indexes resource schema documents from a
// filesystem so the validation engine can find the schema for each resource
// type named in a template.
package schemaset
