// Copyright 2024 The cfnvet Authors.
// SPDX-License-Identifier: Apache-2.0

// Package document holds the parsed representation of a CloudFormation
// template or template fragment: an immutable tree of mappings (ordered,
// unique string keys), sequences and scalars, each annotated with its source
// position. Trees are produced once by Parser and never mutated by
// validation.
package document
