// Copyright 2024 The cfnvet Authors.
// SPDX-License-Identifier: Apache-2.0

package schemaset

import (
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"

	"cfnvet.dev/cfnvet/pkg/document"
	"cfnvet.dev/cfnvet/pkg/jsonschema"
)

// Registry holds the per-resource-type schema documents plus the auxiliary
// schemas that the cfnLint keyword names. It is immutable after loading.
type Registry struct {
	resources map[string]*jsonschema.SchemaDocument
	aux       map[string]*jsonschema.SchemaDocument
}

var _ jsonschema.AuxSchemaLookup = &Registry{}

func NewRegistry() *Registry {
	return &Registry{
		resources: map[string]*jsonschema.SchemaDocument{},
		aux:       map[string]*jsonschema.SchemaDocument{},
	}
}

// LoadFS reads every .json/.yml/.yaml file under dir. Files in an "aux"
// subdirectory register under their bare file name for cfnLint dispatch;
// everything else registers as a resource schema under the type name from
// its "typeName" field, falling back to the file name with "-" read as "::"
// (eg AWS-S3-Bucket.json).
func (r *Registry) LoadFS(fsys fs.FS, dir string) error {
	return fs.WalkDir(fsys, dir, func(filePath string, entry fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if entry.IsDir() {
			return nil
		}
		ext := path.Ext(filePath)
		if ext != ".json" && ext != ".yml" && ext != ".yaml" {
			return nil
		}

		data, err := fs.ReadFile(fsys, filePath)
		if err != nil {
			return fmt.Errorf("Reading schema file '%s': %s", filePath, err)
		}
		schemaDoc, err := jsonschema.NewSchemaDocumentFromBytes(data, filePath)
		if err != nil {
			return fmt.Errorf("Parsing schema file '%s': %s", filePath, err)
		}

		baseName := strings.TrimSuffix(path.Base(filePath), ext)
		if path.Base(path.Dir(filePath)) == "aux" {
			r.aux[baseName] = schemaDoc
			return nil
		}

		typeName := typeNameFromBytes(data, filePath)
		if typeName == "" {
			typeName = strings.ReplaceAll(baseName, "-", "::")
		}
		r.resources[typeName] = schemaDoc
		return nil
	})
}

// Register adds a resource schema directly, bypassing the filesystem.
func (r *Registry) Register(typeName string, schemaDoc *jsonschema.SchemaDocument) {
	r.resources[typeName] = schemaDoc
}

// RegisterAux adds an auxiliary schema for cfnLint dispatch.
func (r *Registry) RegisterAux(name string, schemaDoc *jsonschema.SchemaDocument) {
	r.aux[name] = schemaDoc
}

// Lookup returns the schema for a resource type, eg "AWS::S3::Bucket".
func (r *Registry) Lookup(typeName string) (*jsonschema.SchemaDocument, bool) {
	schemaDoc, found := r.resources[typeName]
	return schemaDoc, found
}

// LookupAuxSchema returns a schema registered for cfnLint dispatch.
func (r *Registry) LookupAuxSchema(name string) (*jsonschema.SchemaDocument, bool) {
	schemaDoc, found := r.aux[name]
	return schemaDoc, found
}

// TypeNames returns the registered resource types, sorted.
func (r *Registry) TypeNames() []string {
	var names []string
	for name := range r.resources {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func typeNameFromBytes(data []byte, fileName string) string {
	parsed, err := document.NewParser().ParseBytes(data, fileName)
	if err != nil {
		return ""
	}
	root, ok := parsed.Value.(*document.Map)
	if !ok {
		return ""
	}
	if val, found := root.Get("typeName"); found {
		if str, ok := val.(string); ok {
			return str
		}
	}
	return ""
}
