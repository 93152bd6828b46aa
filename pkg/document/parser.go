// Copyright 2024 The cfnvet Authors.
// SPDX-License-Identifier: Apache-2.0

package document

import (
	"fmt"

	"cfnvet.dev/cfnvet/pkg/filepos"
	yaml "gopkg.in/yaml.v3"
)

// Parser turns raw template bytes (YAML or JSON; JSON is a YAML subset) into
// a position-annotated Document tree.
type Parser struct {
	associatedName string
}

func NewParser() *Parser {
	return &Parser{}
}

func (p *Parser) ParseBytes(data []byte, associatedName string) (*Document, error) {
	p.associatedName = associatedName

	var root yaml.Node
	err := yaml.Unmarshal(data, &root)
	if err != nil {
		return nil, fmt.Errorf("Parsing %s: %s", associatedName, err)
	}

	if root.Kind == 0 || len(root.Content) == 0 {
		return &Document{Value: nil, Position: filepos.NewUnknownPositionInFile(associatedName)}, nil
	}

	val, err := p.parseNode(root.Content[0])
	if err != nil {
		return nil, err
	}

	return &Document{Value: val, Position: p.newPosition(root.Content[0])}, nil
}

func (p *Parser) parseNode(node *yaml.Node) (interface{}, error) {
	switch node.Kind {
	case yaml.MappingNode:
		return p.parseMapping(node)
	case yaml.SequenceNode:
		return p.parseSequence(node)
	case yaml.ScalarNode:
		return p.parseScalar(node)
	case yaml.AliasNode:
		return p.parseNode(node.Alias)
	default:
		return nil, fmt.Errorf("Parsing %s: unexpected node kind %d at line %d", p.associatedName, node.Kind, node.Line)
	}
}

func (p *Parser) parseMapping(node *yaml.Node) (*Map, error) {
	result := &Map{Position: p.newPosition(node)}

	for i := 0; i+1 < len(node.Content); i += 2 {
		keyNode, valNode := node.Content[i], node.Content[i+1]
		if keyNode.Kind != yaml.ScalarNode {
			return nil, fmt.Errorf("Parsing %s: expected map key to be a scalar at line %d", p.associatedName, keyNode.Line)
		}
		if result.Has(keyNode.Value) {
			return nil, fmt.Errorf("Parsing %s: duplicate map key '%s' at line %d", p.associatedName, keyNode.Value, keyNode.Line)
		}

		val, err := p.parseNode(valNode)
		if err != nil {
			return nil, err
		}

		result.Items = append(result.Items, &MapItem{
			Key:      keyNode.Value,
			Value:    val,
			Position: p.newPosition(keyNode),
		})
	}

	return result, nil
}

func (p *Parser) parseSequence(node *yaml.Node) (*Array, error) {
	result := &Array{Position: p.newPosition(node)}

	for _, itemNode := range node.Content {
		val, err := p.parseNode(itemNode)
		if err != nil {
			return nil, err
		}
		result.Items = append(result.Items, &ArrayItem{Value: val, Position: p.newPosition(itemNode)})
	}

	return result, nil
}

func (p *Parser) parseScalar(node *yaml.Node) (interface{}, error) {
	switch node.Tag {
	case "!!str":
		return node.Value, nil
	case "!!null":
		return nil, nil
	case "!!bool":
		var result bool
		if err := node.Decode(&result); err != nil {
			return nil, fmt.Errorf("Parsing %s: %s", p.associatedName, err)
		}
		return result, nil
	case "!!int":
		var result int64
		if err := node.Decode(&result); err != nil {
			return nil, fmt.Errorf("Parsing %s: %s", p.associatedName, err)
		}
		return result, nil
	case "!!float":
		var result float64
		if err := node.Decode(&result); err != nil {
			return nil, fmt.Errorf("Parsing %s: %s", p.associatedName, err)
		}
		return result, nil
	default:
		// timestamps, binary and friends keep their raw string form
		return node.Value, nil
	}
}

func (p *Parser) newPosition(node *yaml.Node) *filepos.Position {
	if node.Line <= 0 {
		return filepos.NewUnknownPositionInFile(p.associatedName)
	}
	return filepos.NewPositionInFile(node.Line, p.associatedName)
}
