package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// ErrEmptyKeyPath is returned when a key path has no segments.
var ErrEmptyKeyPath = errors.New("empty key path")

// ParseKeyPath splits a dotted key path into its segments.
// Example: "notifications.enabled" -> ["notifications", "enabled"]
func ParseKeyPath(path string) ([]string, error) {
	if strings.TrimSpace(path) == "" {
		return nil, ErrEmptyKeyPath
	}
	return strings.Split(path, "."), nil
}

// SetNestedValue sets a value at the given key path inside a YAML document
// node, creating intermediate mappings as needed. Operating on yaml.Node
// rather than a decoded map keeps existing comments and key order intact.
func SetNestedValue(root *yaml.Node, keyPath []string, value interface{}) error {
	if len(keyPath) == 0 {
		return ErrEmptyKeyPath
	}

	mapping, err := documentMapping(root)
	if err != nil {
		return err
	}

	for i, key := range keyPath {
		last := i == len(keyPath)-1
		valueNode := findMappingValue(mapping, key)

		if last {
			encoded := &yaml.Node{}
			if err := encoded.Encode(value); err != nil {
				return fmt.Errorf("encoding value for %q: %w", key, err)
			}
			if valueNode != nil {
				// Overwrite in place so the key node (and its comments) survive.
				valueNode.Kind = encoded.Kind
				valueNode.Tag = encoded.Tag
				valueNode.Value = encoded.Value
				valueNode.Content = encoded.Content
				return nil
			}
			mapping.Content = append(mapping.Content, scalarKeyNode(key), encoded)
			return nil
		}

		if valueNode == nil {
			valueNode = &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
			mapping.Content = append(mapping.Content, scalarKeyNode(key), valueNode)
		} else if valueNode.Kind != yaml.MappingNode {
			return fmt.Errorf("key %q is not a mapping", key)
		}
		mapping = valueNode
	}
	return nil
}

// GetNestedValue returns the node at the given key path, or nil when any
// segment is missing.
func GetNestedValue(root *yaml.Node, keyPath []string) *yaml.Node {
	if len(keyPath) == 0 {
		return nil
	}

	mapping := root
	if mapping.Kind == yaml.DocumentNode {
		if len(mapping.Content) == 0 {
			return nil
		}
		mapping = mapping.Content[0]
	}

	for i, key := range keyPath {
		if mapping.Kind != yaml.MappingNode {
			return nil
		}
		valueNode := findMappingValue(mapping, key)
		if valueNode == nil {
			return nil
		}
		if i == len(keyPath)-1 {
			return valueNode
		}
		mapping = valueNode
	}
	return nil
}

// SetConfigValue validates and writes a single configuration value to the
// YAML config file at configPath, creating the file (and parent directories)
// if it does not exist yet.
func SetConfigValue(configPath, key, value string) error {
	parsed, err := ValidateValue(key, value)
	if err != nil {
		return err
	}

	keyPath, err := ParseKeyPath(key)
	if err != nil {
		return err
	}

	var root yaml.Node
	data, err := os.ReadFile(configPath)
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("reading config file: %w", err)
	}
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, &root); err != nil {
			return fmt.Errorf("parsing config file %s: %w", configPath, err)
		}
	}

	if err := SetNestedValue(&root, keyPath, parsed.Parsed); err != nil {
		return err
	}

	out, err := yaml.Marshal(&root)
	if err != nil {
		return fmt.Errorf("serializing config: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(configPath), 0o755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	if err := os.WriteFile(configPath, out, 0o644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}

// documentMapping returns the root mapping of a YAML document node,
// initializing an empty document into a document+mapping pair.
func documentMapping(root *yaml.Node) (*yaml.Node, error) {
	if root.Kind == 0 {
		root.Kind = yaml.DocumentNode
		root.Content = []*yaml.Node{{Kind: yaml.MappingNode, Tag: "!!map"}}
		return root.Content[0], nil
	}
	if root.Kind == yaml.DocumentNode {
		if len(root.Content) == 0 {
			root.Content = []*yaml.Node{{Kind: yaml.MappingNode, Tag: "!!map"}}
		}
		if root.Content[0].Kind != yaml.MappingNode {
			return nil, fmt.Errorf("config root is not a mapping")
		}
		return root.Content[0], nil
	}
	if root.Kind == yaml.MappingNode {
		return root, nil
	}
	return nil, fmt.Errorf("config root is not a mapping")
}

// findMappingValue returns the value node for key within a mapping, or nil.
func findMappingValue(mapping *yaml.Node, key string) *yaml.Node {
	for i := 0; i+1 < len(mapping.Content); i += 2 {
		if mapping.Content[i].Value == key {
			return mapping.Content[i+1]
		}
	}
	return nil
}

func scalarKeyNode(key string) *yaml.Node {
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: key}
}
