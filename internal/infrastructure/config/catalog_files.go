package config

import (
	"fmt"
	"os"

	"github.com/asakaida/unicatalog/internal/entities"
	"gopkg.in/yaml.v3"
)

// descriptionsFile is the layout of CATALOG_DESCRIPTIONS_FILE:
//
//	descriptions:
//	  credits: ECTS credits
//	  lab_hours: Weekly lab hours
type descriptionsFile struct {
	Descriptions map[string]string `yaml:"descriptions"`
}

// attributesFile is the layout of an attribute declarations file:
//
//	attributes:
//	  - name: credits
//	    data_type: number
//	    description: ECTS credits
type attributesFile struct {
	Attributes []*entities.AttributeDefinition `yaml:"attributes"`
}

// LoadDescriptions builds the attribute description table. An empty path
// yields the built-in defaults.
func LoadDescriptions(path string) (*entities.DescriptionTable, error) {
	if path == "" {
		return entities.NewDescriptionTable(nil), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read descriptions file: %w", err)
	}

	var file descriptionsFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse descriptions file %s: %w", path, err)
	}

	return entities.NewDescriptionTable(file.Descriptions), nil
}

// LoadAttributeDefinitions reads attribute declarations for seeding the
// registry. Definitions are normalized and validated before returning.
func LoadAttributeDefinitions(path string) ([]*entities.AttributeDefinition, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read attributes file: %w", err)
	}

	var file attributesFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse attributes file %s: %w", path, err)
	}

	seen := make(map[string]bool, len(file.Attributes))
	for i, def := range file.Attributes {
		if def == nil {
			return nil, fmt.Errorf("attribute #%d: empty definition", i+1)
		}
		if err := def.Normalize(); err != nil {
			return nil, fmt.Errorf("attribute #%d: %w", i+1, err)
		}
		if seen[def.Name] {
			return nil, fmt.Errorf("attribute %q declared more than once", def.Name)
		}
		seen[def.Name] = true
	}

	return file.Attributes, nil
}
