package model

import (
	"errors"
	"fmt"

	"gopkg.in/yaml.v3"
)

// DescriptorFileNames lists the metadata descriptor file names, in lookup order.
var DescriptorFileNames = []string{"metadata.yml", "metadata.yaml"}

// Descriptor is the metadata descriptor declaring a service inside its source
// tree. Name and Type are required.
type Descriptor struct {
	Name        string   `yaml:"name"`
	Type        string   `yaml:"type"`
	Version     string   `yaml:"version,omitempty"`
	Description string   `yaml:"description,omitempty"`
	URL         string   `yaml:"url,omitempty"`
	Language    string   `yaml:"language,omitempty"`
	Endpoints   []string `yaml:"endpoints,omitempty"`
}

// ParseDescriptor decodes a YAML metadata descriptor and checks the required fields.
func ParseDescriptor(data []byte) (*Descriptor, error) {
	var d Descriptor
	if err := yaml.Unmarshal(data, &d); err != nil {
		return nil, fmt.Errorf("failed to parse metadata: %w", err)
	}
	if err := d.Validate(); err != nil {
		return nil, err
	}
	return &d, nil
}

// Validate checks that name and type are set.
func (d *Descriptor) Validate() error {
	var errs []error
	if d.Name == "" {
		errs = append(errs, errors.New("metadata: name is required"))
	}
	if d.Type == "" {
		errs = append(errs, errors.New("metadata: type is required"))
	}
	return errors.Join(errs...)
}
