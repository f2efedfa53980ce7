package services

import (
	"fmt"
	"log"
	"os"

	"examination_app_go/models"

	"gopkg.in/yaml.v3"
)

// catalogFile is the YAML overlay shape:
//
//	options:
//	  Branch Options:
//	    - Chemical
//	  Room Options:
//	    - code: R1
//	      label: R1 - Main Hall
type catalogFile struct {
	Options map[string][]catalogOption `yaml:"options"`
}

// catalogOption accepts either a bare string or a code/label mapping
type catalogOption models.Option

func (o *catalogOption) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.ScalarNode {
		o.Code = node.Value
		o.Label = node.Value
		return nil
	}
	var opt models.Option
	if err := node.Decode(&opt); err != nil {
		return err
	}
	if opt.Code == "" {
		return fmt.Errorf("line %d: option code is required", node.Line)
	}
	if opt.Label == "" {
		opt.Label = opt.Code
	}
	*o = catalogOption(opt)
	return nil
}

// LoadCatalog returns the predefined catalog, extended by the YAML file at
// path when one is given. Overlay options are appended to existing sets
// unless their code is already present.
func LoadCatalog(path string) (models.Catalog, error) {
	catalog := models.PredefinedOptions()
	if path == "" {
		return catalog, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog %s: %w", path, err)
	}
	if err := MergeCatalogYAML(catalog, data); err != nil {
		return nil, fmt.Errorf("failed to parse catalog %s: %w", path, err)
	}

	log.Printf("[INFO] Loaded catalog overlay from %s (%d option sets)", path, len(catalog))
	return catalog, nil
}

// MergeCatalogYAML applies a YAML overlay to catalog in place
func MergeCatalogYAML(catalog models.Catalog, data []byte) error {
	var file catalogFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return err
	}
	for optionsType, options := range file.Options {
		for _, opt := range options {
			if catalog.HasOption(optionsType, opt.Code) {
				continue
			}
			catalog[optionsType] = append(catalog[optionsType], models.Option(opt))
		}
		if _, ok := catalog[optionsType]; !ok {
			catalog[optionsType] = []models.Option{}
		}
	}
	return nil
}
