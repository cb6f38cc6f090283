package ipfixinfo

import (
	_ "embed"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"
)

//go:embed registry_default.yaml
var defaultRegistryYAML []byte

type registryElement struct {
	ID     uint16 `yaml:"id"`
	Name   string `yaml:"name"`
	Type   string `yaml:"type"`
	Length uint16 `yaml:"length"`
}

type registryDocument struct {
	Name     string            `yaml:"name"`
	Elements []registryElement `yaml:"elements"`
}

// LoadDefaultRegistry populates m with the bundled IANA standard
// information elements (PEN 0), following the declarative YAML-registry
// convention of the pack's zoomoid-go-ipfix library rather than a
// generated Go source table.
func LoadDefaultRegistry(m *Model) error {
	return loadRegistryYAML(m, defaultRegistryYAML)
}

// LoadRegistryReader loads a custom (e.g. enterprise-specific) IE registry
// document in the same YAML shape as the bundled default, associating
// every element with the given enterprise number.
func LoadRegistryReader(m *Model, pen uint32, r io.Reader) error {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	var doc registryDocument
	if err := dec.Decode(&doc); err != nil {
		return fmt.Errorf("ipfixinfo: decoding registry: %w", err)
	}
	return installRegistry(m, pen, doc)
}

func loadRegistryYAML(m *Model, data []byte) error {
	var doc registryDocument
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("ipfixinfo: decoding default registry: %w", err)
	}
	return installRegistry(m, 0, doc)
}

func installRegistry(m *Model, pen uint32, doc registryDocument) error {
	for _, el := range doc.Elements {
		ietype, ok := IETypeByName(el.Type)
		if !ok {
			return fmt.Errorf("ipfixinfo: element %q: unknown type %q", el.Name, el.Type)
		}
		m.Add(New(el.Name, pen, el.ID, ietype, el.Length))
	}
	return nil
}
