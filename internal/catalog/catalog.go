package catalog

import (
	_ "embed"
	"fmt"
	"os"

	"elsa-proficiency-test/internal/domain"
	"gopkg.in/yaml.v3"
)

// Embedded catalog IDs.
const (
	ReferenceID = "reference"
	FullBankID  = "full-bank"
)

var (
	//go:embed reference.yaml
	referenceYAML []byte
	//go:embed full_bank.yaml
	fullBankYAML []byte
)

var builtins = map[string][]byte{
	ReferenceID: referenceYAML,
	FullBankID:  fullBankYAML,
}

// Reference returns the embedded six-section catalog.
func Reference() (domain.Catalog, error) {
	return Parse(referenceYAML)
}

// FullBank returns the embedded catalog carrying the complete vocabulary and grammar banks.
func FullBank() (domain.Catalog, error) {
	return Parse(fullBankYAML)
}

// Builtin returns the embedded catalog named id. ok is false for unknown IDs.
func Builtin(id string) (c domain.Catalog, ok bool, err error) {
	data, ok := builtins[id]
	if !ok {
		return domain.Catalog{}, false, nil
	}
	c, err = Parse(data)
	return c, true, err
}

// BuiltinIDs lists the embedded catalogs in a stable order.
func BuiltinIDs() []string {
	return []string{ReferenceID, FullBankID}
}

// Parse decodes and validates a YAML catalog.
func Parse(data []byte) (domain.Catalog, error) {
	var c domain.Catalog
	if err := yaml.Unmarshal(data, &c); err != nil {
		return domain.Catalog{}, fmt.Errorf("decode catalog: %w", err)
	}
	if err := Validate(c); err != nil {
		return domain.Catalog{}, err
	}
	return c, nil
}

// LoadFile reads a YAML catalog from path.
func LoadFile(path string) (domain.Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return domain.Catalog{}, err
	}
	return Parse(data)
}
