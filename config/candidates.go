package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// FieldCandidates lists, per card field, the detail-record keys to try in order.
// The listing site names the same value differently across page templates.
type FieldCandidates struct {
	Broker      []string `yaml:"broker"`
	Phone       []string `yaml:"phone"`
	Description []string `yaml:"description"`
}

// DefaultFieldCandidates returns the built-in lookup table.
func DefaultFieldCandidates() FieldCandidates {
	return FieldCandidates{
		Broker:      []string{"listingProviderName", "brokerName", "brokerageName", "realEstateAgentName"},
		Phone:       []string{"listingProviderPhoneNumber", "brokerPhone", "phone", "contactPhone"},
		Description: []string{"description", "homeDescription", "hdpText"},
	}
}

// LoadFieldCandidates reads a YAML override. Fields left out of the file keep
// their default lists.
func LoadFieldCandidates(path string) (FieldCandidates, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return FieldCandidates{}, fmt.Errorf("config: read %q: %w", path, err)
	}

	var fc FieldCandidates
	if err := yaml.Unmarshal(raw, &fc); err != nil {
		return FieldCandidates{}, fmt.Errorf("config: parse %q: %w", path, err)
	}

	def := DefaultFieldCandidates()
	if len(fc.Broker) == 0 {
		fc.Broker = def.Broker
	}
	if len(fc.Phone) == 0 {
		fc.Phone = def.Phone
	}
	if len(fc.Description) == 0 {
		fc.Description = def.Description
	}
	return fc, nil
}
