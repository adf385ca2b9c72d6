// pkg/registry/registry.go
package registry

import (
	"encoding/json"
	"os"
	"strings"

	"github.com/xeipuuv/gojsonschema"

	engineerrors "staffing-engine/internal/common/errors"
	"staffing-engine/internal/models"
)

// CredentialRegistry maps a specialty to the credential types its
// professionals must hold in valid status before presentation.
type CredentialRegistry struct {
	Specialties map[string][]models.CredentialType `json:"specialties"`
	// Default applies to specialties without an explicit entry.
	Default []models.CredentialType `json:"default"`
}

// Load reads and schema-validates a registry file.
func Load(path string) (*CredentialRegistry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, engineerrors.NewRegistryInvalidError(err.Error())
	}
	return Parse(data)
}

// Parse validates raw registry JSON against the registry schema.
func Parse(data []byte) (*CredentialRegistry, error) {
	result, err := gojsonschema.Validate(
		gojsonschema.NewStringLoader(registrySchema),
		gojsonschema.NewBytesLoader(data),
	)
	if err != nil {
		return nil, engineerrors.NewRegistryInvalidError(err.Error())
	}
	if !result.Valid() {
		details := make([]string, 0, len(result.Errors()))
		for _, e := range result.Errors() {
			details = append(details, e.String())
		}
		return nil, engineerrors.NewRegistryInvalidError(strings.Join(details, "; "))
	}

	var reg CredentialRegistry
	if err := json.Unmarshal(data, &reg); err != nil {
		return nil, engineerrors.NewRegistryInvalidError(err.Error())
	}
	return &reg, nil
}

// RequiredFor returns the credential types mandated for a specialty.
// Lookup is case-insensitive; specialties without an entry fall back to the
// registry default.
func (r *CredentialRegistry) RequiredFor(specialty string) []models.CredentialType {
	for name, types := range r.Specialties {
		if strings.EqualFold(name, specialty) {
			return types
		}
	}
	return r.Default
}
