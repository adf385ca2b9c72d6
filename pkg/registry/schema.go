// pkg/registry/schema.go
package registry

// registrySchema is the JSON schema every credential registry file must
// satisfy before the engine will construct a validator from it.
const registrySchema = `{
  "type": "object",
  "properties": {
    "specialties": {
      "type": "object",
      "patternProperties": {
        ".*": {
          "type": "array",
          "items": {
            "type": "string",
            "enum": ["license", "certification", "dea", "background_check"]
          }
        }
      }
    },
    "default": {
      "type": "array",
      "items": {
        "type": "string",
        "enum": ["license", "certification", "dea", "background_check"]
      }
    }
  },
  "required": ["specialties", "default"],
  "additionalProperties": false
}`
