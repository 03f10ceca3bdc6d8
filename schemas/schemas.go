// Package schemas holds the embedded JSON Schemas that validate user
// supplied YAML files.
package schemas

import _ "embed"

// ExperimentSchemaJSON is the JSON Schema for experiment YAML files.
//
//go:embed experiment.schema.json
var ExperimentSchemaJSON string
