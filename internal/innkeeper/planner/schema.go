package planner

import (
	_ "embed"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

//go:embed plan_schema.json
var planSchemaJSON string

// planSchema guards against the model drifting from the agreed output shape:
// unknown categories, wrong field types, or extra top-level keys are rejected
// before any of the output is trusted.
var planSchema = jsonschema.MustCompileString("plan_schema.json", planSchemaJSON)
