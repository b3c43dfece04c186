package api

import (
	"encoding/json"
	"fmt"

	"github.com/invopop/jsonschema"

	"github.com/agentbrain/brain/internal/models"
)

// Contract bundles the request and response shapes of the write and query
// surfaces, for callers that want to validate before submitting.
type Contract struct {
	Intent        *jsonschema.Schema `json:"intent"`
	WriteResponse *jsonschema.Schema `json:"writeResponse"`
	QueryRequest  *jsonschema.Schema `json:"queryRequest"`
	QueryResponse *jsonschema.Schema `json:"queryResponse"`
	Record        *jsonschema.Schema `json:"record"`
}

// ContractSchema reflects the external contract into JSON Schema.
func ContractSchema() ([]byte, error) {
	r := jsonschema.Reflector{Anonymous: true, DoNotReference: true}
	c := Contract{
		Intent:        r.Reflect(&models.Intent{}),
		WriteResponse: r.Reflect(&models.WriteResponse{}),
		QueryRequest:  r.Reflect(&models.QueryRequest{}),
		QueryResponse: r.Reflect(&models.QueryResponse{}),
		Record:        r.Reflect(&models.Record{}),
	}
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal contract schema: %w", err)
	}
	return data, nil
}
