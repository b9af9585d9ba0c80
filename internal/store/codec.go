package store

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"sync"

	"sales-flow/internal/models"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

//go:embed state.schema.json
var stateSchemaJSON string

const stateSchemaURL = "https://sales-flow.local/schemas/state.schema.json"

var (
	schemaOnce sync.Once
	schema     *jsonschema.Schema
	schemaErr  error
)

func stateSchema() (*jsonschema.Schema, error) {
	schemaOnce.Do(func() {
		c := jsonschema.NewCompiler()
		c.Draft = jsonschema.Draft2020
		if err := c.AddResource(stateSchemaURL, bytes.NewReader([]byte(stateSchemaJSON))); err != nil {
			schemaErr = fmt.Errorf("state schema load failed: %w", err)
			return
		}
		schema, schemaErr = c.Compile(stateSchemaURL)
	})
	return schema, schemaErr
}

// Encode serializes the state document
func Encode(state models.State) ([]byte, error) {
	return json.Marshal(normalize(state))
}

// Decode validates a stored document against the state schema and
// deserializes it.
func Decode(data []byte) (models.State, error) {
	sch, err := stateSchema()
	if err != nil {
		return models.State{}, err
	}

	var doc interface{}
	if err := json.Unmarshal(data, &doc); err != nil {
		return models.State{}, fmt.Errorf("state document is not valid json: %w", err)
	}
	if err := sch.Validate(doc); err != nil {
		return models.State{}, fmt.Errorf("state document failed validation: %w", err)
	}

	var state models.State
	if err := json.Unmarshal(data, &state); err != nil {
		return models.State{}, fmt.Errorf("failed to unmarshal state: %w", err)
	}
	return normalize(state), nil
}

func normalize(state models.State) models.State {
	if state.Users == nil {
		state.Users = []models.User{}
	}
	if state.SKUs == nil {
		state.SKUs = []models.SKU{}
	}
	if state.Orders == nil {
		state.Orders = []models.Order{}
	}
	if state.Returns == nil {
		state.Returns = []models.ReturnRecord{}
	}
	if state.Notifications == nil {
		state.Notifications = []models.Notification{}
	}
	return state
}
