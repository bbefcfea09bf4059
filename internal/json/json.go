// Package json is the JSON codec used for provider bodies and API responses.
package json

import (
	stdjson "encoding/json"

	jsoniter "github.com/json-iterator/go"
)

// RawMessage is a raw encoded JSON value, kept byte-for-byte as the provider sent it.
type RawMessage = stdjson.RawMessage

var (
	// JSON is the instance of jsoniter.API that should be used throughout the codebase.
	// Map keys are sorted so that identical inputs always encode to identical bytes.
	JSON = jsoniter.ConfigCompatibleWithStandardLibrary

	// Marshal is a shorthand for JSON.Marshal
	Marshal = JSON.Marshal

	// Unmarshal is a shorthand for JSON.Unmarshal
	Unmarshal = JSON.Unmarshal

	// NewDecoder is a shorthand for JSON.NewDecoder
	NewDecoder = JSON.NewDecoder

	// NewEncoder is a shorthand for JSON.NewEncoder
	NewEncoder = JSON.NewEncoder

	// Valid is a shorthand for JSON.Valid
	Valid = JSON.Valid
)
