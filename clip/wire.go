package clip

import (
	"bytes"
	"embed"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

//go:embed schema/clip-v1.schema.json
var schemaFS embed.FS

const schemaURL = "https://clipedit.local/schema/clip-v1.schema.json"

var (
	schemaOnce sync.Once
	schema     *jsonschema.Schema
	schemaErr  error
)

func compiledSchema() (*jsonschema.Schema, error) {
	schemaOnce.Do(func() {
		data, err := schemaFS.ReadFile("schema/clip-v1.schema.json")
		if err != nil {
			schemaErr = fmt.Errorf("failed to read clip schema: %w", err)
			return
		}
		compiler := jsonschema.NewCompiler()
		if err := compiler.AddResource(schemaURL, bytes.NewReader(data)); err != nil {
			schemaErr = fmt.Errorf("failed to add clip schema: %w", err)
			return
		}
		schema, schemaErr = compiler.Compile(schemaURL)
	})
	return schema, schemaErr
}

// Validate checks one decoded JSON value against the clip schema.
func Validate(instance any) error {
	s, err := compiledSchema()
	if err != nil {
		return err
	}
	if err := s.Validate(instance); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidRecord, err)
	}
	return nil
}

// Decode parses a single clip object or an array of clips, validating each
// against the schema and the record invariants.
func Decode(data []byte) ([]Clip, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: empty document", ErrInvalidRecord)
	}

	var raws []json.RawMessage
	if data[0] == '[' {
		if err := json.Unmarshal(data, &raws); err != nil {
			return nil, fmt.Errorf("failed to parse clip list: %w", err)
		}
	} else {
		raws = []json.RawMessage{data}
	}

	clips := make([]Clip, 0, len(raws))
	for i, raw := range raws {
		var instance any
		if err := json.Unmarshal(raw, &instance); err != nil {
			return nil, fmt.Errorf("clip %d: failed to parse: %w", i, err)
		}
		if err := Validate(instance); err != nil {
			return nil, fmt.Errorf("clip %d: %w", i, err)
		}
		var c Clip
		if err := json.Unmarshal(raw, &c); err != nil {
			return nil, fmt.Errorf("clip %d: failed to decode: %w", i, err)
		}
		if err := c.Check(); err != nil {
			return nil, fmt.Errorf("clip %d: %w", i, err)
		}
		clips = append(clips, c)
	}
	return clips, nil
}

// Encode writes clips as an indented JSON array.
func Encode(clips []Clip) ([]byte, error) {
	if clips == nil {
		clips = []Clip{}
	}
	data, err := json.MarshalIndent(clips, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to encode clips: %w", err)
	}
	return append(data, '\n'), nil
}
