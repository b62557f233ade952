package openapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	jsonschema "github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/starford/doclint/internal/apperr"
)

// shapeSchema describes the parts of a spec the enhancer edits. Anything
// it does not mention is left alone; only path items (keys starting with
// "/") must be objects, so "x-" extensions under paths may hold any value.
const shapeSchema = `{
  "type": "object",
  "properties": {
    "info": {
      "type": "object",
      "properties": {"title": {"type": "string"}}
    },
    "servers": {"type": ["array", "null"]},
    "components": {"type": ["object", "null"]},
    "paths": {
      "type": "object",
      "patternProperties": {"^/": {"type": "object"}}
    }
  }
}`

var specShape = mustCompile(shapeSchema)

func mustCompile(schema string) *jsonschema.Schema {
	compiler := jsonschema.NewCompiler()
	compiler.Draft = jsonschema.Draft2020
	if err := compiler.AddResource("openapi-shape.json", strings.NewReader(schema)); err != nil {
		panic(err)
	}
	return compiler.MustCompile("openapi-shape.json")
}

// checkShape validates data against the shape schema.
func checkShape(data []byte) error {
	var doc any
	if err := json.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("%w: %v", apperr.ErrInvalidSpec, err)
	}
	if err := specShape.Validate(doc); err != nil {
		var verr *jsonschema.ValidationError
		if errors.As(err, &verr) {
			return fmt.Errorf("%w: %s", apperr.ErrInvalidSpec, strings.Join(issues(verr), "; "))
		}
		return fmt.Errorf("%w: %v", apperr.ErrInvalidSpec, err)
	}
	return nil
}

func issues(err *jsonschema.ValidationError) []string {
	var out []string
	var walk func(*jsonschema.ValidationError)
	walk = func(node *jsonschema.ValidationError) {
		if len(node.Causes) == 0 {
			loc := node.InstanceLocation
			if loc == "" {
				loc = "/"
			}
			out = append(out, fmt.Sprintf("%s: %s", loc, strings.TrimSpace(node.Message)))
			return
		}
		for _, cause := range node.Causes {
			walk(cause)
		}
	}
	walk(err)
	return out
}
