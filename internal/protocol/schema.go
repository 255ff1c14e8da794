package protocol

import (
	"bytes"
	"embed"
	"encoding/json"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

//go:embed schemas/*.schema.json
var schemaFS embed.FS

const schemaBaseURL = "https://deskfolio.dev/schemas/"

// Validator checks inbound messages against the embedded schemas.
// It is safe for concurrent use once built.
type Validator struct {
	hello *jsonschema.Schema
	act   *jsonschema.Schema
}

func NewValidator() (*Validator, error) {
	c := jsonschema.NewCompiler()
	c.Draft = jsonschema.Draft2020
	for _, name := range []string{"hello.schema.json", "act.schema.json"} {
		b, err := schemaFS.ReadFile("schemas/" + name)
		if err != nil {
			return nil, err
		}
		if err := c.AddResource(schemaBaseURL+name, bytes.NewReader(b)); err != nil {
			return nil, fmt.Errorf("schema %s: %w", name, err)
		}
	}
	hello, err := c.Compile(schemaBaseURL + "hello.schema.json")
	if err != nil {
		return nil, fmt.Errorf("compile hello: %w", err)
	}
	act, err := c.Compile(schemaBaseURL + "act.schema.json")
	if err != nil {
		return nil, fmt.Errorf("compile act: %w", err)
	}
	return &Validator{hello: hello, act: act}, nil
}

// MustValidator panics if the embedded schemas do not compile.
func MustValidator() *Validator {
	v, err := NewValidator()
	if err != nil {
		panic(err)
	}
	return v
}

func (v *Validator) Hello(raw []byte) error { return validate(v.hello, raw) }
func (v *Validator) Act(raw []byte) error   { return validate(v.act, raw) }

func validate(s *jsonschema.Schema, raw []byte) error {
	// Numbers stay json.Number so integer bounds are checked exactly.
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var doc any
	if err := dec.Decode(&doc); err != nil {
		return fmt.Errorf("bad json: %w", err)
	}
	if err := s.Validate(doc); err != nil {
		return fmt.Errorf("schema: %w", err)
	}
	return nil
}
