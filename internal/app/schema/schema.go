// Package schema validates JSON request bodies against JSON Schemas before
// they are decoded into request structs.
package schema

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/santhosh-tekuri/jsonschema/v6"
)

const maxBodyBytes = 1 << 20

var ErrInvalidBody = errors.New("invalid request body")

var validate = validator.New()

// Schema is a named JSON Schema document. Name must be unique per process.
type Schema struct {
	Name   string
	Source string
}

var compiled sync.Map // map[string]*jsonschema.Schema

// Decode reads at most 1 MiB from r, validates it against s and unmarshals
// it into dst. Every failure wraps ErrInvalidBody.
func Decode(r io.Reader, s Schema, dst any) error {
	raw, err := io.ReadAll(io.LimitReader(r, maxBodyBytes+1))
	if err != nil {
		return fmt.Errorf("%w: read: %v", ErrInvalidBody, err)
	}
	if len(raw) > maxBodyBytes {
		return fmt.Errorf("%w: body too large", ErrInvalidBody)
	}
	if len(bytes.TrimSpace(raw)) == 0 {
		return fmt.Errorf("%w: empty body", ErrInvalidBody)
	}

	var parsed any
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidBody, err)
	}
	sch, err := get(s)
	if err != nil {
		return err
	}
	if err := sch.Validate(parsed); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidBody, err)
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidBody, err)
	}
	return nil
}

// MustCompile panics when the schema source is broken. Packages call it
// from init-time var blocks so a bad schema fails at startup.
func MustCompile(s Schema) Schema {
	if _, err := get(s); err != nil {
		panic(err)
	}
	return s
}

func get(s Schema) (*jsonschema.Schema, error) {
	if cached, ok := compiled.Load(s.Name); ok {
		return cached.(*jsonschema.Schema), nil
	}

	var def any
	if err := json.Unmarshal([]byte(s.Source), &def); err != nil {
		return nil, fmt.Errorf("parse schema %q: %w", s.Name, err)
	}
	c := jsonschema.NewCompiler()
	url := fmt.Sprintf("schema://%s.json", s.Name)
	if err := c.AddResource(url, def); err != nil {
		return nil, fmt.Errorf("add schema %q: %w", s.Name, err)
	}
	sch, err := c.Compile(url)
	if err != nil {
		return nil, fmt.Errorf("compile schema %q: %w", s.Name, err)
	}
	compiled.Store(s.Name, sch)
	return sch, nil
}

// Struct runs validator tags on v. Failures wrap ErrInvalidBody and name
// each failing field with its tag, e.g. "email: email".
func Struct(v any) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}
	var ve validator.ValidationErrors
	if !errors.As(err, &ve) {
		return fmt.Errorf("%w: %v", ErrInvalidBody, err)
	}
	fields := make([]string, 0, len(ve))
	for _, fe := range ve {
		fields = append(fields, strings.ToLower(fe.Field())+": "+fe.Tag())
	}
	sort.Strings(fields)
	return fmt.Errorf("%w: %s", ErrInvalidBody, strings.Join(fields, ", "))
}
