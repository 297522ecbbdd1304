// Package etl loads order data files into the normalized tables.
package etl

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/marshallshelly/pebble-orders/pkg/models"
	"github.com/marshallshelly/pebble-orders/pkg/runtime"
)

var (
	errNotArray     = errors.New("top-level value must be a JSON array of records")
	errNotObject    = errors.New("record must be a JSON object")
	errMissingField = errors.New("missing required field")
)

var (
	recordFields   = []string{"category", "product_name", "price", "customer_name", "customer_email", "customer_address", "order_date", "products"}
	lineItemFields = []string{"product_name", "quantity"}
)

// ParseFile reads a data file holding a JSON array of order records.
// Any decoding problem is returned as a *runtime.ParseError.
func ParseFile(path string) ([]models.Record, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &runtime.ParseError{Path: path, Index: -1, Err: err}
	}
	return Parse(path, data)
}

// Parse decodes records from data; path is used for error reporting only.
// Every record field is required and may not be null.
func Parse(path string, data []byte) ([]models.Record, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || trimmed[0] != '[' {
		return nil, &runtime.ParseError{Path: path, Index: -1, Err: errNotArray}
	}

	var raw []json.RawMessage
	if err := json.Unmarshal(trimmed, &raw); err != nil {
		return nil, &runtime.ParseError{Path: path, Index: -1, Err: err}
	}

	records := make([]models.Record, len(raw))
	for i, r := range raw {
		if err := checkShape(r); err != nil {
			return nil, &runtime.ParseError{Path: path, Index: i, Err: err}
		}
		if err := json.Unmarshal(r, &records[i]); err != nil {
			return nil, &runtime.ParseError{Path: path, Index: i, Err: err}
		}
	}
	return records, nil
}

// checkShape verifies that r is an object carrying every record field and that
// each products entry carries its line item fields.
func checkShape(r json.RawMessage) error {
	fields, err := object(r)
	if err != nil {
		return errNotObject
	}
	if err := requireFields(fields, recordFields); err != nil {
		return err
	}

	var items []json.RawMessage
	if err := json.Unmarshal(fields["products"], &items); err != nil {
		return fmt.Errorf("products must be an array: %w", err)
	}
	for j, item := range items {
		itemFields, err := object(item)
		if err != nil {
			return fmt.Errorf("products[%d]: %w", j, errNotObject)
		}
		if err := requireFields(itemFields, lineItemFields); err != nil {
			return fmt.Errorf("products[%d]: %w", j, err)
		}
	}
	return nil
}

func object(r json.RawMessage) (map[string]json.RawMessage, error) {
	if r = bytes.TrimSpace(r); len(r) == 0 || r[0] != '{' {
		return nil, errNotObject
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(r, &fields); err != nil {
		return nil, err
	}
	return fields, nil
}

func requireFields(fields map[string]json.RawMessage, names []string) error {
	for _, name := range names {
		v, ok := fields[name]
		if !ok || bytes.Equal(bytes.TrimSpace(v), []byte("null")) {
			return fmt.Errorf("%w %q", errMissingField, name)
		}
	}
	return nil
}
