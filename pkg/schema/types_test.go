package schema

import (
	"reflect"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"
)

func TestTypeMapper_GoTypeToPostgreSQL(t *testing.T) {
	tm := NewTypeMapper()

	tests := []struct {
		name     string
		goType   reflect.Type
		expected string
	}{
		{"bool", reflect.TypeFor[bool](), "boolean"},
		{"int16", reflect.TypeFor[int16](), "smallint"},
		{"int32", reflect.TypeFor[int32](), "integer"},
		{"int", reflect.TypeFor[int](), "integer"},
		{"int64", reflect.TypeFor[int64](), "bigint"},
		{"float64", reflect.TypeFor[float64](), "double precision"},
		{"string", reflect.TypeFor[string](), "text"},
		{"[]byte", reflect.TypeFor[[]byte](), "bytea"},

		{"time.Time", reflect.TypeFor[time.Time](), "timestamp with time zone"},
		{"pgtype.Date", reflect.TypeFor[pgtype.Date](), "date"},
		{"decimal.Decimal", reflect.TypeFor[decimal.Decimal](), "numeric"},

		{"*string", reflect.TypeFor[*string](), "text"},
		{"*decimal.Decimal", reflect.TypeFor[*decimal.Decimal](), "numeric"},

		{"unknown struct", reflect.TypeFor[struct{ A int }](), ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := tm.GoTypeToPostgreSQL(tt.goType)
			if result != tt.expected {
				t.Errorf("GoTypeToPostgreSQL(%s) = %s, want %s", tt.name, result, tt.expected)
			}
		})
	}
}

func TestIsNullable(t *testing.T) {
	if IsNullable(reflect.TypeFor[string]()) {
		t.Error("string should not be nullable")
	}
	if !IsNullable(reflect.TypeFor[*string]()) {
		t.Error("*string should be nullable")
	}
}
