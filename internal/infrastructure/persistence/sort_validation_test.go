package persistence

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateSortOrder(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"empty string returns DESC", "", "DESC"},
		{"ASC uppercase returns ASC", "ASC", "ASC"},
		{"asc lowercase returns ASC", "asc", "ASC"},
		{"DESC uppercase returns DESC", "DESC", "DESC"},
		{"invalid value returns DESC", "INVALID", "DESC"},
		{"sql injection attempt returns DESC", "ASC; DROP TABLE sales;--", "DESC"},
		{"whitespace only returns DESC", "   ", "DESC"},
		{"whitespace around ASC returns ASC", "  asc  ", "ASC"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ValidateSortOrder(tt.input))
		})
	}
}

func TestValidateSortField(t *testing.T) {
	allowedFields := map[string]bool{
		"id":         true,
		"created_at": true,
		"updated_at": true,
		"name":       true,
	}

	tests := []struct {
		name         string
		input        string
		defaultField string
		expected     string
	}{
		{"empty string returns default", "", "created_at", "created_at"},
		{"valid field returns field", "name", "created_at", "name"},
		{"invalid field returns default", "invalid_field", "created_at", "created_at"},
		{"sql injection attempt returns default", "id; DROP TABLE sales;--", "created_at", "created_at"},
		{"case sensitive - uppercase invalid", "NAME", "created_at", "created_at"},
		{"whitespace around valid field returns field", "  name  ", "created_at", "name"},
		{"field with quotes injection returns default", "name'--", "created_at", "created_at"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ValidateSortField(tt.input, allowedFields, tt.defaultField))
		})
	}
}

func TestSortFieldsWhitelists(t *testing.T) {
	whitelists := map[string]map[string]bool{
		"ProductSortFields":    ProductSortFields,
		"StockBatchSortFields": StockBatchSortFields,
		"SaleSortFields":       SaleSortFields,
	}

	for name, whitelist := range whitelists {
		t.Run(name+" contains base fields", func(t *testing.T) {
			assert.True(t, whitelist["id"], "%s should contain 'id'", name)
			assert.True(t, whitelist["created_at"], "%s should contain 'created_at'", name)
		})
	}
}
