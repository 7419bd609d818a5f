package domain_test

import (
	"encoding/json"
	"testing"

	"github.com/aretw0/qpilot/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDescriptor_Accessors(t *testing.T) {
	d := domain.Descriptor{
		"identity": json.Number("140211596"),
		"path":     "mainWindow::central::list",
		"classes":  []any{"QListView", "QAbstractItemView", "QWidget", "QObject"},
		"children": []any{
			map[string]any{"identity": json.Number("7"), "path": "mainWindow::central::list::viewport"},
		},
		"visible": true,
	}

	assert.Equal(t, uint64(140211596), d.Identity())
	assert.Equal(t, "mainWindow::central::list", d.Path())
	assert.Equal(t, []string{"QListView", "QAbstractItemView", "QWidget", "QObject"}, d.Classes())

	children := d.Children()
	require.Len(t, children, 1)
	assert.Equal(t, uint64(7), children[0].Identity())
}

func TestDescriptor_MissingFields(t *testing.T) {
	d := domain.Descriptor{}

	assert.Zero(t, d.Identity())
	assert.Empty(t, d.Path())
	assert.Nil(t, d.Classes())
	assert.Nil(t, d.Children())
}

func TestAsIdentity(t *testing.T) {
	tests := []struct {
		name string
		in   any
		want uint64
		ok   bool
	}{
		{"json number", json.Number("42"), 42, true},
		{"float64", float64(42), 42, true},
		{"int", 42, 42, true},
		{"uint64", uint64(42), 42, true},
		{"string", "42", 42, true},
		{"negative", -1, 0, false},
		{"garbage", "not-a-number", 0, false},
		{"nil", nil, 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := domain.AsIdentity(tt.in)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}
