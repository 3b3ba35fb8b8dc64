package storage

import (
	"context"
	"errors"
	"strings"
	"testing"
)

func TestValidateContext(t *testing.T) {
	tests := []struct {
		ctx     context.Context
		name    string
		wantErr bool
	}{
		{
			name:    "valid context",
			ctx:     context.Background(),
			wantErr: false,
		},
		{
			name:    "nil context",
			ctx:     nil,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateContext(tt.ctx) //nolint:staticcheck // nil is the case under test
			if (err != nil) != tt.wantErr {
				t.Errorf("validateContext() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestValidateKey(t *testing.T) {
	tests := []struct {
		wantErr error
		name    string
		key     string
	}{
		{name: "plain", key: "salary"},
		{name: "empty", key: "", wantErr: ErrEmptyString},
		{name: "whitespace only", key: "   ", wantErr: ErrEmptyString},
		{name: "leading space", key: " salary", wantErr: ErrInvalidKey},
		{name: "too long", key: strings.Repeat("k", maxKeyLength+1), wantErr: ErrInvalidKey},
		{name: "max length", key: strings.Repeat("k", maxKeyLength)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateKey(tt.key)
			if tt.wantErr == nil && err != nil {
				t.Errorf("validateKey(%q) unexpected error %v", tt.key, err)
			}
			if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
				t.Errorf("validateKey(%q) error = %v, want %v", tt.key, err, tt.wantErr)
			}
		})
	}
}
