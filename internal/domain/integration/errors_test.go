package integration

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorTaxonomy_KindsAreDistinct(t *testing.T) {
	kinds := []error{ErrRemoteFetch, ErrPersistence, ErrNotFound}
	for i, a := range kinds {
		for j, b := range kinds {
			if i == j {
				continue
			}
			assert.False(t, errors.Is(a, b), "%v should not match %v", a, b)
		}
	}
}

func TestErrorTaxonomy_Wrapping(t *testing.T) {
	tests := []struct {
		name string
		err  error
		kind error
	}{
		{"duplicate is persistence", ErrDuplicateRecord, ErrPersistence},
		{"invalid payload is remote", ErrInvalidRemotePayload, ErrRemoteFetch},
		{"order not found", ErrOrderNotFound, ErrNotFound},
		{"credential not found", ErrCredentialNotFound, ErrNotFound},
		{"merchant not found", ErrMerchantNotFound, ErrNotFound},
		{"wrapped twice", fmt.Errorf("sync acme: %w", fmt.Errorf("%w: line item gid://1", ErrDuplicateRecord)), ErrPersistence},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, tt.err, tt.kind)
		})
	}
}

func TestIsRetryable(t *testing.T) {
	assert.True(t, IsRetryable(fmt.Errorf("%w: timeout", ErrRemoteFetch)))
	assert.True(t, IsRetryable(ErrInvalidRemotePayload))
	assert.False(t, IsRetryable(ErrDuplicateRecord))
	assert.False(t, IsRetryable(ErrOrderNotFound))
	assert.False(t, IsRetryable(nil))
}
