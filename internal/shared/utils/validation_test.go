package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/orris-inc/channelsync/internal/shared/errors"
)

type providerRequest struct {
	Provider  string `uri:"provider" validate:"required,provider"`
	ProjectID uint   `form:"projectId" validate:"required,gt=0"`
}

func TestValidateStruct_Provider(t *testing.T) {
	tests := []struct {
		name     string
		req      providerRequest
		wantErr  bool
		contains string
	}{
		{name: "known provider", req: providerRequest{Provider: "tiktok", ProjectID: 1}},
		{name: "x alias", req: providerRequest{Provider: "X", ProjectID: 1}},
		{name: "unknown provider", req: providerRequest{Provider: "myspace", ProjectID: 1}, wantErr: true, contains: "provider must be one of"},
		{name: "missing project", req: providerRequest{Provider: "youtube"}, wantErr: true, contains: "projectId is required"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateStruct(tt.req)
			if !tt.wantErr {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			appErr := errors.GetAppError(err)
			require.NotNil(t, appErr)
			assert.Equal(t, errors.ErrorTypeValidation, appErr.Type)
			assert.Contains(t, appErr.Details, tt.contains)
		})
	}
}
