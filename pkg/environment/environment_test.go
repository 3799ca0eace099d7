package environment

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openmf/fineract-deploy/pkg/errors"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    Environment
		wantErr bool
	}{
		{"dev", "dev", Dev, false},
		{"uat", "uat", UAT, false},
		{"production", "production", Production, false},
		{"case insensitive", "PRODUCTION", Production, false},
		{"surrounding whitespace", " dev ", Dev, false},
		{"empty", "", "", true},
		{"unknown", "staging", "", true},
		{"prefix is not enough", "prod", "", true},
		{"numeric", "42", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Parse(tt.input)
			if tt.wantErr {
				require.Error(t, err)
				assert.Equal(t, errors.ErrCodeInvalidRequest, errors.CodeOf(err))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDerivedSettings(t *testing.T) {
	assert.Equal(t, "fineract-dev", Dev.Namespace())
	assert.Equal(t, "fineract-production", Production.Namespace())

	assert.Equal(t, "develop", Dev.TargetRevision())
	assert.Equal(t, "uat", UAT.TargetRevision())
	assert.Equal(t, "main", Production.TargetRevision())

	assert.Equal(t, "environments/uat.tfvars", UAT.TFVarsFile())
	assert.Equal(t, "fineract/dev", Dev.SecretPrefix())

	assert.False(t, Dev.IsProduction())
	assert.False(t, UAT.IsProduction())
	assert.True(t, Production.IsProduction())
}

func TestAll(t *testing.T) {
	assert.Equal(t, []Environment{Dev, UAT, Production}, All())
}
