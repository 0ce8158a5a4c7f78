package api

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidator_UsesJSONNames(t *testing.T) {
	v := newValidator()
	name := "api"
	repo := "acme/api"

	err := v.Struct(CreateProjectRequest{Name: &name, Repository: &repo})
	require.Error(t, err)

	fields, ok := formatValidationErrors(err)
	require.True(t, ok)
	assert.Equal(t, "repository must be a git repository URL", fields["repository"])
	assert.Equal(t, "group_id is required", fields["group_id"])
	assert.Equal(t, "key_id is required", fields["key_id"])
	assert.NotContains(t, fields, "name")
}

func TestValidator_UpdateAllowsEmptyBody(t *testing.T) {
	assert.NoError(t, newValidator().Struct(UpdateProjectRequest{}))
}

func TestFormatValidationErrors_NotValidation(t *testing.T) {
	_, ok := formatValidationErrors(errors.New("boom"))
	assert.False(t, ok)
}

func TestSummarize_SortedByField(t *testing.T) {
	msg := summarize(map[string]string{
		"url":  "url must be a valid URL",
		"name": "name is required",
	})
	assert.Equal(t, "name is required; url must be a valid URL", msg)
}
