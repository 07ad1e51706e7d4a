package core

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildErrorMessage(t *testing.T) {
	err := NewBuildError(BuildUnknownToolType, "Researcher", "CRYSTAL_BALL")
	assert.Contains(t, err.Error(), "UNKNOWN_TOOL_TYPE")
	assert.Contains(t, err.Error(), "Researcher")
	assert.Contains(t, err.Error(), "CRYSTAL_BALL")
}

func TestBuildErrorTemporary(t *testing.T) {
	assert.True(t, NewBuildError(BuildProviderUnavailable, "", "").Temporary())
	for _, reason := range []BuildReason{BuildEmptyTeam, BuildDuplicateAgentName, BuildUnknownToolType, BuildUnknownModelProvider, BuildMissingCredential} {
		assert.False(t, NewBuildError(reason, "", "").Temporary(), string(reason))
	}
}

func TestDispatchErrorUnwraps(t *testing.T) {
	cause := errors.New("model overloaded")
	err := &DispatchError{Stage: "specialist", Specialist: "Analyst", Err: cause}

	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "specialist")
	assert.Contains(t, err.Error(), "Analyst")
}

func TestErrInstanceNotFoundWraps(t *testing.T) {
	err := fmt.Errorf("t1/i1: %w", ErrInstanceNotFound)
	assert.ErrorIs(t, err, ErrInstanceNotFound)
}

func TestInstanceConfigKey(t *testing.T) {
	cfg := &InstanceConfig{TenantID: "t1", InstanceID: "i1"}
	key := cfg.Key()
	require.Equal(t, "t1", key.TenantID)
	require.Equal(t, "i1", key.InstanceID)

	other := &InstanceConfig{TenantID: "t1", InstanceID: "i1", Version: 7}
	assert.Equal(t, key, other.Key())
}
