// cmd/tools/registry-updater/main_test.go
package main

import (
	"path/filepath"
	"testing"
	"time"

	"wms-dispatch/pkg/registry"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSyncRegistry(t *testing.T) {
	path := filepath.Join(t.TempDir(), "activity-registry.json")
	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	added, updated, err := syncRegistry(path, "1.0.0", now)
	require.NoError(t, err)
	assert.Equal(t, 4, added)
	assert.Equal(t, 0, updated)

	require.NoError(t, updateActivity(path, "send-parcel-sms", "workflow", "parcel-dispatch"))

	added, updated, err = syncRegistry(path, "1.1.0", now)
	require.NoError(t, err)
	assert.Equal(t, 0, added)
	assert.Equal(t, 4, updated)

	reg, err := registry.LoadRegistry(path)
	require.NoError(t, err)
	require.NoError(t, reg.Validate())

	a, ok := reg.Find("send-parcel-sms")
	require.True(t, ok)
	assert.Equal(t, "1.1.0", a.Version)
	assert.Equal(t, "5m0s", a.Timeout)
	assert.Equal(t, []string{"parcel-dispatch"}, a.Workflows)
	assert.Contains(t, a.ErrorCodes, "PRE_SEND_VALIDATION_FAILED")
	assert.Equal(t, []interface{}{"parcelIds", "templateId"}, a.InputSchema["required"])
}

func TestUpdateActivity_Errors(t *testing.T) {
	path := filepath.Join(t.TempDir(), "activity-registry.json")
	_, _, err := syncRegistry(path, "1.0.0", time.Now())
	require.NoError(t, err)

	assert.EqualError(t, updateActivity(path, "unknown", "status", "verified"), "activity with ID unknown not found")
	assert.EqualError(t, updateActivity(path, "session-logout", "colour", "red"), "unknown field: colour")
	assert.EqualError(t, updateActivity(path, "session-logout", "status", "shipped"), "unknown status: shipped")
	require.NoError(t, updateActivity(path, "session-logout", "status", "deprecated"))
	assert.Error(t, updateActivity(path, "session-logout", "timeout", "soon"))
	assert.Error(t, updateActivity(path, "session-logout", "retries", "many"))
}
