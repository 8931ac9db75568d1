// pkg/registry/registry_test.go
package registry

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func activity(id string) Activity {
	return Activity{
		ID:          id,
		DisplayName: "Send Parcel SMS",
		Category:    "notification",
		TaskType:    id,
		Timeout:     "5m0s",
	}
}

func TestUpsert(t *testing.T) {
	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	reg := &ActivityRegistry{Version: "1.0.0"}

	assert.True(t, reg.Upsert(activity("send-parcel-sms"), now))

	existing := activity("send-parcel-sms")
	existing.Workflows = []string{"parcel-dispatch"}
	reg.Activities[0] = existing

	updated := activity("send-parcel-sms")
	updated.Version = "1.1.0"
	assert.False(t, reg.Upsert(updated, now))

	require.Len(t, reg.Activities, 1)
	assert.Equal(t, "1.1.0", reg.Activities[0].Version)
	assert.Equal(t, []string{"parcel-dispatch"}, reg.Activities[0].Workflows)
	assert.Equal(t, "2026-03-01T10:00:00Z", reg.LastUpdated)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*ActivityRegistry)
		wantErr string
	}{
		{name: "valid", mutate: func(*ActivityRegistry) {}},
		{
			name:    "empty",
			mutate:  func(r *ActivityRegistry) { r.Activities = nil },
			wantErr: "registry contains no activities",
		},
		{
			name:    "duplicate id",
			mutate:  func(r *ActivityRegistry) { r.Activities = append(r.Activities, activity("send-bulk-sms")) },
			wantErr: "duplicate activity ID: send-bulk-sms",
		},
		{
			name:    "missing category",
			mutate:  func(r *ActivityRegistry) { r.Activities[0].Category = "" },
			wantErr: "activity send-bulk-sms missing required field: Category",
		},
		{
			name: "shared task type",
			mutate: func(r *ActivityRegistry) {
				r.Activities[1].TaskType = "send-bulk-sms"
			},
			wantErr: "activities send-bulk-sms and session-logout share task type send-bulk-sms",
		},
		{
			name:    "unknown status",
			mutate:  func(r *ActivityRegistry) { r.Activities[0].ImplementationStatus = "shipped" },
			wantErr: `activity send-bulk-sms has unknown status "shipped"`,
		},
		{
			name:    "bad timeout",
			mutate:  func(r *ActivityRegistry) { r.Activities[1].Timeout = "ten seconds" },
			wantErr: `activity session-logout has invalid timeout "ten seconds"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reg := &ActivityRegistry{Activities: []Activity{activity("send-bulk-sms"), activity("session-logout")}}
			tt.mutate(reg)

			err := reg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			assert.EqualError(t, err, tt.wantErr)
		})
	}
}

func TestSaveAndLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "configs", "activity-registry.json")
	reg := &ActivityRegistry{Version: "1.0.0", Activities: []Activity{activity("send-status-update")}}

	require.NoError(t, reg.Save(path))

	loaded, err := LoadRegistry(path)
	require.NoError(t, err)
	assert.Equal(t, reg.Activities, loaded.Activities)

	_, ok := loaded.Find("send-status-update")
	assert.True(t, ok)
	_, ok = loaded.Find("unknown")
	assert.False(t, ok)
}

func TestActivityTimeoutDuration(t *testing.T) {
	d, err := activity("send-parcel-sms").TimeoutDuration()
	require.NoError(t, err)
	assert.Equal(t, 5*time.Minute, d)

	d, err = Activity{}.TimeoutDuration()
	require.NoError(t, err)
	assert.Zero(t, d)

	assert.True(t, KnownStatus(StatusCompleted))
	assert.False(t, KnownStatus("done"))
}
