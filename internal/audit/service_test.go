package audit

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shiftplan/internal/models"
	"shiftplan/internal/store"
	"shiftplan/internal/store/jsonstore"
)

func TestRecordRedactsPasswords(t *testing.T) {
	st, err := jsonstore.Open(t.TempDir())
	require.NoError(t, err)
	r := NewRecorder(st, nil)
	ctx := context.Background()

	before := &models.User{Username: "emp1", PasswordHash: "secret-hash", Name: "Old"}
	after := models.User{Username: "emp1", PasswordHash: "secret-hash", Name: "New"}
	r.Record(ctx, LogOptions{
		Actor:      "head_admin",
		EntityType: EntityUser,
		EntityID:   "emp1",
		Action:     models.AuditActionUpdate,
		Before:     before,
		After:      after,
	})

	logs, err := r.List(ctx, store.AuditFilter{EntityType: EntityUser})
	require.NoError(t, err)
	require.Len(t, logs, 1)
	assert.NotEmpty(t, logs[0].ID)
	assert.False(t, strings.Contains(logs[0].BeforeData, "secret-hash"))
	assert.False(t, strings.Contains(logs[0].AfterData, "secret-hash"))
	assert.Contains(t, logs[0].AfterData, `"name":"New"`)
	assert.Equal(t, "secret-hash", before.PasswordHash)
}

func TestSnapshotNil(t *testing.T) {
	assert.Equal(t, "null", snapshot(nil))
	var u *models.User
	assert.Equal(t, "null", snapshot(u))
}
