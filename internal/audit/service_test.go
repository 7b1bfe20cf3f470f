package audit_test

import (
	"context"
	"testing"

	"bookkeeping-backend/internal/audit"
	"bookkeeping-backend/internal/models"
	"bookkeeping-backend/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestWriteAndList(t *testing.T) {
	db := testutil.DB(t)
	svc := audit.NewService(db, zap.NewNop())
	ctx := context.Background()

	require.NoError(t, svc.WriteLog(ctx, audit.LogOptions{
		UserID: 1, UserName: "ada", EntityType: "entity", EntityID: 4,
		Action: models.AuditActionCreate, After: map[string]any{"name": "Acme"},
	}))
	require.NoError(t, svc.WriteLog(ctx, audit.LogOptions{
		UserID: 2, UserName: "bob", EntityType: "transaction", EntityID: 9,
		Action: models.AuditActionSettle,
	}))

	all, err := svc.List(ctx, audit.ListFilter{})
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "transaction", all[0].EntityType, "newest first")

	entities, err := svc.List(ctx, audit.ListFilter{EntityType: "entity"})
	require.NoError(t, err)
	require.Len(t, entities, 1)
	assert.JSONEq(t, `{"name":"Acme"}`, entities[0].AfterData)
	assert.Equal(t, "null", entities[0].BeforeData)

	byUser, err := svc.List(ctx, audit.ListFilter{UserID: 2, Limit: 10})
	require.NoError(t, err)
	require.Len(t, byUser, 1)
	assert.Equal(t, uint(9), byUser[0].EntityID)
}
