package models

import (
	"context"
	"testing"

	"github.com/parishdesk/parish_backend/config"
	"github.com/parishdesk/parish_backend/utils"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func cancelledContext() context.Context {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	return ctx
}

func captureLogs(t *testing.T) *test.Hook {
	t.Helper()
	logger := config.GetLogger()
	previous := logger.ReplaceHooks(make(logrus.LevelHooks))
	t.Cleanup(func() { logger.ReplaceHooks(previous) })
	return test.NewLocal(logger)
}

func TestCreateAssignmentWithExpiredContextWritesNothing(t *testing.T) {
	db := openTestDB(t)
	people := seedPeople(t, db, 2)
	manager := NewSacramentAssignmentManager(db)

	_, err := manager.Create(cancelledContext(), &NewSacramentAssignment{
		SacramentType:   SacramentTypeBaptism,
		CelebrationDate: celebration(3),
		Participants:    participants(people[0]),
		Witnesses: []NewSacramentWitness{
			{PersonId: people[1], WitnessTypeId: WitnessTypeGodparent, OrderNumber: 1},
		},
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, utils.ErrTransactionAborted)
	assert.Zero(t, countRows(t, db, &SacramentAssignment{}))
	assert.Zero(t, countRows(t, db, &SacramentParticipant{}))
	assert.Zero(t, countRows(t, db, &SacramentWitness{}))
}

func TestUpdateAssignmentWithExpiredContextKeepsRows(t *testing.T) {
	db := openTestDB(t)
	people := seedPeople(t, db, 3)
	manager := NewSacramentAssignmentManager(db)

	id, err := manager.Create(context.Background(), &NewSacramentAssignment{
		SacramentType:   SacramentTypeBaptism,
		CelebrationDate: celebration(3),
		Comment:         "original",
		Participants:    participants(people[0]),
	})
	require.NoError(t, err)

	_, err = manager.Update(cancelledContext(), id, &NewSacramentAssignment{
		SacramentType:   SacramentTypeBaptism,
		CelebrationDate: celebration(4),
		Comment:         "changed",
		Participants:    participants(people[1]),
		Witnesses: []NewSacramentWitness{
			{PersonId: people[2], WitnessTypeId: WitnessTypeGodparent, OrderNumber: 1},
		},
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, utils.ErrTransactionAborted)

	got, err := manager.Get(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, "original", got.Comment)
	require.Len(t, got.Participants, 1)
	assert.Equal(t, people[0], got.Participants[0].PersonId)
	assert.Empty(t, got.Witnesses)
}

func TestLedgerWritesWithExpiredContext(t *testing.T) {
	db := openTestDB(t)
	user := seedUser(t, db)
	ledger := NewCashLedger(db)

	movement, err := ledger.Record(context.Background(), newMovement(CashNatureInflow, "400"), user.ID)
	require.NoError(t, err)

	_, err = ledger.Record(cancelledContext(), newMovement(CashNatureInflow, "50"), user.ID)
	assert.ErrorIs(t, err, utils.ErrTransactionAborted)
	assert.Equal(t, int64(1), countRows(t, db, &CashMovement{}))

	outflow := CashNatureOutflow
	_, err = ledger.Update(cancelledContext(), movement.ID, &CashMovementPatch{Nature: &outflow})
	assert.ErrorIs(t, err, utils.ErrTransactionAborted)

	_, err = ledger.Delete(cancelledContext(), movement.ID)
	assert.ErrorIs(t, err, utils.ErrTransactionAborted)

	stored, err := ledger.Get(context.Background(), movement.ID)
	require.NoError(t, err)
	assert.Equal(t, CashNatureInflow, stored.Nature)
	assert.True(t, stored.SignedAmount.Equal(dec("400")))
}

func TestAbortedTransactionIsLogged(t *testing.T) {
	db := openTestDB(t)
	user := seedUser(t, db)
	ledger := NewCashLedger(db)
	hook := captureLogs(t)

	ctx := utils.SetCorrelationIdInContext(cancelledContext(), "corr-42")
	_, err := ledger.Record(ctx, newMovement(CashNatureInflow, "50"), user.ID)
	require.ErrorIs(t, err, utils.ErrTransactionAborted)

	entry := hook.LastEntry()
	require.NotNil(t, entry)
	assert.Equal(t, logrus.ErrorLevel, entry.Level)
	assert.Equal(t, "models", entry.Data["module"])
	assert.Equal(t, "RecordCashMovement", entry.Data["funcName"])
	assert.Equal(t, "begin", entry.Data["context"])
	data, ok := entry.Data["data"].(logrus.Fields)
	require.True(t, ok)
	assert.Equal(t, "corr-42", data["correlation_id"])
}

func TestValidationFailureIsNotLogged(t *testing.T) {
	db := openTestDB(t)
	user := seedUser(t, db)
	ledger := NewCashLedger(db)
	hook := captureLogs(t)

	_, err := ledger.Record(context.Background(), newMovement(CashNatureInflow, "0"), user.ID)
	require.ErrorIs(t, err, utils.ErrValidationFailed)
	assert.Empty(t, hook.AllEntries())
}
