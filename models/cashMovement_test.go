package models

import (
	"context"
	"testing"

	"github.com/parishdesk/parish_backend/utils"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dec(v string) decimal.Decimal {
	return decimal.RequireFromString(v)
}

func assertSigned(t *testing.T, m *CashMovement) {
	t.Helper()
	want := m.Amount
	if m.Nature == CashNatureOutflow {
		want = m.Amount.Neg()
	}
	assert.Truef(t, m.SignedAmount.Equal(want), "movement %d: signed %s, amount %s, nature %s",
		m.ID, m.SignedAmount, m.Amount, m.Nature)
}

func newMovement(nature CashNature, amount string) *NewCashMovement {
	return &NewCashMovement{
		Nature:        nature,
		Amount:        dec(amount),
		AccountName:   "Main Account",
		PaymentMedium: "cash",
		Concept:       "Sunday collection",
	}
}

func TestNewMovementAmounts(t *testing.T) {
	in, err := newMovementAmounts(CashNatureInflow, dec("400"))
	require.NoError(t, err)
	assert.True(t, in.SignedAmount.Equal(dec("400")))

	out, err := newMovementAmounts(CashNatureOutflow, dec("150"))
	require.NoError(t, err)
	assert.True(t, out.Amount.Equal(dec("150")))
	assert.True(t, out.SignedAmount.Equal(dec("-150")))

	for _, amount := range []string{"0", "-1"} {
		_, err := newMovementAmounts(CashNatureInflow, dec(amount))
		assert.ErrorIs(t, err, utils.ErrValidationFailed)
	}
	_, err = newMovementAmounts(CashNature("transfer"), dec("1"))
	assert.ErrorIs(t, err, utils.ErrValidationFailed)
}

func TestMovementAmountScale(t *testing.T) {
	_, err := newMovementAmounts(CashNatureInflow, dec("10.1234"))
	require.NoError(t, err)
	padded, err := newMovementAmounts(CashNatureInflow, dec("10.10000"))
	require.NoError(t, err)
	assert.True(t, padded.Amount.Equal(dec("10.1")))

	var de *utils.DomainError
	_, err = newMovementAmounts(CashNatureOutflow, dec("10.12345"))
	require.ErrorAs(t, err, &de)
	assert.Equal(t, utils.KindValidationFailed, de.Kind)
	assert.Equal(t, "amount", de.Field)

	db := openTestDB(t)
	user := seedUser(t, db)
	ledger := NewCashLedger(db)
	ctx := context.Background()

	_, err = ledger.Record(ctx, newMovement(CashNatureInflow, "0.00001"), user.ID)
	assert.ErrorIs(t, err, utils.ErrValidationFailed)
	assert.Zero(t, countRows(t, db, &CashMovement{}))

	movement, err := ledger.Record(ctx, newMovement(CashNatureInflow, "99.9999"), user.ID)
	require.NoError(t, err)

	tooFine := dec("5.00001")
	_, err = ledger.Update(ctx, movement.ID, &CashMovementPatch{Amount: &tooFine})
	assert.ErrorIs(t, err, utils.ErrValidationFailed)

	stored, err := ledger.Get(ctx, movement.ID)
	require.NoError(t, err)
	assert.True(t, stored.Amount.Equal(dec("99.9999")), "amount %s", stored.Amount)
	assertSigned(t, stored)
}

func TestRecordMovement(t *testing.T) {
	db := openTestDB(t)
	user := seedUser(t, db)
	ledger := NewCashLedger(db)
	ctx := context.Background()

	movement, err := ledger.Record(ctx, newMovement(CashNatureOutflow, "150"), user.ID)
	require.NoError(t, err)
	assert.Positive(t, movement.ID)
	assert.True(t, movement.SignedAmount.Equal(dec("-150")))

	stored, err := ledger.Get(ctx, movement.ID)
	require.NoError(t, err)
	assertSigned(t, stored)
	assert.Nil(t, stored.Reference)

	_, err = ledger.Record(ctx, newMovement(CashNatureInflow, "0"), user.ID)
	assert.ErrorIs(t, err, utils.ErrValidationFailed)

	_, err = ledger.Record(ctx, newMovement(CashNatureInflow, "10"), 0)
	assert.ErrorIs(t, err, utils.ErrValidationFailed)

	missing := 9999
	input := newMovement(CashNatureInflow, "10")
	input.PersonId = &missing
	_, err = ledger.Record(ctx, input, user.ID)
	assert.ErrorIs(t, err, utils.ErrConstraintViolation)
	assert.Equal(t, int64(1), countRows(t, db, &CashMovement{}))
}

func TestUpdateMovementNatureOnly(t *testing.T) {
	db := openTestDB(t)
	user := seedUser(t, db)
	ledger := NewCashLedger(db)
	ctx := context.Background()

	movement, err := ledger.Record(ctx, newMovement(CashNatureInflow, "400"), user.ID)
	require.NoError(t, err)

	outflow := CashNatureOutflow
	updated, err := ledger.Update(ctx, movement.ID, &CashMovementPatch{Nature: &outflow})
	require.NoError(t, err)
	assert.Equal(t, CashNatureOutflow, updated.Nature)
	assert.True(t, updated.Amount.Equal(dec("400")))
	assert.True(t, updated.SignedAmount.Equal(dec("-400")))

	stored, err := ledger.Get(ctx, movement.ID)
	require.NoError(t, err)
	assertSigned(t, stored)
}

func TestUpdateMovementAmountOnly(t *testing.T) {
	db := openTestDB(t)
	user := seedUser(t, db)
	ledger := NewCashLedger(db)
	ctx := context.Background()

	movement, err := ledger.Record(ctx, newMovement(CashNatureOutflow, "150"), user.ID)
	require.NoError(t, err)

	newAmount := dec("12.5")
	updated, err := ledger.Update(ctx, movement.ID, &CashMovementPatch{Amount: &newAmount})
	require.NoError(t, err)
	assert.Equal(t, CashNatureOutflow, updated.Nature)
	assert.True(t, updated.SignedAmount.Equal(dec("-12.5")))

	stored, err := ledger.Get(ctx, movement.ID)
	require.NoError(t, err)
	assertSigned(t, stored)
}

func TestUpdateMovementOtherFieldsKeepAmounts(t *testing.T) {
	db := openTestDB(t)
	user := seedUser(t, db)
	ledger := NewCashLedger(db)
	ctx := context.Background()

	movement, err := ledger.Record(ctx, newMovement(CashNatureOutflow, "150"), user.ID)
	require.NoError(t, err)

	concept := "Candles"
	reference := "R-001"
	updated, err := ledger.Update(ctx, movement.ID, &CashMovementPatch{Concept: &concept, Reference: &reference})
	require.NoError(t, err)
	assert.Equal(t, "Candles", updated.Concept)
	require.NotNil(t, updated.Reference)
	assert.Equal(t, "R-001", *updated.Reference)
	assert.True(t, updated.SignedAmount.Equal(dec("-150")))

	empty := ""
	updated, err = ledger.Update(ctx, movement.ID, &CashMovementPatch{Reference: &empty})
	require.NoError(t, err)
	assert.Nil(t, updated.Reference)
}

func TestUpdateMovementValidation(t *testing.T) {
	db := openTestDB(t)
	user := seedUser(t, db)
	ledger := NewCashLedger(db)
	ctx := context.Background()

	movement, err := ledger.Record(ctx, newMovement(CashNatureInflow, "400"), user.ID)
	require.NoError(t, err)

	_, err = ledger.Update(ctx, movement.ID, &CashMovementPatch{})
	assert.ErrorIs(t, err, utils.ErrValidationFailed)

	for _, v := range []string{"0", "-3"} {
		bad := dec(v)
		_, err = ledger.Update(ctx, movement.ID, &CashMovementPatch{Amount: &bad})
		assert.ErrorIs(t, err, utils.ErrValidationFailed)
	}

	blank := "  "
	_, err = ledger.Update(ctx, movement.ID, &CashMovementPatch{AccountName: &blank})
	assert.ErrorIs(t, err, utils.ErrValidationFailed)

	good := dec("1")
	_, err = ledger.Update(ctx, 9999, &CashMovementPatch{Amount: &good})
	assert.ErrorIs(t, err, utils.ErrNotFound)

	stored, err := ledger.Get(ctx, movement.ID)
	require.NoError(t, err)
	assert.True(t, stored.SignedAmount.Equal(dec("400")))
}

func TestDeleteMovement(t *testing.T) {
	db := openTestDB(t)
	user := seedUser(t, db)
	ledger := NewCashLedger(db)
	ctx := context.Background()

	movement, err := ledger.Record(ctx, newMovement(CashNatureInflow, "400"), user.ID)
	require.NoError(t, err)

	ok, err := ledger.Delete(ctx, movement.ID)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Zero(t, countRows(t, db, &CashMovement{}))

	_, err = ledger.Delete(ctx, movement.ID)
	assert.ErrorIs(t, err, utils.ErrNotFound)

	_, err = ledger.Get(ctx, movement.ID)
	assert.ErrorIs(t, err, utils.ErrNotFound)
}

func TestListMovementsFilters(t *testing.T) {
	db := openTestDB(t)
	user := seedUser(t, db)
	ledger := NewCashLedger(db)
	ctx := context.Background()

	for _, n := range []CashNature{CashNatureInflow, CashNatureOutflow, CashNatureInflow} {
		_, err := ledger.Record(ctx, newMovement(n, "10"), user.ID)
		require.NoError(t, err)
	}
	other := newMovement(CashNatureInflow, "10")
	other.AccountName = "Building Fund"
	_, err := ledger.Record(ctx, other, user.ID)
	require.NoError(t, err)

	inflow := CashNatureInflow
	main := "Main Account"
	conn, err := ledger.List(ctx, CashMovementFilter{AccountName: &main, Nature: &inflow}, nil, nil)
	require.NoError(t, err)
	require.Len(t, conn.Edges, 2)
	assert.Greater(t, conn.Edges[0].Node.ID, conn.Edges[1].Node.ID)
	for _, edge := range conn.Edges {
		assert.Equal(t, "Main Account", edge.Node.AccountName)
		assert.Equal(t, CashNatureInflow, edge.Node.Nature)
	}
}
