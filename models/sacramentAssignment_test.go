package models

import (
	"context"
	"testing"

	"github.com/parishdesk/parish_backend/utils"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func participants(ids ...int) []NewParticipant {
	out := make([]NewParticipant, 0, len(ids))
	for _, id := range ids {
		out = append(out, NewParticipant{PersonId: id})
	}
	return out
}

func amount(v string) *decimal.Decimal {
	d := decimal.RequireFromString(v)
	return &d
}

func TestCreateAssignmentEnforcesCardinality(t *testing.T) {
	db := openTestDB(t)
	people := seedPeople(t, db, 3)
	manager := NewSacramentAssignmentManager(db)
	ctx := context.Background()

	for _, ids := range [][]int{people[:1], people} {
		_, err := manager.Create(ctx, &NewSacramentAssignment{
			SacramentType:   SacramentTypeMarriage,
			CelebrationDate: celebration(4),
			Participants:    participants(ids...),
		})
		require.Error(t, err)
		assert.Equal(t, utils.KindValidationFailed, utils.KindOf(err))
	}
	assert.Zero(t, countRows(t, db, &SacramentAssignment{}))
	assert.Zero(t, countRows(t, db, &SacramentParticipant{}))

	id, err := manager.Create(ctx, &NewSacramentAssignment{
		SacramentType:   SacramentTypeMarriage,
		CelebrationDate: celebration(4),
		Participants:    participants(people[0], people[1]),
		Witnesses: []NewSacramentWitness{
			{PersonId: people[2], WitnessTypeId: WitnessTypeMarriageWitness, OrderNumber: 1},
		},
	})
	require.NoError(t, err)
	assert.Positive(t, id)

	got, err := manager.Get(ctx, id)
	require.NoError(t, err)
	require.Len(t, got.Participants, 2)
	for _, p := range got.Participants {
		assert.Equal(t, ParticipantRoleSpouse, p.Role)
	}
	require.Len(t, got.Witnesses, 1)
	assert.Equal(t, people[2], got.Witnesses[0].PersonId)
}

func TestCreateAssignmentRejectsRepeatedPerson(t *testing.T) {
	db := openTestDB(t)
	people := seedPeople(t, db, 1)
	manager := NewSacramentAssignmentManager(db)

	_, err := manager.Create(context.Background(), &NewSacramentAssignment{
		SacramentType:   SacramentTypeMarriage,
		CelebrationDate: celebration(4),
		Participants:    participants(people[0], people[0]),
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, utils.ErrValidationFailed)
	assert.Zero(t, countRows(t, db, &SacramentAssignment{}))
}

func TestCreateAssignmentPaidRules(t *testing.T) {
	db := openTestDB(t)
	people := seedPeople(t, db, 1)
	manager := NewSacramentAssignmentManager(db)
	ctx := context.Background()

	invalid := []NewSacramentAssignment{
		{Paid: true},
		{Paid: true, PaidAmount: amount("0")},
		{Paid: true, PaidAmount: amount("-5")},
		{Paid: true, PaidAmount: amount("12.34567")},
		{Paid: false, PaidAmount: amount("12.5")},
	}
	for _, input := range invalid {
		input.SacramentType = SacramentTypeBaptism
		input.CelebrationDate = celebration(5)
		input.Participants = participants(people[0])
		_, err := manager.Create(ctx, &input)
		require.Error(t, err)
		var de *utils.DomainError
		require.ErrorAs(t, err, &de)
		assert.Equal(t, utils.KindValidationFailed, de.Kind)
		assert.Equal(t, "paid_amount", de.Field)
	}

	id, err := manager.Create(ctx, &NewSacramentAssignment{
		SacramentType:   SacramentTypeBaptism,
		CelebrationDate: celebration(5),
		Paid:            true,
		PaidAmount:      amount("12.5"),
		Participants:    participants(people[0]),
	})
	require.NoError(t, err)
	got, err := manager.Get(ctx, id)
	require.NoError(t, err)
	require.NotNil(t, got.PaidAmount)
	assert.True(t, got.PaidAmount.Equal(decimal.RequireFromString("12.5")))

	ok, err := manager.Update(ctx, id, &NewSacramentAssignment{
		SacramentType:   SacramentTypeBaptism,
		CelebrationDate: celebration(5),
		Paid:            false,
		Participants:    participants(people[0]),
	})
	require.NoError(t, err)
	assert.True(t, ok)
	got, err = manager.Get(ctx, id)
	require.NoError(t, err)
	assert.Nil(t, got.PaidAmount)
	require.NotNil(t, got.Paid)
	assert.False(t, *got.Paid)
}

func TestCreateAssignmentUnknownPersonRollsBack(t *testing.T) {
	db := openTestDB(t)
	manager := NewSacramentAssignmentManager(db)

	_, err := manager.Create(context.Background(), &NewSacramentAssignment{
		SacramentType:   SacramentTypeBaptism,
		CelebrationDate: celebration(6),
		Participants:    participants(9999),
	})
	require.Error(t, err)
	assert.Equal(t, utils.KindConstraintViolation, utils.KindOf(err))
	assert.Zero(t, countRows(t, db, &SacramentAssignment{}))
}

func TestUpdateAssignmentIsAtomic(t *testing.T) {
	db := openTestDB(t)
	people := seedPeople(t, db, 4)
	manager := NewSacramentAssignmentManager(db)
	ctx := context.Background()

	id, err := manager.Create(ctx, &NewSacramentAssignment{
		SacramentType:   SacramentTypeBaptism,
		CelebrationDate: celebration(7),
		Comment:         "original",
		Participants:    participants(people[0]),
		Witnesses: []NewSacramentWitness{
			{PersonId: people[1], WitnessTypeId: WitnessTypeGodparent, OrderNumber: 1},
		},
	})
	require.NoError(t, err)

	// the second godparent reuses slot 1, so the witness insert fails after
	// the parent and the participant set were already rewritten
	_, err = manager.Update(ctx, id, &NewSacramentAssignment{
		SacramentType:   SacramentTypeBaptism,
		CelebrationDate: celebration(8),
		Comment:         "changed",
		Participants:    participants(people[2]),
		Witnesses: []NewSacramentWitness{
			{PersonId: people[3], WitnessTypeId: WitnessTypeGodparent, OrderNumber: 1},
			{PersonId: people[1], WitnessTypeId: WitnessTypeGodparent, OrderNumber: 1},
		},
	})
	require.Error(t, err)
	var de *utils.DomainError
	require.ErrorAs(t, err, &de)
	assert.Equal(t, utils.KindConstraintViolation, de.Kind)
	assert.Equal(t, witnessRelation, de.Relation)

	got, err := manager.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "original", got.Comment)
	assert.True(t, got.CelebrationDate.Equal(celebration(7)))
	require.Len(t, got.Participants, 1)
	assert.Equal(t, people[0], got.Participants[0].PersonId)
	require.Len(t, got.Witnesses, 1)
	assert.Equal(t, people[1], got.Witnesses[0].PersonId)
}

func TestUpdateAssignmentReplacesChildren(t *testing.T) {
	db := openTestDB(t)
	people := seedPeople(t, db, 4)
	manager := NewSacramentAssignmentManager(db)
	ctx := context.Background()

	id, err := manager.Create(ctx, &NewSacramentAssignment{
		SacramentType:   SacramentTypeConfirmation,
		CelebrationDate: celebration(9),
		Participants:    participants(people[0]),
		Witnesses: []NewSacramentWitness{
			{PersonId: people[1], WitnessTypeId: WitnessTypeConfirmationSponsor, OrderNumber: 1},
		},
	})
	require.NoError(t, err)

	_, err = manager.Update(ctx, id, &NewSacramentAssignment{
		SacramentType:   SacramentTypeConfirmation,
		CelebrationDate: celebration(9),
		Participants:    participants(people[1]),
		Witnesses: []NewSacramentWitness{
			{PersonId: people[2], WitnessTypeId: WitnessTypeConfirmationSponsor, OrderNumber: 1},
			{PersonId: people[3], WitnessTypeId: WitnessTypeConfirmationSponsor, OrderNumber: 2},
		},
	})
	require.NoError(t, err)

	got, err := manager.Get(ctx, id)
	require.NoError(t, err)
	require.Len(t, got.Participants, 1)
	assert.Equal(t, people[1], got.Participants[0].PersonId)
	assert.Equal(t, ParticipantRoleConfirmand, got.Participants[0].Role)
	require.Len(t, got.Witnesses, 2)
	assert.Equal(t, 1, got.Witnesses[0].OrderNumber)
	assert.Equal(t, 2, got.Witnesses[1].OrderNumber)
	assert.Equal(t, int64(1), countRows(t, db, &SacramentParticipant{}))
	assert.Equal(t, int64(2), countRows(t, db, &SacramentWitness{}))
}

func TestUpdateAssignmentValidatesOrderNumber(t *testing.T) {
	db := openTestDB(t)
	people := seedPeople(t, db, 2)
	manager := NewSacramentAssignmentManager(db)

	_, err := manager.Create(context.Background(), &NewSacramentAssignment{
		SacramentType:   SacramentTypeBaptism,
		CelebrationDate: celebration(10),
		Participants:    participants(people[0]),
		Witnesses: []NewSacramentWitness{
			{PersonId: people[1], WitnessTypeId: WitnessTypeGodparent, OrderNumber: 3},
		},
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, utils.ErrValidationFailed)
}

func TestDeleteAssignmentTwice(t *testing.T) {
	db := openTestDB(t)
	people := seedPeople(t, db, 1)
	manager := NewSacramentAssignmentManager(db)
	ctx := context.Background()

	id, err := manager.Create(ctx, &NewSacramentAssignment{
		SacramentType:   SacramentTypeBaptism,
		CelebrationDate: celebration(11),
		Participants:    participants(people[0]),
	})
	require.NoError(t, err)

	ok, err := manager.Delete(ctx, id)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = manager.Delete(ctx, id)
	require.Error(t, err)
	assert.False(t, ok)
	assert.ErrorIs(t, err, utils.ErrNotFound)

	var stored SacramentAssignment
	require.NoError(t, db.Take(&stored, id).Error)
	require.NotNil(t, stored.IsActive)
	assert.False(t, *stored.IsActive)

	_, err = manager.Get(ctx, id)
	assert.ErrorIs(t, err, utils.ErrNotFound)

	_, err = manager.Update(ctx, id, &NewSacramentAssignment{
		SacramentType:   SacramentTypeBaptism,
		CelebrationDate: celebration(11),
		Participants:    participants(people[0]),
	})
	assert.ErrorIs(t, err, utils.ErrNotFound)
}

func TestUpdateAfterDeleteLeavesChildren(t *testing.T) {
	db := openTestDB(t)
	people := seedPeople(t, db, 3)
	manager := NewSacramentAssignmentManager(db)
	ctx := context.Background()

	id, err := manager.Create(ctx, &NewSacramentAssignment{
		SacramentType:   SacramentTypeBaptism,
		CelebrationDate: celebration(13),
		Participants:    participants(people[0]),
		Witnesses: []NewSacramentWitness{
			{PersonId: people[1], WitnessTypeId: WitnessTypeGodparent, OrderNumber: 1},
		},
	})
	require.NoError(t, err)
	_, err = manager.Delete(ctx, id)
	require.NoError(t, err)

	_, err = manager.Update(ctx, id, &NewSacramentAssignment{
		SacramentType:   SacramentTypeBaptism,
		CelebrationDate: celebration(14),
		Participants:    participants(people[2]),
	})
	assert.ErrorIs(t, err, utils.ErrNotFound)

	var children []SacramentParticipant
	require.NoError(t, db.Where("assignment_id = ?", id).Find(&children).Error)
	require.Len(t, children, 1)
	assert.Equal(t, people[0], children[0].PersonId)
	assert.Equal(t, int64(1), countRows(t, db, &SacramentWitness{}))
}

func TestUpdateMissingAssignment(t *testing.T) {
	db := openTestDB(t)
	people := seedPeople(t, db, 1)
	manager := NewSacramentAssignmentManager(db)

	_, err := manager.Update(context.Background(), 404, &NewSacramentAssignment{
		SacramentType:   SacramentTypeBaptism,
		CelebrationDate: celebration(12),
		Participants:    participants(people[0]),
	})
	require.Error(t, err)
	assert.Equal(t, utils.KindNotFound, utils.KindOf(err))
}

func TestListAssignmentsPagesNewestFirst(t *testing.T) {
	db := openTestDB(t)
	people := seedPeople(t, db, 5)
	manager := NewSacramentAssignmentManager(db)
	ctx := context.Background()

	var ids []int
	for i, person := range people {
		id, err := manager.Create(ctx, &NewSacramentAssignment{
			SacramentType:   SacramentTypeBaptism,
			CelebrationDate: celebration(i + 1),
			Participants:    participants(person),
		})
		require.NoError(t, err)
		ids = append(ids, id)
	}
	_, err := manager.Delete(ctx, ids[4])
	require.NoError(t, err)

	limit := 2
	first, err := manager.List(ctx, SacramentAssignmentFilter{}, &limit, nil)
	require.NoError(t, err)
	require.Len(t, first.Edges, 2)
	assert.Equal(t, ids[3], first.Edges[0].Node.ID)
	assert.Equal(t, ids[2], first.Edges[1].Node.ID)
	require.NotNil(t, first.PageInfo.HasNextPage)
	assert.True(t, *first.PageInfo.HasNextPage)
	require.Len(t, first.Edges[0].Node.Participants, 1)

	second, err := manager.List(ctx, SacramentAssignmentFilter{}, &limit, &first.PageInfo.EndCursor)
	require.NoError(t, err)
	require.Len(t, second.Edges, 2)
	assert.Equal(t, ids[1], second.Edges[0].Node.ID)
	assert.Equal(t, ids[0], second.Edges[1].Node.ID)
	assert.False(t, *second.PageInfo.HasNextPage)
}
