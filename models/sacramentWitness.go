package models

import (
	"context"
	"time"

	"github.com/parishdesk/parish_backend/utils"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// SacramentWitness is a godparent, sponsor or marriage witness of an assignment.
// (assignment, witness type, order) is a slot that holds at most one person.
type SacramentWitness struct {
	ID            int                  `gorm:"primary_key" json:"id"`
	AssignmentId  int                  `gorm:"not null;uniqueIndex:idx_witness_slot" json:"assignment_id"`
	Assignment    *SacramentAssignment `gorm:"foreignKey:AssignmentId" json:"-"`
	WitnessTypeId WitnessTypeId        `gorm:"not null;uniqueIndex:idx_witness_slot" json:"witness_type_id"`
	WitnessType   *WitnessType         `gorm:"foreignKey:WitnessTypeId" json:"-"`
	OrderNumber   int                  `gorm:"not null;uniqueIndex:idx_witness_slot" json:"order_number"`
	PersonId      int                  `gorm:"index;not null" json:"person_id"`
	Person        *Person              `gorm:"foreignKey:PersonId" json:"-"`
	CreatedAt     time.Time            `gorm:"autoCreateTime" json:"created_at"`
}

type NewSacramentWitness struct {
	PersonId      int           `json:"person_id" validate:"required,gt=0"`
	WitnessTypeId WitnessTypeId `json:"witness_type_id" validate:"required,gt=0"`
	OrderNumber   int           `json:"order_number" validate:"required,oneof=1 2"`
}

const witnessRelation = "sacrament_witnesses"

// insertWitnesses writes one row per input, in input order, so a duplicate
// slot fails on the offending row instead of being merged away.
func insertWitnesses(ctx context.Context, tx *gorm.DB, assignmentId int, input []NewSacramentWitness) error {
	for _, w := range input {
		row := SacramentWitness{
			AssignmentId:  assignmentId,
			WitnessTypeId: w.WitnessTypeId,
			OrderNumber:   w.OrderNumber,
			PersonId:      w.PersonId,
		}
		if err := tx.WithContext(ctx).Omit(clause.Associations).Create(&row).Error; err != nil {
			return classifyWriteError(witnessRelation, err)
		}
	}
	return nil
}

// replaceWitnesses drops the current witness set and writes the new one.
// Witness rows carry no identity worth reconciling, so there is no diff.
func replaceWitnesses(ctx context.Context, tx *gorm.DB, assignmentId int, input []NewSacramentWitness) error {
	if err := tx.WithContext(ctx).Where("assignment_id = ?", assignmentId).Delete(&SacramentWitness{}).Error; err != nil {
		return classifyWriteError(witnessRelation, err)
	}
	return insertWitnesses(ctx, tx, assignmentId, input)
}

func fetchWitnesses(ctx context.Context, db *gorm.DB, assignmentIds []int) (map[int][]SacramentWitness, error) {
	result := make(map[int][]SacramentWitness, len(assignmentIds))
	if len(assignmentIds) == 0 {
		return result, nil
	}
	var rows []SacramentWitness
	if err := db.WithContext(ctx).
		Where("assignment_id IN ?", utils.UniqueSlice(assignmentIds)).
		Order("assignment_id, witness_type_id, order_number").
		Find(&rows).Error; err != nil {
		return nil, classifyWriteError(witnessRelation, err)
	}
	for _, row := range rows {
		result[row.AssignmentId] = append(result[row.AssignmentId], row)
	}
	return result, nil
}
