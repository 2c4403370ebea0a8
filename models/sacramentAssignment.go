package models

import (
	"context"
	"strings"
	"time"

	"github.com/parishdesk/parish_backend/config"
	"github.com/parishdesk/parish_backend/utils"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// SacramentAssignment is one scheduled or celebrated sacrament. Its participant
// and witness sets are owned by the assignment and only change together with it.
type SacramentAssignment struct {
	ID              int                    `gorm:"primary_key" json:"id"`
	SacramentId     SacramentType          `gorm:"index;not null" json:"sacrament_type"`
	Sacrament       *Sacrament             `gorm:"foreignKey:SacramentId" json:"-"`
	CelebrationDate time.Time              `gorm:"index;not null" json:"celebration_date"`
	Paid            *bool                  `gorm:"not null;default:false" json:"paid"`
	PaidAmount      *decimal.Decimal       `gorm:"type:decimal(20,4)" json:"paid_amount"`
	Comment         string                 `gorm:"type:text" json:"comment"`
	IsActive        *bool                  `gorm:"index;not null;default:true" json:"is_active"`
	Participants    []SacramentParticipant `gorm:"-" json:"participants"`
	Witnesses       []SacramentWitness     `gorm:"-" json:"witnesses"`
	CreatedAt       time.Time              `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt       time.Time              `gorm:"autoUpdateTime" json:"updated_at"`
}

// SacramentParticipant is a person receiving the sacrament.
type SacramentParticipant struct {
	ID           int                  `gorm:"primary_key" json:"id"`
	AssignmentId int                  `gorm:"not null;uniqueIndex:idx_participant_person" json:"assignment_id"`
	Assignment   *SacramentAssignment `gorm:"foreignKey:AssignmentId" json:"-"`
	PersonId     int                  `gorm:"not null;uniqueIndex:idx_participant_person" json:"person_id"`
	Person       *Person              `gorm:"foreignKey:PersonId" json:"-"`
	Role         ParticipantRole      `gorm:"size:20;not null" json:"role"`
	CreatedAt    time.Time            `gorm:"autoCreateTime" json:"created_at"`
}

type NewSacramentAssignment struct {
	SacramentType   SacramentType         `json:"sacrament_type" validate:"required"`
	CelebrationDate time.Time             `json:"celebration_date" validate:"required"`
	Paid            bool                  `json:"paid"`
	PaidAmount      *decimal.Decimal      `json:"paid_amount"`
	Comment         string                `json:"comment" validate:"max=2000"`
	Participants    []NewParticipant      `json:"participants" validate:"dive"`
	Witnesses       []NewSacramentWitness `json:"witnesses" validate:"dive"`
}

type NewParticipant struct {
	PersonId int `json:"person_id" validate:"required,gt=0"`
}

type SacramentAssignmentFilter struct {
	SacramentType *SacramentType
	DateFrom      *time.Time
	DateTo        *time.Time
}

const (
	assignmentRelation  = "sacrament_assignments"
	participantRelation = "sacrament_participants"
)

func (a SacramentAssignment) GetCursorTime() time.Time {
	return a.CelebrationDate
}

func (a SacramentAssignment) GetId() int {
	return a.ID
}

func (input *NewSacramentAssignment) participantIds() []int {
	ids := make([]int, 0, len(input.Participants))
	for _, p := range input.Participants {
		ids = append(ids, p.PersonId)
	}
	return ids
}

// validate runs every check that needs no store access. Nothing is written
// unless it passes.
func (input *NewSacramentAssignment) validate() (SacramentRule, error) {
	input.Comment = strings.TrimSpace(input.Comment)
	if err := utils.ValidateStruct(input); err != nil {
		return SacramentRule{}, err
	}
	rule, err := checkParticipants(input.SacramentType, input.participantIds())
	if err != nil {
		return rule, err
	}
	if input.Paid {
		if input.PaidAmount == nil || !input.PaidAmount.IsPositive() {
			return rule, utils.ValidationFailed("paid_amount", "paid amount must be greater than zero when paid")
		}
		if !fitsMoneyScale(*input.PaidAmount) {
			return rule, utils.ValidationFailed("paid_amount", "paid amount supports at most 4 decimal places")
		}
	} else if input.PaidAmount != nil {
		return rule, utils.ValidationFailed("paid_amount", "paid amount must be empty when not paid")
	}
	return rule, nil
}

// paidAmountValue is what goes into paid_amount: NULL unless paid.
func (input *NewSacramentAssignment) paidAmountValue() interface{} {
	if !input.Paid {
		return gorm.Expr("NULL")
	}
	return *input.PaidAmount
}

// SacramentAssignmentManager runs the multi-table writes of an assignment,
// each as one transaction on db.
type SacramentAssignmentManager struct {
	db *gorm.DB
}

func NewSacramentAssignmentManager(db *gorm.DB) *SacramentAssignmentManager {
	return &SacramentAssignmentManager{db: db}
}

// Create writes the assignment, its participants and its witnesses, in that
// order, and returns the new id.
func (m *SacramentAssignmentManager) Create(ctx context.Context, input *NewSacramentAssignment) (int, error) {
	ctx, span := tracer.Start(ctx, "SacramentAssignment.Create")
	defer span.End()

	rule, err := input.validate()
	if err != nil {
		return 0, err
	}
	span.SetAttributes(attribute.String("sacrament", rule.Name))

	assignment := SacramentAssignment{
		SacramentId:     input.SacramentType,
		CelebrationDate: input.CelebrationDate,
		Paid:            &input.Paid,
		PaidAmount:      input.PaidAmount,
		Comment:         input.Comment,
		IsActive:        utils.NewTrue(),
	}
	err = runInTransaction(ctx, m.db, "CreateSacramentAssignment", func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Create(&assignment).Error; err != nil {
			return classifyWriteError(assignmentRelation, err)
		}
		if err := insertParticipants(ctx, tx, assignment.ID, rule, input.Participants); err != nil {
			return err
		}
		return insertWitnesses(ctx, tx, assignment.ID, input.Witnesses)
	})
	if err != nil {
		span.RecordError(err)
		return 0, err
	}
	return assignment.ID, nil
}

// Update replaces the parent fields and both child sets of an active
// assignment. The parent row is locked first, so concurrent updates of one
// assignment apply one after the other and a concurrent delete is seen.
func (m *SacramentAssignmentManager) Update(ctx context.Context, id int, input *NewSacramentAssignment) (bool, error) {
	ctx, span := tracer.Start(ctx, "SacramentAssignment.Update")
	defer span.End()
	span.SetAttributes(attribute.Int("assignment.id", id))

	rule, err := input.validate()
	if err != nil {
		return false, err
	}

	err = runInTransaction(ctx, m.db, "UpdateSacramentAssignment", func(tx *gorm.DB) error {
		var current SacramentAssignment
		if err := lockForUpdate(tx).Where("id = ? AND is_active = ?", id, true).Take(&current).Error; err != nil {
			return classifyReadError(assignmentRelation, id, err)
		}
		if err := tx.Model(&SacramentAssignment{}).Where("id = ?", current.ID).Updates(map[string]interface{}{
			"sacrament_id":     input.SacramentType,
			"celebration_date": input.CelebrationDate,
			"paid":             input.Paid,
			"paid_amount":      input.paidAmountValue(),
			"comment":          input.Comment,
		}).Error; err != nil {
			return classifyWriteError(assignmentRelation, err)
		}
		if err := replaceParticipants(ctx, tx, id, rule, input.Participants); err != nil {
			return err
		}
		return replaceWitnesses(ctx, tx, id, input.Witnesses)
	})
	if err != nil {
		span.RecordError(err)
		return false, err
	}
	return true, nil
}

// Delete deactivates an assignment. Children are left in place.
func (m *SacramentAssignmentManager) Delete(ctx context.Context, id int) (bool, error) {
	ctx, span := tracer.Start(ctx, "SacramentAssignment.Delete")
	defer span.End()
	span.SetAttributes(attribute.Int("assignment.id", id))

	ctx, cancel := context.WithTimeout(ctx, config.TxTimeout())
	defer cancel()

	result := m.db.WithContext(ctx).Model(&SacramentAssignment{}).
		Where("id = ? AND is_active = ?", id, true).
		Update("is_active", false)
	if result.Error != nil {
		return false, logAbort(ctx, "DeleteSacramentAssignment", "update", classifyWriteError(assignmentRelation, result.Error))
	}
	if result.RowsAffected == 0 {
		return false, utils.NotFound(assignmentRelation, id)
	}
	return true, nil
}

// Get returns an active assignment with its participants and witnesses,
// read from one snapshot.
func (m *SacramentAssignmentManager) Get(ctx context.Context, id int) (*SacramentAssignment, error) {
	var assignment SacramentAssignment
	err := runInTransaction(ctx, m.db, "GetSacramentAssignment", func(tx *gorm.DB) error {
		if err := tx.Where("id = ? AND is_active = ?", id, true).Take(&assignment).Error; err != nil {
			return classifyReadError(assignmentRelation, id, err)
		}
		list := []*SacramentAssignment{&assignment}
		return attachChildren(ctx, tx, list)
	})
	if err != nil {
		return nil, err
	}
	return &assignment, nil
}

// List pages active assignments, latest celebration first.
func (m *SacramentAssignmentManager) List(ctx context.Context, filter SacramentAssignmentFilter, limit *int, after *string) (*Connection[SacramentAssignment], error) {
	dbCtx := m.db.WithContext(ctx).Where("is_active = ?", true)
	if filter.SacramentType != nil {
		dbCtx = dbCtx.Where("sacrament_id = ?", *filter.SacramentType)
	}
	if filter.DateFrom != nil {
		dbCtx = dbCtx.Where("celebration_date >= ?", *filter.DateFrom)
	}
	if filter.DateTo != nil {
		dbCtx = dbCtx.Where("celebration_date <= ?", *filter.DateTo)
	}

	conn, err := fetchPageNewestFirst[SacramentAssignment](dbCtx, limit, after, "celebration_date")
	if err != nil {
		return nil, classifyWriteError(assignmentRelation, err)
	}
	nodes := make([]*SacramentAssignment, 0, len(conn.Edges))
	for _, edge := range conn.Edges {
		nodes = append(nodes, edge.Node)
	}
	if err := attachChildren(ctx, m.db, nodes); err != nil {
		return nil, err
	}
	return conn, nil
}

func insertParticipants(ctx context.Context, tx *gorm.DB, assignmentId int, rule SacramentRule, input []NewParticipant) error {
	for _, p := range input {
		row := SacramentParticipant{
			AssignmentId: assignmentId,
			PersonId:     p.PersonId,
			Role:         rule.ParticipantRole,
		}
		if err := tx.WithContext(ctx).Omit(clause.Associations).Create(&row).Error; err != nil {
			return classifyWriteError(participantRelation, err)
		}
	}
	return nil
}

func replaceParticipants(ctx context.Context, tx *gorm.DB, assignmentId int, rule SacramentRule, input []NewParticipant) error {
	if err := tx.WithContext(ctx).Where("assignment_id = ?", assignmentId).Delete(&SacramentParticipant{}).Error; err != nil {
		return classifyWriteError(participantRelation, err)
	}
	return insertParticipants(ctx, tx, assignmentId, rule, input)
}

func attachChildren(ctx context.Context, db *gorm.DB, assignments []*SacramentAssignment) error {
	if len(assignments) == 0 {
		return nil
	}
	ids := make([]int, 0, len(assignments))
	for _, a := range assignments {
		ids = append(ids, a.ID)
	}

	var participants []SacramentParticipant
	if err := db.WithContext(ctx).Where("assignment_id IN ?", ids).Order("assignment_id, id").Find(&participants).Error; err != nil {
		return classifyWriteError(participantRelation, err)
	}
	byAssignment := make(map[int][]SacramentParticipant, len(assignments))
	for _, p := range participants {
		byAssignment[p.AssignmentId] = append(byAssignment[p.AssignmentId], p)
	}

	witnesses, err := fetchWitnesses(ctx, db, ids)
	if err != nil {
		return err
	}

	for _, a := range assignments {
		a.Participants = byAssignment[a.ID]
		if a.Participants == nil {
			a.Participants = []SacramentParticipant{}
		}
		a.Witnesses = witnesses[a.ID]
		if a.Witnesses == nil {
			a.Witnesses = []SacramentWitness{}
		}
	}
	return nil
}
