package models

import (
	"fmt"
	"time"

	"github.com/parishdesk/parish_backend/utils"
)

// Sacrament is a catalog row; its id doubles as the SacramentType.
type Sacrament struct {
	ID        SacramentType `gorm:"primary_key;autoIncrement:false" json:"id"`
	Name      string        `gorm:"size:100;not null;unique" json:"name"`
	CreatedAt time.Time     `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time     `gorm:"autoUpdateTime" json:"updated_at"`
}

type WitnessType struct {
	ID        WitnessTypeId `gorm:"primary_key;autoIncrement:false" json:"id"`
	Name      string        `gorm:"size:100;not null;unique" json:"name"`
	CreatedAt time.Time     `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time     `gorm:"autoUpdateTime" json:"updated_at"`
}

// SacramentRule is one row of the cardinality table.
type SacramentRule struct {
	SacramentType    SacramentType   `json:"sacrament_type"`
	Name             string          `json:"name"`
	ParticipantCount int             `json:"participant_count"`
	ParticipantRole  ParticipantRole `json:"participant_role"`
}

// sacramentRules is the single source of truth for participant cardinality and roles.
var sacramentRules = map[SacramentType]SacramentRule{
	SacramentTypeBaptism: {
		SacramentType:    SacramentTypeBaptism,
		Name:             "Baptism",
		ParticipantCount: 1,
		ParticipantRole:  ParticipantRoleBaptized,
	},
	SacramentTypeConfirmation: {
		SacramentType:    SacramentTypeConfirmation,
		Name:             "Confirmation",
		ParticipantCount: 1,
		ParticipantRole:  ParticipantRoleConfirmand,
	},
	SacramentTypeMarriage: {
		SacramentType:    SacramentTypeMarriage,
		Name:             "Marriage",
		ParticipantCount: 2,
		ParticipantRole:  ParticipantRoleSpouse,
	},
}

// LookupSacramentRule returns the rule for t, or false for an unknown sacrament.
func LookupSacramentRule(t SacramentType) (SacramentRule, bool) {
	rule, ok := sacramentRules[t]
	return rule, ok
}

// SacramentRules lists the table ordered by sacrament id, for UI metadata.
func SacramentRules() []SacramentRule {
	rules := make([]SacramentRule, 0, len(sacramentRules))
	for _, t := range []SacramentType{SacramentTypeBaptism, SacramentTypeConfirmation, SacramentTypeMarriage} {
		rules = append(rules, sacramentRules[t])
	}
	return rules
}

// checkParticipants applies the rule table to a participant list before any write.
func checkParticipants(t SacramentType, personIds []int) (SacramentRule, error) {
	rule, ok := LookupSacramentRule(t)
	if !ok {
		return SacramentRule{}, utils.ValidationFailed("sacrament_type", fmt.Sprintf("unknown sacrament type %d", t))
	}
	if len(personIds) == 0 {
		return rule, utils.ValidationFailed("participants", "at least one participant is required")
	}
	if len(personIds) != rule.ParticipantCount {
		return rule, utils.ValidationFailed("participants",
			fmt.Sprintf("%s requires exactly %d participant(s), got %d", rule.Name, rule.ParticipantCount, len(personIds)))
	}
	seen := make(map[int]bool, len(personIds))
	for _, id := range personIds {
		if id <= 0 {
			return rule, utils.ValidationFailed("participants", "person id must be positive")
		}
		if seen[id] {
			return rule, utils.ValidationFailed("participants", fmt.Sprintf("person %d appears more than once", id))
		}
		seen[id] = true
	}
	return rule, nil
}

func seedSacraments() []Sacrament {
	rules := SacramentRules()
	rows := make([]Sacrament, 0, len(rules))
	for _, r := range rules {
		rows = append(rows, Sacrament{ID: r.SacramentType, Name: r.Name})
	}
	return rows
}

func seedWitnessTypes() []WitnessType {
	return []WitnessType{
		{ID: WitnessTypeGodparent, Name: "Godparent"},
		{ID: WitnessTypeConfirmationSponsor, Name: "Confirmation sponsor"},
		{ID: WitnessTypeMarriageWitness, Name: "Marriage witness"},
	}
}
