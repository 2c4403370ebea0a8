package models

import (
	"encoding/json"
	"errors"
	"strings"
)

// SacramentType is the catalog id of a sacrament; the rule table is keyed by it.
type SacramentType int

const (
	SacramentTypeBaptism      SacramentType = 1
	SacramentTypeConfirmation SacramentType = 2
	SacramentTypeMarriage     SacramentType = 3
)

func (t SacramentType) String() string {
	switch t {
	case SacramentTypeBaptism:
		return "Baptism"
	case SacramentTypeConfirmation:
		return "Confirmation"
	case SacramentTypeMarriage:
		return "Marriage"
	}
	return "Unknown"
}

type ParticipantRole string

const (
	ParticipantRoleBaptized   ParticipantRole = "baptized"
	ParticipantRoleConfirmand ParticipantRole = "confirmand"
	ParticipantRoleSpouse     ParticipantRole = "spouse"
)

type WitnessTypeId int

const (
	WitnessTypeGodparent           WitnessTypeId = 1
	WitnessTypeConfirmationSponsor WitnessTypeId = 2
	WitnessTypeMarriageWitness     WitnessTypeId = 3
)

// CashNature is the closed direction of a cash movement.
type CashNature string

const (
	CashNatureInflow  CashNature = "inflow"
	CashNatureOutflow CashNature = "outflow"
)

func (n CashNature) IsValid() bool {
	return n == CashNatureInflow || n == CashNatureOutflow
}

// convert input to enum type
func (n *CashNature) UnmarshalJSON(b []byte) error {
	var str string
	if err := json.Unmarshal(b, &str); err != nil {
		return errors.New("cash nature must be string")
	}
	switch strings.ToLower(strings.TrimSpace(str)) {
	case "inflow", "income", "ingreso":
		*n = CashNatureInflow
	case "outflow", "expense", "egreso":
		*n = CashNatureOutflow
	default:
		return errors.New("invalid cash nature")
	}
	return nil
}
