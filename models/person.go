package models

import (
	"context"
	"strings"
	"time"

	"github.com/parishdesk/parish_backend/config"
	"github.com/parishdesk/parish_backend/utils"
	"gorm.io/gorm"
)

// Person is a member of the parish registry.
type Person struct {
	ID             int        `gorm:"primary_key" json:"id"`
	FirstName      string     `gorm:"size:100;not null" json:"first_name"`
	LastName       string     `gorm:"size:100;not null" json:"last_name"`
	DocumentNumber string     `gorm:"size:30;not null;unique" json:"document_number"`
	Phone          string     `gorm:"size:20" json:"phone"`
	BirthDate      *time.Time `json:"birth_date"`
	IsActive       *bool      `gorm:"not null;default:true" json:"is_active"`
	CreatedAt      time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt      time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
}

type NewPerson struct {
	FirstName      string     `json:"first_name" validate:"required,max=100"`
	LastName       string     `json:"last_name" validate:"required,max=100"`
	DocumentNumber string     `json:"document_number" validate:"required,max=30"`
	Phone          string     `json:"phone" validate:"max=20"`
	BirthDate      *time.Time `json:"birth_date"`
}

func (input *NewPerson) validate(ctx context.Context, db *gorm.DB) error {
	input.FirstName = strings.TrimSpace(input.FirstName)
	input.LastName = strings.TrimSpace(input.LastName)
	input.DocumentNumber = strings.TrimSpace(input.DocumentNumber)
	if err := utils.ValidateStruct(input); err != nil {
		return err
	}
	if input.Phone != "" {
		region := config.PhoneCountryCode()
		if err := utils.ValidatePhoneNumber(input.Phone, region); err != nil {
			return utils.ValidationFailed("phone", "invalid phone number")
		}
		phone, err := utils.FormatPhoneNumber(input.Phone, region)
		if err != nil {
			return utils.ValidationFailed("phone", "invalid phone number")
		}
		input.Phone = phone
	}
	return utils.ValidateUnique[Person](ctx, db, "document_number", input.DocumentNumber, 0)
}

func CreatePerson(ctx context.Context, db *gorm.DB, input *NewPerson) (*Person, error) {
	if err := input.validate(ctx, db); err != nil {
		return nil, err
	}

	person := Person{
		FirstName:      input.FirstName,
		LastName:       input.LastName,
		DocumentNumber: input.DocumentNumber,
		Phone:          input.Phone,
		BirthDate:      input.BirthDate,
		IsActive:       utils.NewTrue(),
	}
	if err := db.WithContext(ctx).Create(&person).Error; err != nil {
		return nil, classifyWriteError("people", err)
	}
	return &person, nil
}

func GetPerson(ctx context.Context, db *gorm.DB, id int) (*Person, error) {
	var person Person
	if err := db.WithContext(ctx).First(&person, id).Error; err != nil {
		return nil, classifyReadError("people", id, err)
	}
	return &person, nil
}
