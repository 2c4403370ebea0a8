package models

import (
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// MigrateTable creates or alters the schema and seeds the catalogs.
// Catalog rows are inserted once; existing rows are left alone.
func MigrateTable(db *gorm.DB) error {
	err := db.AutoMigrate(
		&Role{}, &User{},
		&Sacrament{}, &WitnessType{},
		&Person{},
		&SacramentAssignment{}, &SacramentParticipant{}, &SacramentWitness{},
		&CashMovement{},
	)
	if err != nil {
		return err
	}
	return seedCatalogs(db)
}

func seedCatalogs(db *gorm.DB) error {
	return db.Transaction(func(tx *gorm.DB) error {
		sacraments := seedSacraments()
		if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&sacraments).Error; err != nil {
			return err
		}
		witnessTypes := seedWitnessTypes()
		if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&witnessTypes).Error; err != nil {
			return err
		}
		for _, role := range seedRoles() {
			if err := tx.Where(Role{Name: role.Name}).FirstOrCreate(&role).Error; err != nil {
				return err
			}
		}
		return nil
	})
}
