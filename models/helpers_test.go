package models

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/parishdesk/parish_backend/models/modeltest"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	return modeltest.Open(t, MigrateTable)
}

func seedPerson(t *testing.T, db *gorm.DB, document string) *Person {
	t.Helper()
	person, err := CreatePerson(context.Background(), db, &NewPerson{
		FirstName:      "Test",
		LastName:       "Person " + document,
		DocumentNumber: document,
	})
	require.NoError(t, err)
	return person
}

func seedPeople(t *testing.T, db *gorm.DB, n int) []int {
	t.Helper()
	ids := make([]int, 0, n)
	for i := 0; i < n; i++ {
		ids = append(ids, seedPerson(t, db, fmt.Sprintf("DOC-%03d", i+1)).ID)
	}
	return ids
}

func seedUser(t *testing.T, db *gorm.DB) *User {
	t.Helper()
	ctx := context.Background()
	role, err := GetRoleByName(ctx, db, RoleTreasurer)
	require.NoError(t, err)
	user, err := CreateUser(ctx, db, &NewUser{
		Username: "treasurer",
		Name:     "Parish Treasurer",
		Password: "s3cret-pass",
		RoleId:   role.ID,
	})
	require.NoError(t, err)
	return user
}

func celebration(day int) time.Time {
	return time.Date(2024, time.May, day, 10, 0, 0, 0, time.UTC)
}

func countRows(t *testing.T, db *gorm.DB, model interface{}) int64 {
	t.Helper()
	var count int64
	require.NoError(t, db.Model(model).Count(&count).Error)
	return count
}
