package services

import (
	"time"

	"project_flow_app_go/models"

	"github.com/shopspring/decimal"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupTestDB() *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		panic("failed to connect database")
	}
	db.AutoMigrate(
		&models.User{},
		&models.Session{},
		&models.LookupCategory{},
		&models.LookupValue{},
		&models.Client{},
		&models.Project{},
		&models.ProjectMember{},
		&models.Task{},
		&models.TimeEntry{},
		&models.AuditLog{},
	)
	return db
}

// setupSeededDB returns a test database with the system taxonomy seeded
func setupSeededDB() *gorm.DB {
	db := setupTestDB()
	if err := SeedSystemLookups(db); err != nil {
		panic(err)
	}
	return db
}

func mustDefault(db *gorm.DB, categoryCode string) *models.LookupValue {
	def, err := GetDefaultLookupValue(db, categoryCode)
	if err != nil || def == nil {
		panic("missing default for " + categoryCode)
	}
	return def
}

func decPtr(value string) *decimal.Decimal {
	d, err := decimal.NewFromString(value)
	if err != nil {
		panic(err)
	}
	return &d
}

// testFixture is a fully wired client/project/member/task chain for billing
// and time entry tests
type testFixture struct {
	User          models.User
	Client        models.Client
	Project       models.Project
	Member        models.ProjectMember
	Task          models.Task
	BillingStatus models.LookupValue
}

// createFixture builds the chain without any billing rates set. Tests layer
// rates on top of it.
func createFixture(db *gorm.DB) testFixture {
	user := models.User{Name: "Dana Smith", Email: "dana@example.com", Password: "x", Role: models.RoleMember, IsActive: true}
	db.Create(&user)

	client := models.Client{Name: "Acme Corp", Code: "ACME", IsActive: true}
	db.Create(&client)

	project := models.Project{
		Name:       "Website Redesign",
		Code:       "WEB",
		ClientID:   client.ID,
		StatusID:   mustDefault(db, models.LookupCategoryCodeProjectStatus).ID,
		PriorityID: mustDefault(db, models.LookupCategoryCodePriority).ID,
		ManagerID:  user.ID,
		IsActive:   true,
	}
	db.Create(&project)

	member := models.ProjectMember{
		ProjectID: project.ID,
		UserID:    user.ID,
		RoleID:    mustDefault(db, models.LookupCategoryCodeProjectRole).ID,
		IsActive:  true,
	}
	db.Create(&member)

	task := models.Task{
		ProjectID:    project.ID,
		Title:        "Build landing page",
		StatusID:     mustDefault(db, models.LookupCategoryCodeTaskStatus).ID,
		PriorityID:   mustDefault(db, models.LookupCategoryCodePriority).ID,
		AssignedToID: &user.ID,
		Billable:     true,
		IsActive:     true,
	}
	db.Create(&task)

	return testFixture{
		User:          user,
		Client:        client,
		Project:       project,
		Member:        member,
		Task:          task,
		BillingStatus: *mustDefault(db, models.LookupCategoryCodeBillingStatus),
	}
}

func (f *testFixture) newEntry(hours string) models.TimeEntry {
	h, _ := decimal.NewFromString(hours)
	return models.TimeEntry{
		TaskID:          f.Task.ID,
		UserID:          f.User.ID,
		Date:            time.Date(2026, 8, 14, 0, 0, 0, 0, time.UTC),
		Hours:           h,
		Description:     "Implementation work",
		Billable:        true,
		BillingStatusID: f.BillingStatus.ID,
		IsActive:        true,
	}
}
