package db

import (
	"testing"
	"time"

	"agora/internal/models"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

// openTestDB swaps the package connection for an in-memory sqlite
// database so the delete operations run against a real schema.
func openTestDB(t *testing.T) {
	t.Helper()

	gdb, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := gdb.AutoMigrate(&models.User{}, &models.Category{}, &models.Activity{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	DB = gdb
}

func makeUser(t *testing.T, username string) models.User {
	t.Helper()
	user := models.User{Username: username, Password: "x", IsActive: true}
	if err := DB.Create(&user).Error; err != nil {
		t.Fatalf("create user %s: %v", username, err)
	}
	return user
}

func makeActivity(t *testing.T, title string, proposerID uint, categoryID *uint, attendees ...models.User) models.Activity {
	t.Helper()
	start := time.Now().Add(24 * time.Hour)
	activity := models.Activity{
		Title:        title,
		Description:  "Une description suffisante.",
		LocationCity: "Paris",
		StartTime:    start,
		EndTime:      start.Add(2 * time.Hour),
		ProposerID:   proposerID,
		CategoryID:   categoryID,
		Attendees:    attendees,
	}
	if err := DB.Create(&activity).Error; err != nil {
		t.Fatalf("create activity %s: %v", title, err)
	}
	return activity
}

func attendeeRowCount(t *testing.T) int64 {
	t.Helper()
	var count int64
	if err := DB.Table("activity_attendees").Count(&count).Error; err != nil {
		t.Fatalf("count attendee rows: %v", err)
	}
	return count
}

func TestDeleteCategoryKeepsActivities(t *testing.T) {
	openTestDB(t)

	category := models.Category{Name: "Sport"}
	if err := DB.Create(&category).Error; err != nil {
		t.Fatalf("create category: %v", err)
	}
	alice := makeUser(t, "alice")
	activity := makeActivity(t, "Randonnée en forêt", alice.ID, &category.ID)

	if err := DeleteCategory(category.ID); err != nil {
		t.Fatalf("DeleteCategory: %v", err)
	}

	var reloaded models.Activity
	if err := DB.First(&reloaded, activity.ID).Error; err != nil {
		t.Fatalf("activity should survive its category: %v", err)
	}
	if reloaded.CategoryID != nil {
		t.Errorf("category_id should be cleared, got %d", *reloaded.CategoryID)
	}

	var count int64
	DB.Model(&models.Category{}).Where("id = ?", category.ID).Count(&count)
	if count != 0 {
		t.Error("category still present after delete")
	}
}

func TestDeleteActivityClearsAttendees(t *testing.T) {
	openTestDB(t)

	alice := makeUser(t, "alice")
	bob := makeUser(t, "bob")
	activity := makeActivity(t, "Tournoi de pétanque", alice.ID, nil, bob)

	if got := attendeeRowCount(t); got != 1 {
		t.Fatalf("attendee rows before delete = %d, want 1", got)
	}

	if err := DeleteActivity(activity.ID); err != nil {
		t.Fatalf("DeleteActivity: %v", err)
	}

	if got := attendeeRowCount(t); got != 0 {
		t.Errorf("attendee rows after delete = %d, want 0", got)
	}

	var count int64
	DB.Model(&models.Activity{}).Where("id = ?", activity.ID).Count(&count)
	if count != 0 {
		t.Error("activity still present after delete")
	}
	DB.Model(&models.User{}).Where("id = ?", bob.ID).Count(&count)
	if count != 1 {
		t.Error("attendee account must survive the activity")
	}
}

func TestDeleteUserCascades(t *testing.T) {
	openTestDB(t)

	alice := makeUser(t, "alice")
	bob := makeUser(t, "bob")
	proposed := makeActivity(t, "Atelier de cuisine", alice.ID, nil, bob)
	other := makeActivity(t, "Sortie au musée", bob.ID, nil, alice)

	if err := DeleteUser(alice.ID); err != nil {
		t.Fatalf("DeleteUser: %v", err)
	}

	var count int64
	DB.Model(&models.Activity{}).Where("id = ?", proposed.ID).Count(&count)
	if count != 0 {
		t.Error("proposed activity should go with its proposer")
	}
	DB.Model(&models.Activity{}).Where("id = ?", other.ID).Count(&count)
	if count != 1 {
		t.Error("someone else's activity must survive")
	}
	if got := attendeeRowCount(t); got != 0 {
		t.Errorf("attendee rows after delete = %d, want 0", got)
	}
	DB.Model(&models.User{}).Where("id = ?", bob.ID).Count(&count)
	if count != 1 {
		t.Error("other account must survive")
	}
}

func TestAttendeeRoundTrip(t *testing.T) {
	openTestDB(t)

	alice := makeUser(t, "alice")
	bob := makeUser(t, "bob")
	activity := makeActivity(t, "Cours de photographie", alice.ID, nil)

	enroll := func() {
		if err := DB.Model(&activity).Association("Attendees").Append(&bob); err != nil {
			t.Fatalf("enroll: %v", err)
		}
	}

	enroll()
	enroll() // enrolling twice must not duplicate the row
	if got := attendeeRowCount(t); got != 1 {
		t.Fatalf("attendee rows after enroll = %d, want 1", got)
	}

	var reloaded models.Activity
	if err := DB.Preload("Attendees").First(&reloaded, activity.ID).Error; err != nil {
		t.Fatalf("reload: %v", err)
	}
	if !reloaded.HasAttendee(bob.ID) {
		t.Error("enrolled account missing from attendee set")
	}

	if err := DB.Model(&activity).Association("Attendees").Delete(&bob); err != nil {
		t.Fatalf("withdraw: %v", err)
	}
	if got := attendeeRowCount(t); got != 0 {
		t.Errorf("attendee rows after withdraw = %d, want 0", got)
	}
}

func TestDuplicateUsernameRejected(t *testing.T) {
	openTestDB(t)

	makeUser(t, "alice")

	dup := models.User{Username: "alice", Password: "x", IsActive: true}
	if err := DB.Create(&dup).Error; err == nil {
		t.Fatal("duplicate username accepted")
	}

	var count int64
	DB.Model(&models.User{}).Where("username = ?", "alice").Count(&count)
	if count != 1 {
		t.Errorf("accounts named alice = %d, want 1", count)
	}
}
