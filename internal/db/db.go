package db

import (
	"log"
	"os"

	"agora/internal/models"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var DB *gorm.DB

func Init() {
	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		// Fallback for local dev if not set
		dsn = "host=localhost user=postgres password=postgres dbname=agora port=5432 sslmode=disable TimeZone=Europe/Paris"
	}

	var err error
	DB, err = gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	log.Println("Database connection established")

	err = DB.AutoMigrate(
		&models.User{},
		&models.Category{},
		&models.Activity{},
	)
	if err != nil {
		log.Fatalf("Failed to migrate database: %v", err)
	}
	log.Println("Database migration completed")

	seedCategories()
}

func seedCategories() {
	var count int64
	DB.Model(&models.Category{}).Count(&count)
	if count > 0 {
		log.Println("Categories already seeded, skipping")
		return
	}

	categories := []models.Category{
		{Name: "Sport"},
		{Name: "Culture"},
		{Name: "Nature"},
		{Name: "Jeux"},
	}

	for _, category := range categories {
		if err := DB.Create(&category).Error; err != nil {
			log.Printf("Failed to create category %s: %v", category.Name, err)
		}
	}
	log.Println("Initial categories created successfully")
}

// DeleteCategory removes a category after clearing category_id on every
// activity that references it. Activities themselves are kept.
func DeleteCategory(id uint) error {
	return DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.Activity{}).
			Where("category_id = ?", id).
			Update("category_id", nil).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Category{}, id).Error
	})
}

// DeleteActivity removes an activity together with its attendee join rows.
func DeleteActivity(id uint) error {
	return DB.Transaction(func(tx *gorm.DB) error {
		activity := models.Activity{ID: id}
		if err := tx.Model(&activity).Association("Attendees").Clear(); err != nil {
			return err
		}
		return tx.Delete(&activity).Error
	})
}

// DeleteUser removes an account, every activity it proposed (with their
// attendee rows) and its own attendance rows.
func DeleteUser(id uint) error {
	return DB.Transaction(func(tx *gorm.DB) error {
		var proposed []models.Activity
		if err := tx.Where("proposer_id = ?", id).Find(&proposed).Error; err != nil {
			return err
		}
		for i := range proposed {
			if err := tx.Model(&proposed[i]).Association("Attendees").Clear(); err != nil {
				return err
			}
		}
		if err := tx.Where("proposer_id = ?", id).Delete(&models.Activity{}).Error; err != nil {
			return err
		}
		if err := tx.Exec("DELETE FROM activity_attendees WHERE user_id = ?", id).Error; err != nil {
			return err
		}
		return tx.Delete(&models.User{}, id).Error
	})
}
