package seeders

import (
	"log"

	"tutorlink_go/database"
	"tutorlink_go/models"
	"tutorlink_go/utils"
)

// SeedAll runs all seeders
func SeedAll() {
	log.Println("Starting database seeding...")

	SeedUsers()
	SeedTeachers()
	SeedStudents()

	log.Println("Database seeding completed successfully!")
}

// SeedUsers seeds the default admin plus demo teacher/student accounts.
func SeedUsers() {
	var count int64
	database.DB.Model(&models.User{}).Count(&count)
	if count > 0 {
		log.Println("Users already seeded, skipping...")
		return
	}

	adminPassword, err := utils.HashPassword("admin123")
	if err != nil {
		log.Printf("Failed to hash admin password: %v", err)
		return
	}
	demoPassword, err := utils.HashPassword("demo1234")
	if err != nil {
		log.Printf("Failed to hash demo password: %v", err)
		return
	}

	users := []models.User{
		{
			BaseModel: models.BaseModel{ID: 1},
			Username:  "admin",
			Password:  adminPassword,
			Email:     "admin@tutorlink.local",
			Role:      "admin",
			Status:    "active",
		},
		{
			BaseModel: models.BaseModel{ID: 2},
			Username:  "teacher.demo",
			Password:  demoPassword,
			Email:     "teacher.demo@tutorlink.local",
			Role:      "teacher",
			Status:    "active",
		},
		{
			BaseModel: models.BaseModel{ID: 3},
			Username:  "student.demo",
			Password:  demoPassword,
			Email:     "student.demo@tutorlink.local",
			Role:      "student",
			Status:    "active",
		},
	}

	if err := database.DB.Create(&users).Error; err != nil {
		log.Printf("Failed to seed users: %v", err)
		return
	}
	log.Printf("Seeded %d users", len(users))
}

// SeedTeachers seeds the demo teacher profile.
func SeedTeachers() {
	var count int64
	database.DB.Model(&models.Teacher{}).Count(&count)
	if count > 0 {
		log.Println("Teachers already seeded, skipping...")
		return
	}

	teachers := []models.Teacher{
		{
			BaseModel:    models.BaseModel{ID: 1},
			UserID:       2,
			FirstName:    "Daniel",
			LastName:     "Ferreira",
			Nickname:     "Dan",
			Subjects:     "English, Conversation",
			RatePerClass: 350,
			Active:       true,
		},
	}

	if err := database.DB.Create(&teachers).Error; err != nil {
		log.Printf("Failed to seed teachers: %v", err)
		return
	}
	log.Printf("Seeded %d teachers", len(teachers))
}

// SeedStudents seeds the demo student profile with a starter credit balance.
func SeedStudents() {
	var count int64
	database.DB.Model(&models.Student{}).Count(&count)
	if count > 0 {
		log.Println("Students already seeded, skipping...")
		return
	}

	students := []models.Student{
		{
			BaseModel:   models.BaseModel{ID: 1},
			UserID:      3,
			FirstName:   "Mali",
			LastName:    "Srisuk",
			Nickname:    "Mali",
			GradeLevel:  "M3",
			NoOfClasses: 10,
			Active:      true,
		},
	}

	if err := database.DB.Create(&students).Error; err != nil {
		log.Printf("Failed to seed students: %v", err)
		return
	}
	log.Printf("Seeded %d students", len(students))
}
