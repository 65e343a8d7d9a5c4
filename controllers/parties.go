package controllers

import (
	"tutorlink_go/database"
	"tutorlink_go/models"
	"tutorlink_go/services"
	"tutorlink_go/utils"

	"github.com/gofiber/fiber/v2"
)

// ListTeachers returns teacher profiles with their accrual counters.
func ListTeachers(c *fiber.Ctx) error {
	q := database.DB.Model(&models.Teacher{}).Order("id ASC")
	if c.QueryBool("active") {
		q = q.Where("active = ?", true)
	}

	var teachers []models.Teacher
	if err := q.Find(&teachers).Error; err != nil {
		return serviceError(c, err)
	}

	dtos := make([]utils.TeacherShort, 0, len(teachers))
	for _, t := range teachers {
		dtos = append(dtos, utils.ToTeacherShort(t))
	}

	return c.JSON(fiber.Map{
		"success":  true,
		"teachers": dtos,
		"count":    len(dtos),
	})
}

// GetTeacher returns one teacher profile.
func GetTeacher(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}

	var teacher models.Teacher
	if err := database.DB.First(&teacher, id).Error; err != nil {
		return serviceError(c, &services.NotFoundError{Entity: "teacher", ID: id})
	}

	return c.JSON(fiber.Map{
		"success": true,
		"teacher": utils.ToTeacherShort(teacher),
	})
}

// ListStudents returns student profiles with their credit balances.
func ListStudents(c *fiber.Ctx) error {
	q := database.DB.Model(&models.Student{}).Order("id ASC")
	if c.QueryBool("active") {
		q = q.Where("active = ?", true)
	}

	var students []models.Student
	if err := q.Find(&students).Error; err != nil {
		return serviceError(c, err)
	}

	dtos := make([]utils.StudentShort, 0, len(students))
	for _, s := range students {
		dtos = append(dtos, utils.ToStudentShort(s))
	}

	return c.JSON(fiber.Map{
		"success":  true,
		"students": dtos,
		"count":    len(dtos),
	})
}

// GetStudent returns one student profile.
func GetStudent(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}

	var student models.Student
	if err := database.DB.First(&student, id).Error; err != nil {
		return serviceError(c, &services.NotFoundError{Entity: "student", ID: id})
	}

	return c.JSON(fiber.Map{
		"success": true,
		"student": utils.ToStudentShort(student),
	})
}

// AddStudentCredits tops up a student's prepaid class balance. Admin only.
func AddStudentCredits(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}

	var req struct {
		Classes int `json:"classes" validate:"required,gt=0,max=1000"`
	}
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		return validationFailed(c, errs)
	}

	var student models.Student
	if err := database.DB.First(&student, id).Error; err != nil {
		return serviceError(c, &services.NotFoundError{Entity: "student", ID: id})
	}

	student.NoOfClasses += req.Classes
	student.Active = true
	if err := database.DB.Save(&student).Error; err != nil {
		return serviceError(c, err)
	}

	return c.JSON(fiber.Map{
		"success": true,
		"message": "Credits added",
		"student": utils.ToStudentShort(student),
	})
}
