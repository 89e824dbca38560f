package handlers

import (
	"context"
	"errors"
	"log"
	"strings"
	"time"

	"skillexchange-service/internal/middleware"
	"skillexchange-service/internal/models"
	"skillexchange-service/internal/services"

	"github.com/gofiber/fiber/v3"
	"go.mongodb.org/mongo-driver/v2/bson"
)

type ProfileHandler struct {
	profileService *services.ProfileService
}

func NewProfileHandler(profileService *services.ProfileService) *ProfileHandler {
	return &ProfileHandler{
		profileService: profileService,
	}
}

func (h *ProfileHandler) RegisterRoutes(app *fiber.App) {
	// All profile routes act on the authenticated user's own profile
	protectedGroup := app.Group("/api/profile", middleware.RequireAuth)

	protectedGroup.Post("/", h.CreateProfile)
	protectedGroup.Get("/", h.GetMyProfile)
	protectedGroup.Put("/", h.UpdateProfile)
	protectedGroup.Delete("/", h.DeleteProfile)
	protectedGroup.Get("/completion", h.GetCompletion)

	protectedGroup.Post("/skills", h.AddSkill)
	protectedGroup.Put("/skills/:skillId", h.UpdateSkill)
	protectedGroup.Delete("/skills/:skillId", h.RemoveSkill)
}

func (h *ProfileHandler) CreateProfile(c fiber.Ctx) error {
	var req models.CreateProfileRequest
	if err := c.Bind().Body(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	profile, err := h.profileService.CreateProfile(ctx, middleware.UserID(c), &req)
	if err != nil {
		var verr *models.ValidationError
		if errors.As(err, &verr) {
			return validationResponse(c, verr)
		}

		if strings.Contains(err.Error(), "already exists") {
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{
				"error": err.Error(),
			})
		}

		log.Printf("Failed to create profile: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to create profile",
		})
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "Profile created successfully",
		"data": fiber.Map{
			"profile": profile,
		},
	})
}

func (h *ProfileHandler) GetMyProfile(c fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	profile, err := h.profileService.GetProfileByUserID(ctx, middleware.UserID(c))
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "Profile not found",
			})
		}

		log.Printf("Failed to get profile: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to retrieve profile",
		})
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"data": fiber.Map{
			"profile": profile,
		},
	})
}

func (h *ProfileHandler) UpdateProfile(c fiber.Ctx) error {
	var req models.UpdateProfileRequest
	if err := c.Bind().Body(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	profile, err := h.profileService.UpdateProfile(ctx, middleware.UserID(c), &req)
	if err != nil {
		var verr *models.ValidationError
		if errors.As(err, &verr) {
			return validationResponse(c, verr)
		}

		if errors.Is(err, models.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "Profile not found",
			})
		}

		log.Printf("Failed to update profile: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to update profile",
		})
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"message": "Profile updated successfully",
		"data": fiber.Map{
			"profile": profile,
		},
	})
}

func (h *ProfileHandler) DeleteProfile(c fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := h.profileService.DeleteProfile(ctx, middleware.UserID(c)); err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "Profile not found",
			})
		}

		log.Printf("Failed to delete profile: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to delete profile",
		})
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"message": "Profile deleted successfully",
	})
}

func (h *ProfileHandler) GetCompletion(c fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	completion, err := h.profileService.GetCompletion(ctx, middleware.UserID(c))
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "Profile not found",
			})
		}

		log.Printf("Failed to get profile completion: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to retrieve profile completion",
		})
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"data": completion,
	})
}

func (h *ProfileHandler) AddSkill(c fiber.Ctx) error {
	var req models.UserSkillRequest
	if err := c.Bind().Body(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	profile, err := h.profileService.AddSkill(ctx, middleware.UserID(c), &req)
	if err != nil {
		var verr *models.ValidationError
		if errors.As(err, &verr) {
			return validationResponse(c, verr)
		}

		if errors.Is(err, models.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "Profile not found",
			})
		}

		if strings.Contains(err.Error(), "already declared") {
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{
				"error": err.Error(),
			})
		}

		log.Printf("Failed to add skill: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to add skill",
		})
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "Skill added successfully",
		"data": fiber.Map{
			"profile": profile,
		},
	})
}

func (h *ProfileHandler) UpdateSkill(c fiber.Ctx) error {
	skillID, err := bson.ObjectIDFromHex(c.Params("skillId"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid skill ID format",
		})
	}

	var req models.UserSkillRequest
	if err := c.Bind().Body(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	profile, err := h.profileService.UpdateSkill(ctx, middleware.UserID(c), skillID, &req)
	if err != nil {
		var verr *models.ValidationError
		if errors.As(err, &verr) {
			return validationResponse(c, verr)
		}

		if errors.Is(err, models.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "Profile or skill not found",
			})
		}

		log.Printf("Failed to update skill: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to update skill",
		})
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"message": "Skill updated successfully",
		"data": fiber.Map{
			"profile": profile,
		},
	})
}

func (h *ProfileHandler) RemoveSkill(c fiber.Ctx) error {
	skillID, err := bson.ObjectIDFromHex(c.Params("skillId"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid skill ID format",
		})
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	profile, err := h.profileService.RemoveSkill(ctx, middleware.UserID(c), skillID)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "Profile or skill not found",
			})
		}

		log.Printf("Failed to remove skill: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to remove skill",
		})
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"message": "Skill removed successfully",
		"data": fiber.Map{
			"profile": profile,
		},
	})
}
