package handlers

import (
	"context"
	"errors"
	"log"
	"strconv"
	"strings"
	"time"

	"skillexchange-service/internal/middleware"
	"skillexchange-service/internal/models"
	"skillexchange-service/internal/services"

	"github.com/gofiber/fiber/v3"
	"go.mongodb.org/mongo-driver/v2/bson"
)

type SkillHandler struct {
	skillService  *services.SkillService
	searchService *services.SearchService
}

func NewSkillHandler(skillService *services.SkillService, searchService *services.SearchService) *SkillHandler {
	return &SkillHandler{
		skillService:  skillService,
		searchService: searchService,
	}
}

func (h *SkillHandler) RegisterRoutes(app *fiber.App) {
	// Public discovery routes - no authentication required
	publicGroup := app.Group("/api/skills")
	publicGroup.Get("/search", h.Search)
	publicGroup.Get("/trending", h.GetTrendingSkills)
	publicGroup.Get("/categories", h.GetCategories)
	publicGroup.Get("/suggestions", h.GetSuggestions)
	publicGroup.Get("/popular-searches", h.GetPopularSearches)
	publicGroup.Get("/:skillId", h.GetSkill)

	// Catalog management - admin permissions required
	adminGroup := app.Group("/api/admin/skills")
	adminGroup.Post("/", h.CreateSkill, middleware.PermissionRequired(middleware.WriteSkillPermission))
	adminGroup.Put("/:skillId", h.UpdateSkill, middleware.PermissionRequired(middleware.UpdateSkillPermission))
	adminGroup.Delete("/:skillId", h.DeleteSkill, middleware.PermissionRequired(middleware.DeleteSkillPermission))
	adminGroup.Post("/reload-data", h.ReloadSkillData, middleware.PermissionRequired(middleware.AdminSkillPermission))
	adminGroup.Post("/recompute-stats", h.RecomputeStats, middleware.PermissionRequired(middleware.AdminSkillPermission))

	// Health check
	app.Get("/health", h.HealthCheck)
}

func parseSearchQuery(c fiber.Ctx) *models.SearchQuery {
	return buildSearchQuery(func(key string) string {
		return c.Query(key)
	})
}

// buildSearchQuery maps URL parameters onto a SearchQuery. Some parameters
// have two accepted names; the first non-empty one wins.
func buildSearchQuery(get func(key string) string) *models.SearchQuery {
	pick := func(names ...string) string {
		for _, name := range names {
			if value := get(name); value != "" {
				return value
			}
		}
		return ""
	}

	q := &models.SearchQuery{
		Text:     pick("query", "q"),
		Category: models.SkillCategory(get("category")),
		Type:     models.SearchType(get("type")),
		Location: get("location"),
		SortBy:   models.SortMode(get("sortBy")),
	}

	if levelsStr := pick("level", "levels"); levelsStr != "" {
		for _, level := range strings.Split(levelsStr, ",") {
			if level = strings.TrimSpace(level); level != "" {
				q.Levels = append(q.Levels, models.SkillLevel(level))
			}
		}
	}

	q.MinRating, _ = strconv.ParseFloat(pick("rating", "minRating"), 64)
	q.Page, _ = strconv.Atoi(get("page"))
	q.Limit, _ = strconv.Atoi(get("limit"))

	return q
}

// validationResponse renders field-level validation errors as a 400.
func validationResponse(c fiber.Ctx, verr *models.ValidationError) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
		"error":  "Validation failed",
		"fields": verr.Fields,
	})
}

func (h *SkillHandler) Search(c fiber.Ctx) error {
	query := parseSearchQuery(c)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	result, err := h.searchService.Search(ctx, query)
	if err != nil {
		var verr *models.ValidationError
		if errors.As(err, &verr) {
			return validationResponse(c, verr)
		}

		log.Printf("Failed to search skills: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to search skills",
		})
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"data": result,
	})
}

func (h *SkillHandler) GetTrendingSkills(c fiber.Ctx) error {
	limit, _ := strconv.Atoi(c.Query("limit", "10"))
	if limit < 1 || limit > 100 {
		limit = 10
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	skills, err := h.skillService.GetTrendingSkills(ctx, limit)
	if err != nil {
		log.Printf("Failed to get trending skills: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to retrieve trending skills",
		})
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"data": fiber.Map{
			"skills": skills,
			"count":  len(skills),
		},
	})
}

func (h *SkillHandler) GetCategories(c fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	categories, err := h.skillService.GetCategories(ctx)
	if err != nil {
		log.Printf("Failed to get categories: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to retrieve categories",
		})
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"data": fiber.Map{
			"categories": categories,
		},
	})
}

func (h *SkillHandler) GetSuggestions(c fiber.Ctx) error {
	query := c.Query("q")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	suggestions, err := h.skillService.GetSuggestions(ctx, query)
	if err != nil {
		var verr *models.ValidationError
		if errors.As(err, &verr) {
			return validationResponse(c, verr)
		}

		log.Printf("Failed to get suggestions for %q: %v", query, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to retrieve suggestions",
		})
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"data": fiber.Map{
			"suggestions": suggestions,
		},
	})
}

func (h *SkillHandler) GetPopularSearches(c fiber.Ctx) error {
	limit, _ := strconv.Atoi(c.Query("limit", "10"))
	if limit < 1 || limit > 100 {
		limit = 10
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	searches, err := h.skillService.GetPopularSearches(ctx, limit)
	if err != nil {
		log.Printf("Failed to get popular searches: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to retrieve popular searches",
		})
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"data": fiber.Map{
			"searches": searches,
		},
	})
}

func (h *SkillHandler) GetSkill(c fiber.Ctx) error {
	skillID := c.Params("skillId")
	objectID, err := bson.ObjectIDFromHex(skillID)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid skill ID format",
		})
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	skill, err := h.skillService.GetSkillByID(ctx, objectID)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "Skill not found",
			})
		}

		log.Printf("Failed to get skill %s: %v", skillID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to retrieve skill",
		})
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"data": fiber.Map{
			"skill": skill,
		},
	})
}

func (h *SkillHandler) CreateSkill(c fiber.Ctx) error {
	var skill models.Skill

	if err := c.Bind().Body(&skill); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	createdSkill, err := h.skillService.CreateSkill(ctx, &skill)
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

		log.Printf("Failed to create skill: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to create skill",
		})
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "Skill created successfully",
		"data": fiber.Map{
			"skill": createdSkill,
		},
	})
}

func (h *SkillHandler) UpdateSkill(c fiber.Ctx) error {
	skillID := c.Params("skillId")
	objectID, err := bson.ObjectIDFromHex(skillID)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid skill ID format",
		})
	}

	var skill models.Skill
	if err := c.Bind().Body(&skill); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	updatedSkill, err := h.skillService.UpdateSkill(ctx, objectID, &skill)
	if err != nil {
		var verr *models.ValidationError
		if errors.As(err, &verr) {
			return validationResponse(c, verr)
		}

		if errors.Is(err, models.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "Skill not found",
			})
		}

		if strings.Contains(err.Error(), "already exists") {
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{
				"error": err.Error(),
			})
		}

		log.Printf("Failed to update skill %s: %v", skillID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to update skill",
		})
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"message": "Skill updated successfully",
		"data": fiber.Map{
			"skill": updatedSkill,
		},
	})
}

func (h *SkillHandler) DeleteSkill(c fiber.Ctx) error {
	skillID := c.Params("skillId")
	objectID, err := bson.ObjectIDFromHex(skillID)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid skill ID format",
		})
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := h.skillService.DeleteSkill(ctx, objectID); err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "Skill not found",
			})
		}

		log.Printf("Failed to delete skill %s: %v", skillID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to delete skill",
		})
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"message": "Skill deleted successfully",
	})
}

func (h *SkillHandler) ReloadSkillData(c fiber.Ctx) error {
	dataDir := c.Query("dataDir", "/data")

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	if err := h.skillService.ReloadDataFromFiles(ctx, dataDir); err != nil {
		log.Printf("Failed to reload skill data: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to reload skill data",
		})
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"message": "Skill data reloaded successfully",
		"dataDir": dataDir,
	})
}

// RecomputeStats rebuilds one skill's declaration statistics synchronously,
// or every catalog skill's when no name is given.
func (h *SkillHandler) RecomputeStats(c fiber.Ctx) error {
	skillName := c.Query("skill")

	if skillName != "" {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
		defer cancel()

		stats, err := h.skillService.RecomputeSkillStats(ctx, skillName)
		if err != nil {
			if errors.Is(err, models.ErrNotFound) {
				return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
					"error": "Skill not found",
				})
			}

			log.Printf("Failed to recompute stats for %q: %v", skillName, err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "Failed to recompute skill statistics",
			})
		}

		return c.Status(fiber.StatusOK).JSON(fiber.Map{
			"message": "Skill statistics recomputed",
			"data": fiber.Map{
				"skill": skillName,
				"stats": stats,
			},
		})
	}

	h.skillService.RecomputeAllStatsAsync()
	return c.Status(fiber.StatusAccepted).JSON(fiber.Map{
		"message": "Statistics recomputation started",
	})
}

func (h *SkillHandler) HealthCheck(c fiber.Ctx) error {
	return c.Status(fiber.StatusOK).SendString("SkillExchange Service is healthy")
}
