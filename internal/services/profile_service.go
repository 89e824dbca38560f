package services

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"skillexchange-service/internal/event"
	"skillexchange-service/internal/models"
	"skillexchange-service/internal/repository"

	"go.mongodb.org/mongo-driver/v2/bson"
)

type ProfileService struct {
	profileRepo *repository.ProfileRepository
	publisher   event.Publisher
}

func NewProfileService(profileRepo *repository.ProfileRepository, publisher event.Publisher) *ProfileService {
	return &ProfileService{
		profileRepo: profileRepo,
		publisher:   publisher,
	}
}

func validateCreateRequest(req *models.CreateProfileRequest) error {
	verr := &models.ValidationError{}

	if strings.TrimSpace(req.Email) == "" {
		verr.Add("email", "is required")
	} else if !strings.Contains(req.Email, "@") || !strings.Contains(req.Email, ".") {
		verr.Add("email", "invalid format")
	}
	if strings.TrimSpace(req.Name) == "" {
		verr.Add("name", "is required")
	}
	for _, mt := range req.Preferences.MeetingTypes {
		if !mt.IsValid() {
			verr.Add("preferences.meetingTypes", fmt.Sprintf("unknown meeting type %q", mt))
		}
	}

	if verr.HasErrors() {
		return verr
	}
	return nil
}

func validateUserSkillRequest(req *models.UserSkillRequest) error {
	verr := &models.ValidationError{}

	if strings.TrimSpace(req.Name) == "" {
		verr.Add("name", "is required")
	}
	if !req.Category.IsValid() {
		verr.Add("category", fmt.Sprintf("unknown category %q", req.Category))
	}
	if !req.Level.IsValid() {
		verr.Add("level", fmt.Sprintf("unknown level %q", req.Level))
	}
	if req.YearsOfExperience < 0 || req.YearsOfExperience > 50 {
		verr.Add("yearsOfExperience", "must be between 0 and 50")
	}

	if verr.HasErrors() {
		return verr
	}
	return nil
}

// CreateProfile creates a profile for the authenticated user. Completion is
// derived before the first write so the stored document is never missing it.
func (s *ProfileService) CreateProfile(ctx context.Context, userID string, req *models.CreateProfileRequest) (*models.Profile, error) {
	if userID == "" {
		return nil, fmt.Errorf("user ID is required")
	}
	if err := validateCreateRequest(req); err != nil {
		return nil, err
	}

	if existing, err := s.profileRepo.FindByUserID(ctx, userID); err == nil && existing != nil {
		return nil, fmt.Errorf("profile already exists for user %s", userID)
	} else if err != nil && err != models.ErrNotFound {
		return nil, fmt.Errorf("failed to check existing profile: %w", err)
	}

	if existing, err := s.profileRepo.FindByEmail(ctx, req.Email); err == nil && existing != nil {
		return nil, fmt.Errorf("profile already exists for email %s", strings.ToLower(req.Email))
	} else if err != nil && err != models.ErrNotFound {
		return nil, fmt.Errorf("failed to check existing profile: %w", err)
	}

	profile := &models.Profile{
		UserID:      userID,
		Email:       strings.ToLower(req.Email),
		Name:        req.Name,
		Bio:         req.Bio,
		DateOfBirth: req.DateOfBirth,
		Location:    req.Location,
		Contact:     req.Contact,
		Avatar:      req.Avatar,
		Skills:      []models.UserSkill{},
		Preferences: req.Preferences,
	}
	profile.ApplyCompletion()

	created, err := s.profileRepo.Create(ctx, profile)
	if err != nil {
		return nil, fmt.Errorf("failed to create profile: %w", err)
	}

	s.publishProfileEvent(models.EventTypeProfileCreated, created, nil, "")

	return created, nil
}

func (s *ProfileService) GetProfileByUserID(ctx context.Context, userID string) (*models.Profile, error) {
	if userID == "" {
		return nil, fmt.Errorf("user ID is required")
	}
	return s.profileRepo.FindByUserID(ctx, userID)
}

// UpdateProfile applies a partial update and synchronously recomputes the
// completion flags before persisting.
func (s *ProfileService) UpdateProfile(ctx context.Context, userID string, req *models.UpdateProfileRequest) (*models.Profile, error) {
	profile, err := s.GetProfileByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}

	var changedFields []string

	if req.Name != nil && *req.Name != profile.Name {
		profile.Name = *req.Name
		changedFields = append(changedFields, "name")
	}
	if req.Bio != nil && *req.Bio != profile.Bio {
		profile.Bio = *req.Bio
		changedFields = append(changedFields, "bio")
	}
	if req.DateOfBirth != nil && *req.DateOfBirth != profile.DateOfBirth {
		profile.DateOfBirth = *req.DateOfBirth
		changedFields = append(changedFields, "dateOfBirth")
	}
	if req.Location != nil {
		profile.Location = *req.Location
		changedFields = append(changedFields, "location")
	}
	if req.Contact != nil {
		profile.Contact = *req.Contact
		changedFields = append(changedFields, "contact")
	}
	if req.Avatar != nil && *req.Avatar != profile.Avatar {
		profile.Avatar = *req.Avatar
		changedFields = append(changedFields, "avatar")
	}
	if req.Preferences != nil {
		for _, mt := range req.Preferences.MeetingTypes {
			if !mt.IsValid() {
				verr := &models.ValidationError{}
				verr.Add("preferences.meetingTypes", fmt.Sprintf("unknown meeting type %q", mt))
				return nil, verr
			}
		}
		profile.Preferences = *req.Preferences
		changedFields = append(changedFields, "preferences")
	}

	if len(changedFields) == 0 {
		return profile, nil
	}

	profile.ApplyCompletion()

	updated, err := s.profileRepo.Update(ctx, profile.ID, profile)
	if err != nil {
		return nil, err
	}

	s.publishProfileEvent(models.EventTypeProfileUpdated, updated, changedFields, "")

	return updated, nil
}

func (s *ProfileService) DeleteProfile(ctx context.Context, userID string) error {
	profile, err := s.GetProfileByUserID(ctx, userID)
	if err != nil {
		return err
	}

	if err := s.profileRepo.Delete(ctx, profile.ID); err != nil {
		return err
	}

	s.publishProfileEvent(models.EventTypeProfileDeleted, profile, nil, "")

	return nil
}

// AddSkill appends a skill declaration to the profile. The declaration gets
// a parent-scoped identifier; it has no existence outside its profile.
func (s *ProfileService) AddSkill(ctx context.Context, userID string, req *models.UserSkillRequest) (*models.Profile, error) {
	if err := validateUserSkillRequest(req); err != nil {
		return nil, err
	}

	profile, err := s.GetProfileByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}

	for _, existing := range profile.Skills {
		if strings.EqualFold(existing.Name, req.Name) {
			return nil, fmt.Errorf("skill %q already declared on this profile", req.Name)
		}
	}

	now := time.Now()
	profile.Skills = append(profile.Skills, models.UserSkill{
		SkillID:           bson.NewObjectID(),
		Name:              req.Name,
		Category:          req.Category,
		Level:             req.Level,
		Description:       req.Description,
		Tags:              req.Tags,
		YearsOfExperience: req.YearsOfExperience,
		Certifications:    req.Certifications,
		IsTeaching:        req.IsTeaching,
		IsLearning:        req.IsLearning,
		CreatedAt:         now,
		UpdatedAt:         now,
	})
	profile.ApplyCompletion()

	updated, err := s.profileRepo.Update(ctx, profile.ID, profile)
	if err != nil {
		return nil, err
	}

	s.publishProfileEvent(models.EventTypeSkillAdded, updated, []string{"skills"}, req.Name)

	return updated, nil
}

// UpdateSkill replaces one declaration, addressed by its parent-scoped ID.
func (s *ProfileService) UpdateSkill(ctx context.Context, userID string, skillID bson.ObjectID, req *models.UserSkillRequest) (*models.Profile, error) {
	if err := validateUserSkillRequest(req); err != nil {
		return nil, err
	}

	profile, err := s.GetProfileByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}

	index := -1
	for i, skill := range profile.Skills {
		if skill.SkillID == skillID {
			index = i
			break
		}
	}
	if index == -1 {
		return nil, models.ErrNotFound
	}

	existing := profile.Skills[index]
	profile.Skills[index] = models.UserSkill{
		SkillID:           existing.SkillID,
		Name:              req.Name,
		Category:          req.Category,
		Level:             req.Level,
		Description:       req.Description,
		Tags:              req.Tags,
		YearsOfExperience: req.YearsOfExperience,
		Certifications:    req.Certifications,
		IsTeaching:        req.IsTeaching,
		IsLearning:        req.IsLearning,
		CreatedAt:         existing.CreatedAt,
		UpdatedAt:         time.Now(),
	}
	profile.ApplyCompletion()

	updated, err := s.profileRepo.Update(ctx, profile.ID, profile)
	if err != nil {
		return nil, err
	}

	s.publishProfileEvent(models.EventTypeSkillUpdated, updated, []string{"skills"}, req.Name)

	return updated, nil
}

// RemoveSkill deletes one declaration by its parent-scoped ID.
func (s *ProfileService) RemoveSkill(ctx context.Context, userID string, skillID bson.ObjectID) (*models.Profile, error) {
	profile, err := s.GetProfileByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}

	index := -1
	for i, skill := range profile.Skills {
		if skill.SkillID == skillID {
			index = i
			break
		}
	}
	if index == -1 {
		return nil, models.ErrNotFound
	}

	removedName := profile.Skills[index].Name
	profile.Skills = append(profile.Skills[:index], profile.Skills[index+1:]...)
	profile.ApplyCompletion()

	updated, err := s.profileRepo.Update(ctx, profile.ID, profile)
	if err != nil {
		return nil, err
	}

	s.publishProfileEvent(models.EventTypeSkillRemoved, updated, []string{"skills"}, removedName)

	return updated, nil
}

// GetCompletion reports the derived completion state without mutating it.
func (s *ProfileService) GetCompletion(ctx context.Context, userID string) (*models.CompletionResponse, error) {
	profile, err := s.GetProfileByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}

	steps, completed, percentage := models.ComputeCompletion(profile)
	return &models.CompletionResponse{
		ProfileCompleted:     completed,
		CompletionSteps:      steps,
		CompletionPercentage: percentage,
	}, nil
}

func (s *ProfileService) publishProfileEvent(eventType models.EventType, profile *models.Profile, changedFields []string, skillName string) {
	if s.publisher == nil {
		return
	}

	profileEvent := &models.ProfileEvent{
		EventType:     eventType,
		ProfileID:     profile.ID.Hex(),
		UserID:        profile.UserID,
		Timestamp:     time.Now(),
		ChangedFields: changedFields,
		SkillName:     skillName,
	}

	if err := s.publisher.PublishProfileEvent(profileEvent); err != nil {
		log.Printf("Failed to publish %s event: %v", eventType, err)
	}
}
