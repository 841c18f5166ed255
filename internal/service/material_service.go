package service

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/school-portal-api/internal/models"
	appErrors "github.com/noah-isme/school-portal-api/pkg/errors"
)

// MaterialRepository is the resource store used by the material service.
type MaterialRepository interface {
	List(ctx context.Context, filter models.MaterialFilter) ([]models.Material, int, error)
	FindByID(ctx context.Context, id string) (*models.Material, error)
	FindPublicByID(ctx context.Context, id string) (*models.Material, error)
	IncrementViewCount(ctx context.Context, id string) error
	FilterOptions(ctx context.Context, publicOnly bool) (*models.MaterialFilterOptions, error)
	Create(ctx context.Context, material *models.Material) error
	Update(ctx context.Context, material *models.Material) error
	Delete(ctx context.Context, id string) error
}

// MaterialService manages the learning resource catalog.
type MaterialService struct {
	repo      MaterialRepository
	validator *validator.Validate
	logger    *zap.Logger
}

// NewMaterialService constructs a MaterialService.
func NewMaterialService(repo MaterialRepository, v *validator.Validate, logger *zap.Logger) *MaterialService {
	if v == nil {
		v = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &MaterialService{repo: repo, validator: v, logger: logger}
}

// List returns materials matching the filter. Public callers set
// PublicOnly on the filter.
func (s *MaterialService) List(ctx context.Context, filter models.MaterialFilter) ([]models.Material, *models.Pagination, error) {
	materials, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list materials")
	}
	return materials, models.NewPagination(total, filter.Page, filter.PerPage), nil
}

// Get fetches one material by ID for admin views.
func (s *MaterialService) Get(ctx context.Context, id string) (*models.Material, error) {
	material, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "material not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fetch material")
	}
	return material, nil
}

// GetPublic fetches a public material and counts the view. The returned
// record carries the incremented count.
func (s *MaterialService) GetPublic(ctx context.Context, id string) (*models.Material, error) {
	material, err := s.repo.FindPublicByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "material not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fetch material")
	}
	if err := s.repo.IncrementViewCount(ctx, id); err != nil {
		s.logger.Warn("failed to count material view", zap.String("id", id), zap.Error(err))
	} else {
		material.ViewCount++
	}
	return material, nil
}

// FilterOptions lists distinct subjects, grades and types for filters.
func (s *MaterialService) FilterOptions(ctx context.Context, publicOnly bool) (*models.MaterialFilterOptions, error) {
	options, err := s.repo.FilterOptions(ctx, publicOnly)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load filter options")
	}
	return options, nil
}

// Create publishes a resource. Materials default to public.
func (s *MaterialService) Create(ctx context.Context, uploaderID string, req models.CreateMaterialRequest) (*models.Material, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid material payload")
	}
	isPublic := true
	if req.IsPublic != nil {
		isPublic = *req.IsPublic
	}

	material := &models.Material{
		Title:        strings.TrimSpace(req.Title),
		Description:  optional(req.Description),
		Subject:      strings.TrimSpace(req.Subject),
		GradeLevel:   strings.TrimSpace(req.GradeLevel),
		MaterialType: strings.TrimSpace(req.MaterialType),
		FileURL:      optional(req.FileURL),
		ExternalLink: optional(req.ExternalLink),
		FileSize:     optional(req.FileSize),
		FileFormat:   optional(req.FileFormat),
		Author:       optional(req.Author),
		Publisher:    optional(req.Publisher),
		IsPublic:     isPublic,
		UploadedBy:   optional(uploaderID),
	}
	if err := s.repo.Create(ctx, material); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create material")
	}
	s.logger.Info("material created", zap.String("id", material.ID), zap.String("title", material.Title))
	return material, nil
}

// Update patches the fields present in the payload.
func (s *MaterialService) Update(ctx context.Context, id string, req models.UpdateMaterialRequest) (*models.Material, error) {
	material, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Title != nil {
		material.Title = strings.TrimSpace(*req.Title)
	}
	if req.Description != nil {
		material.Description = optional(*req.Description)
	}
	if req.Subject != nil {
		material.Subject = strings.TrimSpace(*req.Subject)
	}
	if req.GradeLevel != nil {
		material.GradeLevel = strings.TrimSpace(*req.GradeLevel)
	}
	if req.MaterialType != nil {
		material.MaterialType = strings.TrimSpace(*req.MaterialType)
	}
	if req.FileURL != nil {
		material.FileURL = optional(*req.FileURL)
	}
	if req.ExternalLink != nil {
		material.ExternalLink = optional(*req.ExternalLink)
	}
	if req.FileSize != nil {
		material.FileSize = optional(*req.FileSize)
	}
	if req.FileFormat != nil {
		material.FileFormat = optional(*req.FileFormat)
	}
	if req.Author != nil {
		material.Author = optional(*req.Author)
	}
	if req.Publisher != nil {
		material.Publisher = optional(*req.Publisher)
	}
	if req.IsPublic != nil {
		material.IsPublic = *req.IsPublic
	}

	if err := s.repo.Update(ctx, material); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update material")
	}
	return material, nil
}

// Delete removes a material.
func (s *MaterialService) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "material not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete material")
	}
	s.logger.Info("material deleted", zap.String("id", id))
	return nil
}
