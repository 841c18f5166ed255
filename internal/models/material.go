package models

import "time"

// Material is a learning resource. view_count only ever grows; it is
// incremented on every public single-item fetch.
type Material struct {
	ID            string    `db:"id" json:"id"`
	Title         string    `db:"title" json:"title"`
	Description   *string   `db:"description" json:"description,omitempty"`
	Subject       string    `db:"subject" json:"subject"`
	GradeLevel    string    `db:"grade_level" json:"grade_level"`
	MaterialType  string    `db:"material_type" json:"material_type"`
	FileURL       *string   `db:"file_url" json:"file_url,omitempty"`
	ExternalLink  *string   `db:"external_link" json:"external_link,omitempty"`
	FileSize      *string   `db:"file_size" json:"file_size,omitempty"`
	FileFormat    *string   `db:"file_format" json:"file_format,omitempty"`
	Author        *string   `db:"author" json:"author,omitempty"`
	Publisher     *string   `db:"publisher" json:"publisher,omitempty"`
	IsPublic      bool      `db:"is_public" json:"is_public"`
	DownloadCount int       `db:"download_count" json:"download_count"`
	ViewCount     int       `db:"view_count" json:"view_count"`
	UploadedBy    *string   `db:"uploaded_by" json:"uploaded_by,omitempty"`
	CreatedAt     time.Time `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time `db:"updated_at" json:"updated_at"`
}

// MaterialFilter captures listing criteria for materials.
type MaterialFilter struct {
	Subject    string
	GradeLevel string
	Type       string
	Search     string
	PublicOnly bool
	Page       int
	PerPage    int
}

// MaterialFilterOptions lists the distinct values usable as filters.
type MaterialFilterOptions struct {
	Subjects    []string `json:"subjects"`
	GradeLevels []string `json:"grade_levels"`
	Types       []string `json:"types"`
}

// CreateMaterialRequest is the admin payload for publishing a resource.
type CreateMaterialRequest struct {
	Title        string `json:"title" validate:"required"`
	Description  string `json:"description"`
	Subject      string `json:"subject" validate:"required"`
	GradeLevel   string `json:"grade_level" validate:"required"`
	MaterialType string `json:"material_type" validate:"required"`
	FileURL      string `json:"file_url"`
	ExternalLink string `json:"external_link"`
	FileSize     string `json:"file_size"`
	FileFormat   string `json:"file_format"`
	Author       string `json:"author"`
	Publisher    string `json:"publisher"`
	IsPublic     *bool  `json:"is_public"`
}

// UpdateMaterialRequest patches only the fields present in the payload.
type UpdateMaterialRequest struct {
	Title        *string `json:"title"`
	Description  *string `json:"description"`
	Subject      *string `json:"subject"`
	GradeLevel   *string `json:"grade_level"`
	MaterialType *string `json:"material_type"`
	FileURL      *string `json:"file_url"`
	ExternalLink *string `json:"external_link"`
	FileSize     *string `json:"file_size"`
	FileFormat   *string `json:"file_format"`
	Author       *string `json:"author"`
	Publisher    *string `json:"publisher"`
	IsPublic     *bool   `json:"is_public"`
}
