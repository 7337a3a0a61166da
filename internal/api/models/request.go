package models

import "github.com/rpgo/portfolio-survival/internal/domain"

// SimulateRequest is the body of POST /api/v1/simulate.
type SimulateRequest struct {
	Config *domain.Configuration `json:"config" binding:"required"`
}

// CompareRequest is the body of POST /api/v1/compare
type CompareRequest struct {
	Plans []*domain.Configuration `json:"plans" binding:"required,min=1"`
}
