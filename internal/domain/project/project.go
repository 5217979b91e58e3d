// Package project holds the ownership view of projects that channels belong to.
package project

import (
	"context"
	"time"
)

// Project groups channels under one owner.
type Project struct {
	ID        uint
	OwnerID   string
	Name      string
	CreatedAt time.Time
}

// IsOwnedBy reports whether userID owns the project.
func (p *Project) IsOwnedBy(userID string) bool {
	return p != nil && p.OwnerID != "" && p.OwnerID == userID
}

type Repository interface {
	// GetOwned returns the project when userID owns it. A missing project and
	// a project owned by someone else both yield a not-found AppError.
	GetOwned(ctx context.Context, projectID uint, userID string) (*Project, error)
	Create(ctx context.Context, p *Project) error
}
