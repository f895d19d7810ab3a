package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"rentcar-backoffice/internal/audit"
	auditdomain "rentcar-backoffice/internal/audit/domain"
	"rentcar-backoffice/internal/branch/domain"
	"rentcar-backoffice/internal/branch/repository"
)

var (
	ErrBranchNotFound  = errors.New("branch not found")
	ErrBranchNameTaken = errors.New("a branch with this name already exists")
)

// BranchService implements branch CRUD with soft deletes and audit stamping.
// Every mutation carries the acting user's id explicitly; the service never
// reads identity from ambient state.
type BranchService struct {
	repo  repository.Repository
	audit audit.Recorder
	nowF  func() time.Time
}

func NewBranchService(repo repository.Repository, auditor audit.Recorder) *BranchService {
	return &BranchService{
		repo:  repo,
		audit: auditor,
		nowF:  func() time.Time { return time.Now().UTC() },
	}
}

// CreateInput carries the caller-supplied fields for a new branch.
type CreateInput struct {
	Name    string
	Address domain.Address
}

// Create adds a branch. Names are unique among live branches.
func (s *BranchService) Create(ctx context.Context, in CreateInput, actorID, ip string) (*domain.Branch, error) {
	b := &domain.Branch{
		ID:        uuid.NewString(),
		Name:      in.Name,
		Address:   in.Address,
		IsActive:  true,
		CreatedAt: s.nowF(),
		CreatedBy: actorID,
	}
	if err := b.Validate(); err != nil {
		return nil, err
	}
	taken, err := s.repo.ExistsByName(ctx, b.Name, "")
	if err != nil {
		return nil, fmt.Errorf("check branch name: %w", err)
	}
	if taken {
		return nil, ErrBranchNameTaken
	}
	if err := s.repo.Create(ctx, b); err != nil {
		return nil, fmt.Errorf("create branch: %w", err)
	}
	s.audit.Record(ctx, actorID, auditdomain.ActionBranchCreated, "branch/"+b.ID, ip,
		map[string]string{"name": b.Name})
	return b, nil
}

// UpdateInput carries the caller-supplied fields for a branch update.
type UpdateInput struct {
	Name     string
	Address  domain.Address
	IsActive bool
}

// Update rewrites a branch's mutable fields.
func (s *BranchService) Update(ctx context.Context, id string, in UpdateInput, actorID, ip string) (*domain.Branch, error) {
	b, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("look up branch: %w", err)
	}
	if b == nil {
		return nil, ErrBranchNotFound
	}
	b.Name = in.Name
	b.Address = in.Address
	b.IsActive = in.IsActive
	if err := b.Validate(); err != nil {
		return nil, err
	}
	taken, err := s.repo.ExistsByName(ctx, b.Name, b.ID)
	if err != nil {
		return nil, fmt.Errorf("check branch name: %w", err)
	}
	if taken {
		return nil, ErrBranchNameTaken
	}
	b.Stamp(actorID, s.nowF())
	if err := s.repo.Update(ctx, b); err != nil {
		return nil, fmt.Errorf("update branch: %w", err)
	}
	s.audit.Record(ctx, actorID, auditdomain.ActionBranchUpdated, "branch/"+b.ID, ip,
		map[string]string{"name": b.Name})
	return b, nil
}

// Delete soft deletes a branch. The row stays for audit history; live name
// uniqueness frees the name for reuse.
func (s *BranchService) Delete(ctx context.Context, id, actorID, ip string) error {
	b, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return fmt.Errorf("look up branch: %w", err)
	}
	if b == nil {
		return ErrBranchNotFound
	}
	now := s.nowF()
	b.IsDeleted = true
	b.DeletedAt = &now
	b.DeletedBy = &actorID
	b.Stamp(actorID, now)
	if err := s.repo.Update(ctx, b); err != nil {
		return fmt.Errorf("delete branch: %w", err)
	}
	s.audit.Record(ctx, actorID, auditdomain.ActionBranchDeleted, "branch/"+b.ID, ip,
		map[string]string{"name": b.Name})
	return nil
}

// Get returns a branch by id.
func (s *BranchService) Get(ctx context.Context, id string) (*domain.Branch, error) {
	b, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("look up branch: %w", err)
	}
	if b == nil {
		return nil, ErrBranchNotFound
	}
	return b, nil
}

// List returns live branches with creator and updater display names.
func (s *BranchService) List(ctx context.Context) ([]*domain.Detail, error) {
	return s.repo.List(ctx)
}
