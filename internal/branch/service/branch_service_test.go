package service

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"testing"

	"rentcar-backoffice/internal/branch/domain"
)

type fakeBranchRepo struct {
	mu       sync.Mutex
	branches map[string]*domain.Branch
	names    map[string]string // creator/updater id -> display name
}

func newFakeBranchRepo() *fakeBranchRepo {
	return &fakeBranchRepo{
		branches: make(map[string]*domain.Branch),
		names:    make(map[string]string),
	}
}

func (f *fakeBranchRepo) GetByID(_ context.Context, id string) (*domain.Branch, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	b, ok := f.branches[id]
	if !ok || b.IsDeleted {
		return nil, nil
	}
	cp := *b
	return &cp, nil
}

func (f *fakeBranchRepo) ExistsByName(_ context.Context, name, excludeID string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, b := range f.branches {
		if !b.IsDeleted && b.Name == name && b.ID != excludeID {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeBranchRepo) List(_ context.Context) ([]*domain.Detail, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var details []*domain.Detail
	for _, b := range f.branches {
		if b.IsDeleted {
			continue
		}
		d := &domain.Detail{Branch: *b, CreatedByName: f.names[b.CreatedBy]}
		if b.UpdatedBy != nil {
			d.UpdatedByName = f.names[*b.UpdatedBy]
		}
		details = append(details, d)
	}
	sort.Slice(details, func(i, j int) bool { return details[i].Name < details[j].Name })
	return details, nil
}

func (f *fakeBranchRepo) Create(_ context.Context, b *domain.Branch) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := *b
	f.branches[b.ID] = &cp
	return nil
}

func (f *fakeBranchRepo) Update(_ context.Context, b *domain.Branch) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.branches[b.ID]; !ok {
		return errors.New("branch not found")
	}
	cp := *b
	f.branches[b.ID] = &cp
	return nil
}

type nopRecorder struct{}

func (nopRecorder) Record(context.Context, string, string, string, string, map[string]string) {}

func testAddress() domain.Address {
	return domain.Address{
		City:        "Istanbul",
		District:    "Kadikoy",
		FullAddress: "Bagdat Cad. 100",
		Phone1:      "+90 216 000 0000",
	}
}

func TestCreateBranch(t *testing.T) {
	repo := newFakeBranchRepo()
	svc := NewBranchService(repo, nopRecorder{})

	b, err := svc.Create(context.Background(), CreateInput{Name: "Kadikoy", Address: testAddress()}, "actor-1", "")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if b.ID == "" {
		t.Fatal("expected generated id")
	}
	if b.CreatedBy != "actor-1" {
		t.Fatalf("expected creator actor-1, got %q", b.CreatedBy)
	}
	if !b.IsActive {
		t.Fatal("expected new branch to be active")
	}
}

func TestCreateBranchRejectsDuplicateName(t *testing.T) {
	repo := newFakeBranchRepo()
	svc := NewBranchService(repo, nopRecorder{})

	if _, err := svc.Create(context.Background(), CreateInput{Name: "Kadikoy", Address: testAddress()}, "actor-1", ""); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if _, err := svc.Create(context.Background(), CreateInput{Name: "Kadikoy", Address: testAddress()}, "actor-1", ""); !errors.Is(err, ErrBranchNameTaken) {
		t.Fatalf("expected ErrBranchNameTaken, got %v", err)
	}
}

func TestCreateBranchValidation(t *testing.T) {
	repo := newFakeBranchRepo()
	svc := NewBranchService(repo, nopRecorder{})

	_, err := svc.Create(context.Background(), CreateInput{Name: "", Address: testAddress()}, "actor-1", "")
	if err == nil || !strings.Contains(err.Error(), "name") {
		t.Fatalf("expected name validation error, got %v", err)
	}
}

func TestUpdateBranch(t *testing.T) {
	repo := newFakeBranchRepo()
	svc := NewBranchService(repo, nopRecorder{})

	b, _ := svc.Create(context.Background(), CreateInput{Name: "Kadikoy", Address: testAddress()}, "actor-1", "")
	addr := testAddress()
	addr.District = "Moda"

	updated, err := svc.Update(context.Background(), b.ID, UpdateInput{Name: "Moda", Address: addr, IsActive: true}, "actor-2", "")
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if updated.Name != "Moda" || updated.Address.District != "Moda" {
		t.Fatalf("unexpected branch %+v", updated)
	}
	if updated.UpdatedBy == nil || *updated.UpdatedBy != "actor-2" {
		t.Fatal("expected updater stamp")
	}
}

func TestUpdateBranchKeepsOwnName(t *testing.T) {
	repo := newFakeBranchRepo()
	svc := NewBranchService(repo, nopRecorder{})

	b, _ := svc.Create(context.Background(), CreateInput{Name: "Kadikoy", Address: testAddress()}, "actor-1", "")
	if _, err := svc.Update(context.Background(), b.ID, UpdateInput{Name: "Kadikoy", Address: testAddress(), IsActive: true}, "actor-1", ""); err != nil {
		t.Fatalf("update keeping same name must succeed: %v", err)
	}
}

func TestUpdateBranchRejectsTakenName(t *testing.T) {
	repo := newFakeBranchRepo()
	svc := NewBranchService(repo, nopRecorder{})

	_, _ = svc.Create(context.Background(), CreateInput{Name: "Kadikoy", Address: testAddress()}, "actor-1", "")
	b2, _ := svc.Create(context.Background(), CreateInput{Name: "Besiktas", Address: testAddress()}, "actor-1", "")

	if _, err := svc.Update(context.Background(), b2.ID, UpdateInput{Name: "Kadikoy", Address: testAddress(), IsActive: true}, "actor-1", ""); !errors.Is(err, ErrBranchNameTaken) {
		t.Fatalf("expected ErrBranchNameTaken, got %v", err)
	}
}

func TestUpdateMissingBranch(t *testing.T) {
	repo := newFakeBranchRepo()
	svc := NewBranchService(repo, nopRecorder{})

	if _, err := svc.Update(context.Background(), "missing", UpdateInput{Name: "X", Address: testAddress(), IsActive: true}, "actor-1", ""); !errors.Is(err, ErrBranchNotFound) {
		t.Fatalf("expected ErrBranchNotFound, got %v", err)
	}
}

func TestDeleteBranchIsSoftAndFreesName(t *testing.T) {
	repo := newFakeBranchRepo()
	svc := NewBranchService(repo, nopRecorder{})

	b, _ := svc.Create(context.Background(), CreateInput{Name: "Kadikoy", Address: testAddress()}, "actor-1", "")
	if err := svc.Delete(context.Background(), b.ID, "actor-2", ""); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := svc.Get(context.Background(), b.ID); !errors.Is(err, ErrBranchNotFound) {
		t.Fatalf("expected deleted branch to be gone, got %v", err)
	}

	// The row is kept with deletion stamps.
	repo.mu.Lock()
	raw := repo.branches[b.ID]
	repo.mu.Unlock()
	if raw == nil || !raw.IsDeleted || raw.DeletedBy == nil || *raw.DeletedBy != "actor-2" {
		t.Fatalf("expected soft deleted row with stamps, got %+v", raw)
	}

	// The name is reusable.
	if _, err := svc.Create(context.Background(), CreateInput{Name: "Kadikoy", Address: testAddress()}, "actor-1", ""); err != nil {
		t.Fatalf("expected name to be reusable after delete: %v", err)
	}
}

func TestListBranchesWithDisplayNames(t *testing.T) {
	repo := newFakeBranchRepo()
	repo.names["actor-1"] = "Ada Lovelace"
	svc := NewBranchService(repo, nopRecorder{})

	_, _ = svc.Create(context.Background(), CreateInput{Name: "Besiktas", Address: testAddress()}, "actor-1", "")
	_, _ = svc.Create(context.Background(), CreateInput{Name: "Kadikoy", Address: testAddress()}, "actor-1", "")

	details, err := svc.List(context.Background())
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(details) != 2 {
		t.Fatalf("expected 2 branches, got %d", len(details))
	}
	if details[0].Name != "Besiktas" || details[1].Name != "Kadikoy" {
		t.Fatalf("expected name order, got %q, %q", details[0].Name, details[1].Name)
	}
	if details[0].CreatedByName != "Ada Lovelace" {
		t.Fatalf("expected creator display name, got %q", details[0].CreatedByName)
	}
}
