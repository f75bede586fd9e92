package service

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"

	"course-ops/backend/internal/dto"
	"course-ops/backend/internal/model"
)

func setupTestSemesterService() (SemesterService, *memStore) {
	store := newMemStore()
	return NewSemesterService(newMockRepository(store), zap.NewNop()), store
}

func TestSemesterService_Create_Success(t *testing.T) {
	svc, _ := setupTestSemesterService()

	resp, err := svc.Create(context.Background(), testAdmin, &dto.CreateSemesterRequest{
		Name:      "Fall 2026",
		StartDate: "2026-09-01",
		EndDate:   "2027-01-15",
	})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if resp.Name != "Fall 2026" || resp.StartDate != "2026-09-01" || resp.EndDate != "2027-01-15" {
		t.Errorf("unexpected semester: %+v", resp)
	}
	if resp.IsActive {
		t.Error("new semesters start inactive")
	}
}

func TestSemesterService_Create_InvalidDates(t *testing.T) {
	svc, _ := setupTestSemesterService()

	tests := []struct {
		name       string
		start, end string
	}{
		{"end before start", "2027-01-15", "2026-09-01"},
		{"same day", "2026-09-01", "2026-09-01"},
		{"bad format", "09/01/2026", "2027-01-15"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Create(context.Background(), testAdmin, &dto.CreateSemesterRequest{
				Name: "Broken", StartDate: tt.start, EndDate: tt.end,
			})
			if !errors.Is(err, ErrSemesterDateInvalid) {
				t.Errorf("expected ErrSemesterDateInvalid, got %v", err)
			}
		})
	}
}

func TestSemesterService_Create_NonAdminForbidden(t *testing.T) {
	svc, _ := setupTestSemesterService()
	_, err := svc.Create(context.Background(), Principal{UserID: "s-1", Role: model.RoleStudent}, &dto.CreateSemesterRequest{
		Name: "Fall 2026", StartDate: "2026-09-01", EndDate: "2027-01-15",
	})
	if !errors.Is(err, ErrForbidden) {
		t.Errorf("expected ErrForbidden, got %v", err)
	}
}

func TestSemesterService_GetCurrent_NotFound(t *testing.T) {
	svc, _ := setupTestSemesterService()
	if _, err := svc.GetCurrent(context.Background()); !errors.Is(err, ErrSemesterNotFound) {
		t.Errorf("expected ErrSemesterNotFound, got %v", err)
	}
}

func TestSemesterService_Activate_SwitchesCurrent(t *testing.T) {
	svc, _ := setupTestSemesterService()
	fall, _ := svc.Create(context.Background(), testAdmin, &dto.CreateSemesterRequest{Name: "Fall 2026", StartDate: "2026-09-01", EndDate: "2027-01-15"})
	spring, _ := svc.Create(context.Background(), testAdmin, &dto.CreateSemesterRequest{Name: "Spring 2027", StartDate: "2027-02-01", EndDate: "2027-06-30"})

	if err := svc.Activate(context.Background(), testAdmin, fall.ID); err != nil {
		t.Fatalf("Activate failed: %v", err)
	}
	if err := svc.Activate(context.Background(), testAdmin, spring.ID); err != nil {
		t.Fatalf("Activate failed: %v", err)
	}

	current, err := svc.GetCurrent(context.Background())
	if err != nil {
		t.Fatalf("GetCurrent failed: %v", err)
	}
	if current.ID != spring.ID {
		t.Errorf("expected %s current, got %s", spring.ID, current.ID)
	}

	list, _ := svc.List(context.Background())
	active := 0
	for _, s := range list {
		if s.IsActive {
			active++
		}
	}
	if active != 1 {
		t.Errorf("expected exactly one active semester, got %d", active)
	}
	if list[0].ID != spring.ID {
		t.Errorf("expected newest semester first, got %s", list[0].Name)
	}
}

func TestSemesterService_Activate_NotFound(t *testing.T) {
	svc, _ := setupTestSemesterService()
	if err := svc.Activate(context.Background(), testAdmin, "missing"); !errors.Is(err, ErrSemesterNotFound) {
		t.Errorf("expected ErrSemesterNotFound, got %v", err)
	}
}
