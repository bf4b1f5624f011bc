package services

import (
	"context"
	"errors"
	"testing"

	"municipal-reports-service/models"
)

func sanitationDirectory(ids ...int64) *fakeDirectory {
	officers := make([]models.Officer, len(ids))
	for i, id := range ids {
		officers[i] = models.Officer{ID: id, Name: "officer", Office: "sanitation"}
	}
	return &fakeDirectory{officers: map[string][]models.Officer{"sanitation": officers}}
}

func TestOfficeForCategory(t *testing.T) {
	routing := DefaultOfficeRouting()

	tests := []struct {
		name     string
		category models.Category
		expected string
	}{
		{name: "waste goes to sanitation", category: models.CategoryWaste, expected: "sanitation"},
		{name: "roads go to public works", category: models.CategoryRoads, expected: "public_works"},
		{name: "other falls back to general services", category: models.CategoryOther, expected: "general_services"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			office, err := routing.OfficeFor(tt.category)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if office != tt.expected {
				t.Errorf("expected office %s, got %s", tt.expected, office)
			}
		})
	}
}

func TestOfficeForUnconfiguredCategory(t *testing.T) {
	routing, err := NewOfficeRouting(map[models.Category]string{
		models.CategoryWaste: "sanitation",
	}, "general_services")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if _, err := routing.OfficeFor(models.CategoryRoads); err == nil {
		t.Error("expected configuration error for category without an office")
	} else {
		var configErr *ConfigurationError
		if !errors.As(err, &configErr) {
			t.Errorf("expected ConfigurationError, got %T", err)
		}
	}
}

func TestResolveOfficerPicksLeastLoaded(t *testing.T) {
	// Officer 1 holds two open reports, officer 2 holds one open and one
	// resolved, officer 3 holds one rejected. Officer 3 has the fewest open.
	store := newFakeReportStore(
		assignedReport(10, 1, models.StatusAssigned),
		assignedReport(11, 1, models.StatusInProgress),
		assignedReport(12, 2, models.StatusSuspended),
		assignedReport(13, 2, models.StatusResolved),
		assignedReport(14, 3, models.StatusRejected),
	)
	resolver := NewAssignmentService(DefaultOfficeRouting(), sanitationDirectory(1, 2, 3), store)

	office, officerID, err := resolver.ResolveOfficer(context.Background(), models.CategoryWaste)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if office != "sanitation" {
		t.Errorf("expected office sanitation, got %s", office)
	}
	if officerID != 3 {
		t.Errorf("expected officer 3, got %d", officerID)
	}
}

func TestResolveOfficerBreaksTiesByID(t *testing.T) {
	// All three officers hold one open report each; the smallest id wins.
	store := newFakeReportStore(
		assignedReport(10, 7, models.StatusAssigned),
		assignedReport(11, 3, models.StatusAssigned),
		assignedReport(12, 5, models.StatusAssigned),
	)
	resolver := NewAssignmentService(DefaultOfficeRouting(), sanitationDirectory(7, 3, 5), store)

	_, officerID, err := resolver.ResolveOfficer(context.Background(), models.CategoryWaste)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if officerID != 3 {
		t.Errorf("expected officer 3 on tie, got %d", officerID)
	}
}

func TestResolveOfficerEmptyOffice(t *testing.T) {
	resolver := NewAssignmentService(DefaultOfficeRouting(), sanitationDirectory(), newFakeReportStore())

	_, _, err := resolver.ResolveOfficer(context.Background(), models.CategoryWaste)
	if err == nil {
		t.Fatal("expected error for office with no officers")
	}
	var configErr *ConfigurationError
	if !errors.As(err, &configErr) {
		t.Errorf("expected ConfigurationError, got %T: %v", err, err)
	}
}
