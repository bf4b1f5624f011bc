package services

import (
	"context"
	"fmt"

	"municipal-reports-service/models"
)

// OfficeRouting is the immutable category -> office table. It is built once
// at startup and injected into the assignment service so tests can swap it.
type OfficeRouting struct {
	offices  map[models.Category]string
	fallback string
}

// NewOfficeRouting builds a routing table. Every category must either have
// an explicit entry or be the generic category served by the fallback
// office.
func NewOfficeRouting(table map[models.Category]string, fallback string) (*OfficeRouting, error) {
	if fallback == "" {
		return nil, &ConfigurationError{Message: "office routing: fallback office is required"}
	}
	offices := make(map[models.Category]string, len(table))
	for cat, office := range table {
		if office == "" {
			return nil, &ConfigurationError{Message: fmt.Sprintf("office routing: empty office for category %s", cat)}
		}
		offices[cat] = office
	}
	return &OfficeRouting{offices: offices, fallback: fallback}, nil
}

// DefaultOfficeRouting returns the production routing table. The general
// services office is the fallback and also serves the OTHER category.
func DefaultOfficeRouting() *OfficeRouting {
	routing, err := NewOfficeRouting(map[models.Category]string{
		models.CategoryRoads:      "public_works",
		models.CategoryLighting:   "electrical",
		models.CategoryWaste:      "sanitation",
		models.CategoryWaterSewer: "water_sewer",
		models.CategoryParks:      "parks",
	}, "general_services")
	if err != nil {
		// The static table above is always valid.
		panic(err)
	}
	return routing
}

// OfficeFor returns the office role name responsible for the category. The
// generic category falls through to the fallback office; a non-generic
// category missing from the table is a configuration error.
func (r *OfficeRouting) OfficeFor(category models.Category) (string, error) {
	if office, ok := r.offices[category]; ok {
		return office, nil
	}
	if category == models.CategoryOther {
		return r.fallback, nil
	}
	return "", &ConfigurationError{Message: fmt.Sprintf("no office configured for category %s", category)}
}

// AssignmentService resolves which office owns a category and which officer
// in that office should hold a newly approved report.
type AssignmentService struct {
	routing *OfficeRouting
	offices OfficeDirectory
	reports ReportStore
}

// NewAssignmentService creates a new assignment service instance.
func NewAssignmentService(routing *OfficeRouting, offices OfficeDirectory, reports ReportStore) *AssignmentService {
	return &AssignmentService{routing: routing, offices: offices, reports: reports}
}

// ResolveOfficer maps the category to its office and picks the officer in
// that office with the fewest open (non-terminal) reports. Ties are broken
// by ascending officer id so the result is reproducible. The open-count
// query and the eventual assignment write are not atomic; the least-loaded
// choice is a best-effort heuristic and may be momentarily stale under
// concurrent approvals.
func (s *AssignmentService) ResolveOfficer(ctx context.Context, category models.Category) (string, int64, error) {
	office, err := s.routing.OfficeFor(category)
	if err != nil {
		return "", 0, err
	}

	officers, err := s.offices.OfficersOf(ctx, office)
	if err != nil {
		return "", 0, fmt.Errorf("failed to list officers of office %s: %w", office, err)
	}
	if len(officers) == 0 {
		return "", 0, &ConfigurationError{Message: fmt.Sprintf("office %s has no officers", office)}
	}

	ids := make([]int64, len(officers))
	for i, o := range officers {
		ids[i] = o.ID
	}
	counts, err := s.reports.CountOpenByOfficer(ctx, ids)
	if err != nil {
		return "", 0, fmt.Errorf("failed to count open reports for office %s: %w", office, err)
	}

	best := officers[0]
	bestCount := counts[best.ID]
	for _, o := range officers[1:] {
		if c := counts[o.ID]; c < bestCount || (c == bestCount && o.ID < best.ID) {
			best = o
			bestCount = c
		}
	}
	return office, best.ID, nil
}
