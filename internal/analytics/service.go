package analytics

import "fmt"

// Service defines the analytics service interface
type Service interface {
	GetOverview() (*OverviewAnalytics, error)
}

// service implements the Service interface
type service struct {
	repo Repository
}

// NewService creates a new analytics service instance
func NewService(repo Repository) Service {
	return &service{repo: repo}
}

// GetOverview recomputes the snapshot on every call. The endpoint is
// admin-only and rare, so the counts are not cached.
func (s *service) GetOverview() (*OverviewAnalytics, error) {
	overview, err := s.repo.GetOverview()
	if err != nil {
		return nil, fmt.Errorf("failed to build analytics overview: %w", err)
	}
	return overview, nil
}
