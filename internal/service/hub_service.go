package service

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/siderhub/platform/internal/metrics"
	"github.com/siderhub/platform/internal/model"
)

// BannerSource supplies the hub's banner section.
type BannerSource interface {
	ListActive(ctx context.Context, now time.Time, limit int) ([]model.Banner, error)
}

// CourseSource supplies the hub's academy section.
type CourseSource interface {
	ListFeatured(ctx context.Context, limit int) ([]model.Course, error)
	ListRecommended(ctx context.Context, limit int) ([]model.Course, error)
}

// HidraSource supplies the hub's campaign summary section.
type HidraSource interface {
	Summary(ctx context.Context, userID string) (DashboardSummary, error)
}

// ResourceSource supplies the hub's Cybervault section.
type ResourceSource interface {
	ListFeatured(ctx context.Context, limit int) ([]model.Resource, error)
}

// Overview is the hub dashboard payload.  A failed section is empty or
// nil rather than aborting the whole call.
type Overview struct {
	Banners            []model.Banner    `json:"banners"`
	FeaturedCourses    []model.Course    `json:"featured_courses"`
	RecommendedCourses []model.Course    `json:"recommended_courses"`
	Hidra              *DashboardSummary `json:"hidra"`
	FeaturedResources  []model.Resource  `json:"featured_resources"`
}

// OverviewLimits bounds how many items each section may return.
type OverviewLimits struct {
	Banners   int
	Courses   int
	Resources int
}

// DefaultOverviewLimits are used when the caller does not override them.
var DefaultOverviewLimits = OverviewLimits{Banners: 5, Courses: 6, Resources: 6}

// HubService fans out over four independent read-only sources and merges
// their results into one dashboard payload.  Each call is isolated: a
// failure in one section is logged and that section comes back empty.
// Only when every dependency fails does the aggregator fail as a whole.
type HubService struct {
	banners   BannerSource
	courses   CourseSource
	hidra     HidraSource
	resources ResourceSource
	collector *metrics.Collector
}

// NewHubService wires the hub aggregator.
func NewHubService(banners BannerSource, courses CourseSource, hidra HidraSource, resources ResourceSource, collector *metrics.Collector) *HubService {
	return &HubService{banners: banners, courses: courses, hidra: hidra, resources: resources, collector: collector}
}

// GetOverview invokes the four sources concurrently and joins on all of
// them.  Sections land in distinct fields so no locking is needed
// beyond the join itself.
func (s *HubService) GetOverview(ctx context.Context, userID string, limits OverviewLimits) (Overview, error) {
	if limits.Banners <= 0 {
		limits.Banners = DefaultOverviewLimits.Banners
	}
	if limits.Courses <= 0 {
		limits.Courses = DefaultOverviewLimits.Courses
	}
	if limits.Resources <= 0 {
		limits.Resources = DefaultOverviewLimits.Resources
	}

	var (
		wg   sync.WaitGroup
		out  Overview
		errs [4]error
	)
	now := time.Now().UTC()

	wg.Add(4)
	go func() {
		defer wg.Done()
		banners, err := s.banners.ListActive(ctx, now, limits.Banners)
		if err != nil {
			errs[0] = s.sectionFailed("banners", err)
			return
		}
		out.Banners = banners
	}()
	go func() {
		defer wg.Done()
		featured, err := s.courses.ListFeatured(ctx, limits.Courses)
		if err != nil {
			errs[1] = s.sectionFailed("courses", err)
			return
		}
		recommended, err := s.courses.ListRecommended(ctx, limits.Courses)
		if err != nil {
			errs[1] = s.sectionFailed("courses", err)
			return
		}
		out.FeaturedCourses = featured
		out.RecommendedCourses = recommended
	}()
	go func() {
		defer wg.Done()
		summary, err := s.hidra.Summary(ctx, userID)
		if err != nil {
			errs[2] = s.sectionFailed("hidra", err)
			return
		}
		out.Hidra = &summary
	}()
	go func() {
		defer wg.Done()
		resources, err := s.resources.ListFeatured(ctx, limits.Resources)
		if err != nil {
			errs[3] = s.sectionFailed("resources", err)
			return
		}
		out.FeaturedResources = resources
	}()
	wg.Wait()

	failed := 0
	for _, err := range errs {
		if err != nil {
			failed++
		}
	}
	if failed == len(errs) {
		return Overview{}, ErrOverviewUnavailable
	}

	if out.Banners == nil {
		out.Banners = []model.Banner{}
	}
	if out.FeaturedCourses == nil {
		out.FeaturedCourses = []model.Course{}
	}
	if out.RecommendedCourses == nil {
		out.RecommendedCourses = []model.Course{}
	}
	if out.FeaturedResources == nil {
		out.FeaturedResources = []model.Resource{}
	}
	return out, nil
}

// sectionFailed logs and counts one failed overview dependency.
func (s *HubService) sectionFailed(section string, err error) error {
	log.Printf("hub overview: %s section failed: %v", section, err)
	s.collector.RecordHubSectionFailure(section)
	return err
}
