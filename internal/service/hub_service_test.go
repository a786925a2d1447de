package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/siderhub/platform/internal/metrics"
	"github.com/siderhub/platform/internal/model"
)

type fakeBannerSource struct {
	banners []model.Banner
	err     error
}

func (s *fakeBannerSource) ListActive(_ context.Context, _ time.Time, limit int) ([]model.Banner, error) {
	if s.err != nil {
		return nil, s.err
	}
	if len(s.banners) > limit {
		return s.banners[:limit], nil
	}
	return s.banners, nil
}

type fakeCourseSource struct {
	featured    []model.Course
	recommended []model.Course
	err         error
}

func (s *fakeCourseSource) ListFeatured(_ context.Context, _ int) ([]model.Course, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.featured, nil
}

func (s *fakeCourseSource) ListRecommended(_ context.Context, _ int) ([]model.Course, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.recommended, nil
}

type fakeHidraSource struct {
	summary DashboardSummary
	err     error
}

func (s *fakeHidraSource) Summary(_ context.Context, _ string) (DashboardSummary, error) {
	if s.err != nil {
		return DashboardSummary{}, s.err
	}
	return s.summary, nil
}

type fakeResourceSource struct {
	resources []model.Resource
	err       error
}

func (s *fakeResourceSource) ListFeatured(_ context.Context, _ int) ([]model.Resource, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.resources, nil
}

type hubFixture struct {
	svc       *HubService
	banners   *fakeBannerSource
	courses   *fakeCourseSource
	hidra     *fakeHidraSource
	resources *fakeResourceSource
}

func newHubFixture() *hubFixture {
	f := &hubFixture{
		banners:   &fakeBannerSource{banners: []model.Banner{{ID: "b1"}, {ID: "b2"}}},
		courses:   &fakeCourseSource{featured: []model.Course{{ID: "c1"}}, recommended: []model.Course{{ID: "c2"}}},
		hidra:     &fakeHidraSource{summary: DashboardSummary{TotalCampaigns: 3, ConnectionStatus: model.EvolutionStatusConnected}},
		resources: &fakeResourceSource{resources: []model.Resource{{ID: "r1"}}},
	}
	collector := metrics.NewCollector(prometheus.NewRegistry())
	f.svc = NewHubService(f.banners, f.courses, f.hidra, f.resources, collector)
	return f
}

func TestHubService_GetOverview(t *testing.T) {
	f := newHubFixture()

	overview, err := f.svc.GetOverview(context.Background(), "user-1", DefaultOverviewLimits)
	require.NoError(t, err)
	assert.Len(t, overview.Banners, 2)
	assert.Len(t, overview.FeaturedCourses, 1)
	assert.Len(t, overview.RecommendedCourses, 1)
	require.NotNil(t, overview.Hidra)
	assert.Equal(t, 3, overview.Hidra.TotalCampaigns)
	assert.Len(t, overview.FeaturedResources, 1)
}

func TestHubService_GetOverview_limits(t *testing.T) {
	f := newHubFixture()

	overview, err := f.svc.GetOverview(context.Background(), "user-1", OverviewLimits{Banners: 1})
	require.NoError(t, err)
	assert.Len(t, overview.Banners, 1)
}

func TestHubService_GetOverview_partialFailure(t *testing.T) {
	f := newHubFixture()
	f.hidra.err = errors.New("campaign store down")

	overview, err := f.svc.GetOverview(context.Background(), "user-1", DefaultOverviewLimits)
	require.NoError(t, err)
	assert.Nil(t, overview.Hidra)
	assert.Len(t, overview.Banners, 2)
	assert.Len(t, overview.FeaturedCourses, 1)
	assert.Len(t, overview.FeaturedResources, 1)
}

func TestHubService_GetOverview_threeSectionsDown(t *testing.T) {
	f := newHubFixture()
	f.banners.err = errors.New("down")
	f.courses.err = errors.New("down")
	f.hidra.err = errors.New("down")

	overview, err := f.svc.GetOverview(context.Background(), "user-1", DefaultOverviewLimits)
	require.NoError(t, err)
	assert.Empty(t, overview.Banners)
	assert.Len(t, overview.FeaturedResources, 1)
}

func TestHubService_GetOverview_allSectionsDown(t *testing.T) {
	f := newHubFixture()
	f.banners.err = errors.New("down")
	f.courses.err = errors.New("down")
	f.hidra.err = errors.New("down")
	f.resources.err = errors.New("down")

	_, err := f.svc.GetOverview(context.Background(), "user-1", DefaultOverviewLimits)
	assert.ErrorIs(t, err, ErrOverviewUnavailable)
}

func TestHubService_GetOverview_emptySectionsNotNil(t *testing.T) {
	f := newHubFixture()
	f.banners.banners = nil
	f.courses.featured = nil
	f.courses.recommended = nil
	f.resources.resources = nil

	overview, err := f.svc.GetOverview(context.Background(), "user-1", DefaultOverviewLimits)
	require.NoError(t, err)
	assert.NotNil(t, overview.Banners)
	assert.NotNil(t, overview.FeaturedCourses)
	assert.NotNil(t, overview.RecommendedCourses)
	assert.NotNil(t, overview.FeaturedResources)
}
