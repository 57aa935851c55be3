package service

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smartcity/cityapi/internal/domain"
)

func TestReportsSeedLazily(t *testing.T) {
	s := NewReportService(testRand(1), 51.5, -0.12)
	reports := s.List(context.Background(), domain.ReportFilter{})

	require.Len(t, reports, syntheticReportCount)
	for i := 1; i < len(reports); i++ {
		assert.False(t, reports[i].CreatedAt.After(reports[i-1].CreatedAt))
	}
	for _, r := range reports {
		assert.NotEmpty(t, r.Location.Address)
		assert.InDelta(t, 51.5, r.Location.Latitude, 0.011)
		require.NotEmpty(t, r.StatusHistory)
		assert.Equal(t, statusSubmitted, r.StatusHistory[0].StatusID)
		assert.Equal(t, r.StatusID, r.StatusHistory[len(r.StatusHistory)-1].StatusID)
	}
}

func TestReportsListLimitAndFilter(t *testing.T) {
	s := NewReportService(testRand(2), 51.5, -0.12)
	ctx := context.Background()

	assert.Len(t, s.List(ctx, domain.ReportFilter{Limit: 4}), 4)
	for _, r := range s.List(ctx, domain.ReportFilter{CategoryID: "waste"}) {
		assert.Equal(t, "waste", r.CategoryID)
	}
}

func TestCreateReport(t *testing.T) {
	s := NewReportService(testRand(3), 51.5, -0.12)
	ctx := context.Background()

	r, err := s.Create(ctx, domain.ReportCreate{
		Title:      "Broken bench",
		CategoryID: "infrastructure",
		Location:   domain.ReportLocation{Latitude: 51.5, Longitude: -0.12},
	})
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(r.ID, "report-"))
	assert.Equal(t, statusSubmitted, r.StatusID)
	assert.Equal(t, 1, r.Priority)
	assert.Equal(t, "anonymous", r.UserID)
	assert.NotNil(t, r.Photos)
	assert.Len(t, r.StatusHistory, 1)

	got, err := s.Get(ctx, r.ID)
	require.NoError(t, err)
	assert.Equal(t, r.Title, got.Title)
	assert.Len(t, s.List(ctx, domain.ReportFilter{}), syntheticReportCount+1)
}

func TestCreateReportValidation(t *testing.T) {
	s := NewReportService(testRand(4), 51.5, -0.12)
	ctx := context.Background()

	cases := map[string]domain.ReportCreate{
		"empty title":      {Title: "  ", CategoryID: "safety"},
		"unknown category": {Title: "Noise", CategoryID: "aliens"},
		"bad priority":     {Title: "Noise", CategoryID: "noise", Priority: 9},
	}
	for name, in := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := s.Create(ctx, in)
			assert.ErrorIs(t, err, ErrInvalidInput)
		})
	}
}

func TestReportWorkflow(t *testing.T) {
	s := NewReportService(testRand(5), 51.5, -0.12)
	ctx := context.Background()

	r, err := s.Create(ctx, domain.ReportCreate{Title: "Dark street", CategoryID: "lighting"})
	require.NoError(t, err)

	updated, err := s.UpdateStatus(ctx, r.ID, domain.ReportStatusUpdate{StatusID: "in_progress"})
	require.NoError(t, err)
	assert.Equal(t, "in_progress", updated.StatusID)
	require.Len(t, updated.StatusHistory, 2)
	assert.Equal(t, "Status updated to in_progress", updated.StatusHistory[1].Comment)

	_, err = s.UpdateStatus(ctx, r.ID, domain.ReportStatusUpdate{StatusID: "lost"})
	assert.ErrorIs(t, err, ErrInvalidInput)

	votes, err := s.Upvote(ctx, r.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, votes)

	c, err := s.AddComment(ctx, r.ID, domain.CommentCreate{Text: "Still dark"})
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(c.ID, "comment-"))

	_, err = s.AddComment(ctx, r.ID, domain.CommentCreate{Text: ""})
	assert.ErrorIs(t, err, ErrInvalidInput)

	got, err := s.Get(ctx, r.ID)
	require.NoError(t, err)
	assert.Len(t, got.Comments, 1)
	assert.Equal(t, 1, got.Upvotes)
}

func TestReportNotFound(t *testing.T) {
	s := NewReportService(testRand(6), 51.5, -0.12)
	ctx := context.Background()

	_, err := s.Get(ctx, "report-missing")
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = s.Upvote(ctx, "report-missing")
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = s.UpdateStatus(ctx, "report-missing", domain.ReportStatusUpdate{StatusID: "resolved"})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestReportCopiesAreIndependent(t *testing.T) {
	s := NewReportService(testRand(7), 51.5, -0.12)
	ctx := context.Background()

	r, err := s.Get(ctx, "report-1")
	require.NoError(t, err)
	r.Comments = append(r.Comments, domain.Comment{ID: "x"})

	again, err := s.Get(ctx, "report-1")
	require.NoError(t, err)
	assert.Empty(t, again.Comments)
}
