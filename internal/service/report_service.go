package service

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jaswdr/faker"
	"github.com/lucsky/cuid"

	"github.com/smartcity/cityapi/internal/domain"
)

const (
	syntheticReportCount = 15
	defaultReportLimit   = 50
	statusSubmitted      = "submitted"
)

var reportCategories = []domain.Category{
	{ID: "infrastructure", Name: "Infrastructure", Icon: "road"},
	{ID: "environment", Name: "Environment", Icon: "tree"},
	{ID: "safety", Name: "Safety", Icon: "shield"},
	{ID: "waste", Name: "Waste & Cleanliness", Icon: "trash"},
	{ID: "lighting", Name: "Street Lighting", Icon: "lightbulb"},
	{ID: "noise", Name: "Noise", Icon: "volume-high"},
	{ID: "other", Name: "Other Issues", Icon: "question"},
}

var reportStatuses = []domain.ReportStatus{
	{ID: "submitted", Name: "Submitted", Color: "blue"},
	{ID: "under_review", Name: "Under Review", Color: "orange"},
	{ID: "in_progress", Name: "In Progress", Color: "yellow"},
	{ID: "resolved", Name: "Resolved", Color: "green"},
	{ID: "rejected", Name: "Rejected", Color: "red"},
}

var reportTemplates = []alertTemplate{
	{"infrastructure", "Pothole on Main Street", "Large pothole causing traffic issues"},
	{"infrastructure", "Broken Traffic Light", "Traffic light at intersection is not working"},
	{"environment", "Fallen Tree", "Tree has fallen across pathway"},
	{"environment", "Water Leak", "Water leaking from underground pipe"},
	{"safety", "Street Light Out", "Street light not working creating unsafe conditions"},
	{"safety", "Missing Manhole Cover", "Dangerous missing manhole cover"},
	{"waste", "Overflowing Bin", "Public bin is overflowing"},
	{"waste", "Illegal Dumping", "Someone has dumped furniture on the sidewalk"},
}

// ReportService keeps citizen reports in memory
type ReportService struct {
	mu      sync.RWMutex
	seed    sync.Once
	reports []*domain.Report
	rng     RandomSource
	fake    faker.Faker
	now     func() time.Time

	centerLat float64
	centerLon float64
}

// NewReportService creates a report store that seeds synthetic reports around the centre
func NewReportService(rng RandomSource, centerLat, centerLon float64) *ReportService {
	return &ReportService{
		rng:       rng,
		fake:      faker.New(),
		now:       time.Now,
		centerLat: centerLat,
		centerLon: centerLon,
	}
}

func (s *ReportService) ensureSeeded() {
	s.seed.Do(func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		if len(s.reports) == 0 {
			s.reports = s.generate()
		}
	})
}

func (s *ReportService) generate() []*domain.Report {
	now := s.now()
	reports := make([]*domain.Report, 0, syntheticReportCount)

	for i := 0; i < syntheticReportCount; i++ {
		tpl := pick(s.rng, reportTemplates)
		status := pick(s.rng, reportStatuses).ID
		created := now.AddDate(0, 0, -randInt(s.rng, 0, 30))

		reports = append(reports, &domain.Report{
			ID:          fmt.Sprintf("report-%d", i+1),
			Title:       tpl.title,
			Description: tpl.text,
			CategoryID:  tpl.category,
			StatusID:    status,
			Priority:    randInt(s.rng, 1, 5),
			Location: domain.ReportLocation{
				Latitude:  s.centerLat + uniform(s.rng, -0.01, 0.01),
				Longitude: s.centerLon + uniform(s.rng, -0.01, 0.01),
				Address:   s.fake.Address().StreetAddress(),
			},
			UserID:        s.fake.Internet().User(),
			CreatedAt:     created,
			StatusHistory: s.syntheticHistory(status, created),
			Upvotes:       randInt(s.rng, 0, 30),
			Photos:        []string{},
			Comments:      []domain.Comment{},
		})
	}
	return reports
}

// syntheticHistory walks a report through the workflow up to status
func (s *ReportService) syntheticHistory(status string, created time.Time) []domain.StatusChange {
	history := []domain.StatusChange{{StatusID: statusSubmitted, Comment: "Report submitted by citizen", Timestamp: created}}
	if status == statusSubmitted {
		return history
	}

	history = append(history, domain.StatusChange{
		StatusID:  "under_review",
		Comment:   "Report is being reviewed by city services",
		Timestamp: created.AddDate(0, 0, randInt(s.rng, 1, 3)),
	})
	if status == "under_review" {
		return history
	}

	history = append(history, domain.StatusChange{
		StatusID:  "in_progress",
		Comment:   "Work has begun to address this issue",
		Timestamp: created.AddDate(0, 0, randInt(s.rng, 4, 7)),
	})
	if status == "in_progress" {
		return history
	}

	comment := "Issue has been resolved"
	if status == "rejected" {
		comment = "Report rejected: not a city service issue"
	}
	return append(history, domain.StatusChange{
		StatusID:  status,
		Comment:   comment,
		Timestamp: created.AddDate(0, 0, randInt(s.rng, 8, 14)),
	})
}

// Categories lists report categories
func (s *ReportService) Categories() []domain.Category {
	return reportCategories
}

// List returns reports matching the filter, newest first
func (s *ReportService) List(ctx context.Context, filter domain.ReportFilter) []domain.Report {
	s.ensureSeeded()

	s.mu.RLock()
	out := make([]domain.Report, 0, len(s.reports))
	for _, r := range s.reports {
		if filter.CategoryID != "" && r.CategoryID != filter.CategoryID {
			continue
		}
		if filter.StatusID != "" && r.StatusID != filter.StatusID {
			continue
		}
		out = append(out, cloneReport(r))
	}
	s.mu.RUnlock()

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})

	limit := filter.Limit
	if limit <= 0 {
		limit = defaultReportLimit
	}
	if len(out) > limit {
		out = out[:limit]
	}
	return out
}

// Get returns a report by id
func (s *ReportService) Get(ctx context.Context, id string) (domain.Report, error) {
	s.ensureSeeded()

	s.mu.RLock()
	defer s.mu.RUnlock()
	r, err := s.find(id)
	if err != nil {
		return domain.Report{}, err
	}
	return cloneReport(r), nil
}

// Create files a new report in the submitted state
func (s *ReportService) Create(ctx context.Context, in domain.ReportCreate) (domain.Report, error) {
	s.ensureSeeded()

	if strings.TrimSpace(in.Title) == "" {
		return domain.Report{}, invalidf("Title is required")
	}
	if !hasCategory(in.CategoryID) {
		return domain.Report{}, invalidf("Invalid category ID")
	}
	priority := in.Priority
	if priority == 0 {
		priority = 1
	}
	if priority < 1 || priority > 5 {
		return domain.Report{}, invalidf("Priority must be between 1 and 5")
	}
	userID := in.UserID
	if userID == "" {
		userID = "anonymous"
	}
	photos := in.Photos
	if photos == nil {
		photos = []string{}
	}

	now := s.now()
	r := &domain.Report{
		ID:          "report-" + uuid.NewString(),
		Title:       in.Title,
		Description: in.Description,
		CategoryID:  in.CategoryID,
		StatusID:    statusSubmitted,
		Priority:    priority,
		Location:    in.Location,
		UserID:      userID,
		CreatedAt:   now,
		StatusHistory: []domain.StatusChange{
			{StatusID: statusSubmitted, Comment: "Report submitted by citizen", Timestamp: now},
		},
		Photos:   photos,
		Comments: []domain.Comment{},
	}

	s.mu.Lock()
	s.reports = append(s.reports, r)
	s.mu.Unlock()

	return cloneReport(r), nil
}

// UpdateStatus moves a report to a new status and records it in the history
func (s *ReportService) UpdateStatus(ctx context.Context, id string, update domain.ReportStatusUpdate) (domain.Report, error) {
	if !hasStatus(update.StatusID) {
		return domain.Report{}, invalidf("Invalid status ID")
	}
	s.ensureSeeded()

	s.mu.Lock()
	defer s.mu.Unlock()
	r, err := s.find(id)
	if err != nil {
		return domain.Report{}, err
	}

	comment := update.Comment
	if comment == "" {
		comment = "Status updated to " + update.StatusID
	}
	r.StatusID = update.StatusID
	r.StatusHistory = append(r.StatusHistory, domain.StatusChange{
		StatusID:  update.StatusID,
		Comment:   comment,
		Timestamp: s.now(),
	})
	return cloneReport(r), nil
}

// Upvote increments a report's vote count and returns the new total
func (s *ReportService) Upvote(ctx context.Context, id string) (int, error) {
	s.ensureSeeded()

	s.mu.Lock()
	defer s.mu.Unlock()
	r, err := s.find(id)
	if err != nil {
		return 0, err
	}
	r.Upvotes++
	return r.Upvotes, nil
}

// AddComment appends a citizen comment to a report
func (s *ReportService) AddComment(ctx context.Context, id string, in domain.CommentCreate) (domain.Comment, error) {
	if strings.TrimSpace(in.Text) == "" {
		return domain.Comment{}, invalidf("Comment text is required")
	}
	s.ensureSeeded()

	s.mu.Lock()
	defer s.mu.Unlock()
	r, err := s.find(id)
	if err != nil {
		return domain.Comment{}, err
	}

	userID := in.UserID
	if userID == "" {
		userID = "anonymous"
	}
	c := domain.Comment{
		ID:        "comment-" + cuid.New(),
		UserID:    userID,
		Text:      in.Text,
		CreatedAt: s.now(),
	}
	r.Comments = append(r.Comments, c)
	return c, nil
}

// find must be called with s.mu held
func (s *ReportService) find(id string) (*domain.Report, error) {
	for _, r := range s.reports {
		if r.ID == id {
			return r, nil
		}
	}
	return nil, notFoundf("Report %s not found", id)
}

func cloneReport(r *domain.Report) domain.Report {
	out := *r
	out.StatusHistory = append([]domain.StatusChange(nil), r.StatusHistory...)
	out.Comments = append([]domain.Comment{}, r.Comments...)
	out.Photos = append([]string{}, r.Photos...)
	return out
}

func hasCategory(id string) bool {
	for _, c := range reportCategories {
		if c.ID == id {
			return true
		}
	}
	return false
}

func hasStatus(id string) bool {
	for _, st := range reportStatuses {
		if st.ID == id {
			return true
		}
	}
	return false
}
