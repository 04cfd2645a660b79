package memory

import (
	"time"

	"welcomeapp-be/internal/dto"

	"github.com/patrickmn/go-cache"
)

// RunSummaryRepository keeps the latest run summary per job in memory
type RunSummaryRepository struct {
	cache *cache.Cache
}

func NewRunSummaryRepository() *RunSummaryRepository {
	// Summaries outlive a few missed hourly runs, expired ones are purged every 10 minutes
	c := cache.New(6*time.Hour, 10*time.Minute)
	return &RunSummaryRepository{
		cache: c,
	}
}

// Save stores a copy; later changes to summary do not reach the cache
func (r *RunSummaryRepository) Save(jobName string, summary *dto.ConsumptionRunSummary) {
	r.cache.Set(jobName, cloneSummary(summary), cache.DefaultExpiration)
}

// Get returns a copy the caller is free to modify
func (r *RunSummaryRepository) Get(jobName string) (*dto.ConsumptionRunSummary, bool) {
	if x, found := r.cache.Get(jobName); found {
		return cloneSummary(x.(*dto.ConsumptionRunSummary)), true
	}
	return nil, false
}

func cloneSummary(s *dto.ConsumptionRunSummary) *dto.ConsumptionRunSummary {
	if s == nil {
		return nil
	}
	c := *s
	if s.Errors != nil {
		c.Errors = append([]string(nil), s.Errors...)
	}
	return &c
}

func (r *RunSummaryRepository) Delete(jobName string) {
	r.cache.Delete(jobName)
}
