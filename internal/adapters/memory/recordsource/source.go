package recordsource

import (
	"context"
	"sync"

	"github.com/Overland-East-Bay/geo-projects-view/internal/domain"
)

// Static is an in-memory recordsource.Source over a fixed record set.
// It is safe for concurrent use.
type Static struct {
	mu      sync.RWMutex
	records []domain.Record
}

// NewStatic validates records and keeps the accepted ones.
func NewStatic(records []domain.Record) *Static {
	valid, _ := domain.ValidateRecordSet(records)
	return &Static{records: valid}
}

func (s *Static) Load(ctx context.Context) ([]domain.Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]domain.Record(nil), s.records...), nil
}

// Replace swaps the records served by subsequent loads.
func (s *Static) Replace(records []domain.Record) {
	valid, _ := domain.ValidateRecordSet(records)
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = valid
}
