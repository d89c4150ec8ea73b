package recordsource

import (
	"context"

	"github.com/Overland-East-Bay/geo-projects-view/internal/domain"
)

// Source supplies the full record set for one load cycle.
//
// Implementations return records already passed through domain.ValidateRecordSet.
// The returned slice must not be mutated by the caller.
type Source interface {
	Load(ctx context.Context) ([]domain.Record, error)
}

// Func adapts a function to Source.
type Func func(ctx context.Context) ([]domain.Record, error)

func (f Func) Load(ctx context.Context) ([]domain.Record, error) { return f(ctx) }

// Generational is a Source that labels each result. The generation changes
// only when the records were fetched again, so callers can skip re-applying
// a set they already hold.
type Generational interface {
	Source
	LoadGen(ctx context.Context) (records []domain.Record, gen uint64, err error)
}
