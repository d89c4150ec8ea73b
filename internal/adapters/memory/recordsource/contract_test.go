package recordsource

import (
	"testing"

	"github.com/Overland-East-Bay/geo-projects-view/internal/adapters/contracttest"
	"github.com/Overland-East-Bay/geo-projects-view/internal/domain"
	"github.com/Overland-East-Bay/geo-projects-view/internal/ports/out/recordsource"
)

func TestContract_MemoryStatic(t *testing.T) {
	t.Parallel()

	contracttest.RunRecordSource(t, func(t *testing.T, seed []domain.Record) (recordsource.Source, contracttest.CleanupFunc) {
		t.Helper()
		return NewStatic(seed), nil
	})
}
