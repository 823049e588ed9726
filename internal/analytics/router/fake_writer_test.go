package router

import (
	"context"

	"github.com/trefleapp/trefle-backend/internal/analytics/types"
)

type fakeWriter struct {
	inserted []types.MarketplaceEventRow
	err      error
}

func (f *fakeWriter) Insert(_ context.Context, row types.MarketplaceEventRow) error {
	if f.err != nil {
		return f.err
	}
	f.inserted = append(f.inserted, row)
	return nil
}
