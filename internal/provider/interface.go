package provider

import (
	"context"

	"ology/internal/model"
	"ology/internal/provider/ologyapi"
)

// DataProvider is the abstraction used by the application when accessing a data source.
// Implementations are responsible for their own request pacing and resource cleanup.
type DataProvider interface {
	GetName() string
	FetchHistory(ctx context.Context, q ologyapi.HistoryQuery) (model.Series, error)
	FetchTopDomains(ctx context.Context, q ologyapi.TopDomainsQuery) ([]model.TopDomain, error)
	Close() error
}
