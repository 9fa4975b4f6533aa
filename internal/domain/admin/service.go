package admin

import (
	"github.com/MianAhsan577/waapi-server/internal/domain/eventbus"
	"github.com/MianAhsan577/waapi-server/internal/domain/store"
	"github.com/MianAhsan577/waapi-server/internal/platform/errors"
	"github.com/MianAhsan577/waapi-server/internal/platform/logging"
)

// Pagination bounds for the dashboard listing.
const (
	DefaultPageSize = 20
	MaxPageSize     = 50
)

// Options encapsulates the dependencies required to construct a Service.
type Options struct {
	Store  store.Store
	Bus    *eventbus.Bus
	Logger *logging.Logger
	// LogCap is re-applied by Reset after clearing the collections.
	LogCap int
}

// Service filters, paginates and aggregates stored records for the
// dashboard, and carries the destructive log-maintenance operations.
type Service struct {
	store  store.Store
	bus    *eventbus.Bus
	logger *logging.Logger
	logCap int
}

// NewService wires a Service using the supplied options.
func NewService(opts Options) (*Service, error) {
	if opts.Store == nil {
		return nil, errors.New(errors.KindBootstrap, "admin.new", "admin service requires a store")
	}
	logCap := opts.LogCap
	if logCap <= 0 {
		logCap = 7
	}
	return &Service{
		store:  opts.Store,
		bus:    opts.Bus,
		logger: opts.Logger,
		logCap: logCap,
	}, nil
}

func (s *Service) notifyLogsChanged() {
	if s.bus != nil {
		s.bus.Publish(eventbus.TopicLogsChanged)
	}
}
