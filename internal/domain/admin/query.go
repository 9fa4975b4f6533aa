package admin

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/MianAhsan577/waapi-server/internal/domain/store"
	"github.com/MianAhsan577/waapi-server/internal/platform/errors"
)

// Filters narrow the log listing. All fields are optional and AND-combined.
type Filters struct {
	// Search matches case-insensitively against customer name, company
	// name, inquiry details, and as a raw substring of the phone number.
	Search string
	// StartDate/EndDate bound the record timestamp inclusively. EndDate
	// covers the whole day it names. Zero values disable the bound.
	StartDate time.Time
	EndDate   time.Time
	Status    string
	City      string
	Service   string
}

// Page is one page of the filtered, newest-first log listing.
type Page struct {
	Records     []store.Document
	TotalCount  int
	TotalPages  int
	CurrentPage int
}

// ListLogs returns one page of logs matching the filters, sorted descending
// by timestamp. The source data is bounded to the store's 100-document read
// window before filtering; filters apply only within that window.
func (s *Service) ListLogs(ctx context.Context, f Filters, page, pageSize int) (Page, error) {
	if page < 1 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	if pageSize > MaxPageSize {
		pageSize = MaxPageSize
	}

	logs, err := s.store.GetAll(ctx, store.CollectionLogs)
	if err != nil {
		return Page{}, errors.Wrap(errors.KindStorage, "admin.list_logs", "failed to read logs", err)
	}
	ensureIDs(logs)

	filtered := applyFilters(logs, f)
	sortNewestFirst(filtered)

	total := len(filtered)
	totalPages := (total + pageSize - 1) / pageSize

	start := (page - 1) * pageSize
	if start > total {
		start = total
	}
	end := start + pageSize
	if end > total {
		end = total
	}

	return Page{
		Records:     filtered[start:end],
		TotalCount:  total,
		TotalPages:  totalPages,
		CurrentPage: page,
	}, nil
}

// ListAll returns every log in the read window, newest first, without
// pagination or filtering.
func (s *Service) ListAll(ctx context.Context) ([]store.Document, error) {
	logs, err := s.store.GetAll(ctx, store.CollectionLogs)
	if err != nil {
		return nil, errors.Wrap(errors.KindStorage, "admin.list_all", "failed to read logs", err)
	}
	ensureIDs(logs)
	sortNewestFirst(logs)
	return logs, nil
}

func applyFilters(logs []store.Document, f Filters) []store.Document {
	out := logs[:0]
	for _, log := range logs {
		if matches(log, f) {
			out = append(out, log)
		}
	}
	return out
}

func matches(log store.Document, f Filters) bool {
	if search := strings.TrimSpace(f.Search); search != "" {
		lower := strings.ToLower(search)
		if !strings.Contains(strings.ToLower(log.String("customerName")), lower) &&
			!strings.Contains(strings.ToLower(log.String("companyName")), lower) &&
			!strings.Contains(log.String("phone"), search) &&
			!strings.Contains(strings.ToLower(log.String("inquiryDetails")), lower) {
			return false
		}
	}
	if !f.StartDate.IsZero() || !f.EndDate.IsZero() {
		ts := log.Timestamp()
		if !f.StartDate.IsZero() && ts.Before(f.StartDate) {
			return false
		}
		if !f.EndDate.IsZero() {
			endOfDay := time.Date(
				f.EndDate.Year(), f.EndDate.Month(), f.EndDate.Day(),
				23, 59, 59, int(time.Second-time.Nanosecond),
				f.EndDate.Location(),
			)
			if ts.After(endOfDay) {
				return false
			}
		}
	}
	if f.Status != "" && log.String("status") != f.Status {
		return false
	}
	if city := strings.TrimSpace(f.City); city != "" {
		if !strings.EqualFold(log.String("selectedCity"), city) {
			return false
		}
	}
	if service := strings.TrimSpace(f.Service); service != "" {
		if !strings.EqualFold(log.String("selectedService"), service) {
			return false
		}
	}
	return true
}

// ensureIDs assigns synthetic ids to rows that reached the store without
// one, so responses stay addressable. Such rows cannot be deleted by a
// client-supplied id.
func ensureIDs(logs []store.Document) {
	for _, log := range logs {
		if log.ID() == "" {
			log[store.FieldID] = store.NewID()
		}
	}
}

func sortNewestFirst(logs []store.Document) {
	sort.SliceStable(logs, func(i, j int) bool {
		return logs[i].Timestamp().After(logs[j].Timestamp())
	})
}
