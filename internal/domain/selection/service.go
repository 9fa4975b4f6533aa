package selection

import (
	"context"
	"strings"
	"time"

	"github.com/MianAhsan577/waapi-server/internal/domain/eventbus"
	"github.com/MianAhsan577/waapi-server/internal/domain/store"
	"github.com/MianAhsan577/waapi-server/internal/platform/errors"
	"github.com/MianAhsan577/waapi-server/internal/platform/logging"
)

// Field values stamped onto every selection record.
const (
	SourcePopup      = "popup_interface"
	PlaceholderPhone = "popup_selection"
	unknownAgent     = "Unknown Agent"
)

// agentBySupportNumber maps each support line to the agent answering it.
var agentBySupportNumber = map[string]string{
	"+923185600656": "Fawad Khan", // Islamabad office
	"+923219314424": "Ali Hassan", // Islamabad home
	"+923249988114": "Junaid",     // Lahore/Karachi office
	"+923178882070": "Khadija",    // Lahore/Karachi home
	"+923045999183": "Junaid",     // Karachi office overflow
	"+923334237040": "Fawad Khan", // Karachi home overflow
}

// AgentName resolves the agent handling the given support number.
func AgentName(supportNumber string) string {
	if name, ok := agentBySupportNumber[supportNumber]; ok {
		return name
	}
	return unknownAgent
}

// Input is one widget selection event as received from the popup.
type Input struct {
	City          string
	Service       string
	SupportNumber string
	UTMParams     map[string]string
	Timestamp     time.Time
}

// Service converts widget selections into stored interaction records.
type Service struct {
	store  store.Store
	bus    *eventbus.Bus
	logger *logging.Logger
}

func NewService(st store.Store, bus *eventbus.Bus, logger *logging.Logger) *Service {
	return &Service{store: st, bus: bus, logger: logger}
}

// LogSelection validates the event, derives the display fields and writes
// the record to both log-bearing collections. Store failures after
// validation are downgraded to warnings: the caller's redirect flow must
// proceed whether or not the log landed.
func (s *Service) LogSelection(ctx context.Context, in Input) (store.Document, error) {
	city := strings.TrimSpace(in.City)
	service := strings.TrimSpace(in.Service)
	if city == "" || service == "" {
		return nil, errors.New(errors.KindValidation, "selection.log", "city and service are required")
	}

	doc := store.Document{
		"phone":           PlaceholderPhone,
		"selectedCity":    displayCity(city),
		"selectedService": displayService(service),
		"supportNumber":   in.SupportNumber,
		"agentName":       AgentName(in.SupportNumber),
		"source":          SourcePopup,
	}
	if !in.Timestamp.IsZero() {
		doc[store.FieldTimestamp] = in.Timestamp
	}
	if len(in.UTMParams) > 0 {
		utm := make(map[string]any, len(in.UTMParams))
		for k, v := range in.UTMParams {
			utm[k] = v
		}
		doc["utm"] = utm
	}

	// The record is written twice on purpose: the two collections evolve
	// retention independently, and each copy gets its own id.
	stored, err := s.store.Add(ctx, store.CollectionInteractions, doc)
	if err != nil {
		s.logger.WarnTag("Selection", "interaction write failed: %v", err)
	}
	if stored == nil {
		stored = doc
	}
	if _, err := s.store.Add(ctx, store.CollectionLogs, doc); err != nil {
		s.logger.WarnTag("Selection", "log write failed: %v", err)
	}

	if s.bus != nil {
		s.bus.Publish(eventbus.TopicLogsChanged)
	}
	return stored, nil
}

// displayCity title-cases the raw city code for the dashboard.
func displayCity(city string) string {
	return strings.ToUpper(city[:1]) + city[1:]
}

// displayService maps the two-value service code to its display string.
func displayService(service string) string {
	if service == "office" {
		return "Office Furniture"
	}
	return "Home Furniture"
}
