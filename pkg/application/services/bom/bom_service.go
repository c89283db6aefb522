package bom

import (
	"context"
	"time"

	"github.com/cockroachdb/errors"

	"github.com/vsinha/bomplanner/pkg/application/dto"
	"github.com/vsinha/bomplanner/pkg/application/services/mrp"
	"github.com/vsinha/bomplanner/pkg/domain/entities"
	"github.com/vsinha/bomplanner/pkg/domain/repositories"
	"github.com/vsinha/bomplanner/pkg/domain/services"
	"github.com/vsinha/bomplanner/pkg/infrastructure/events"
	"github.com/vsinha/bomplanner/pkg/infrastructure/metrics"
	"github.com/vsinha/bomplanner/pkg/logger"
)

// ErrMaterialNotFound is returned by FindMaterial for unknown names
var ErrMaterialNotFound = errors.New("material not found")

// Service is the entry point used by the CLI and HTTP interfaces. It turns
// raw input into insertions and reports every outcome to the notifier.
type Service struct {
	repo       repositories.BOMRepository
	mrp        *mrp.MRPService
	validator  *services.InputValidator
	checker    *services.BOMValidator
	notifier   events.Notifier
	eventStore events.EventStore
	recorder   *metrics.Recorder
}

// Option configures a Service
type Option func(*Service)

// WithNotifier sets the notification sink. Defaults to LogNotifier.
func WithNotifier(n events.Notifier) Option {
	return func(s *Service) { s.notifier = n }
}

// WithEventStore records node and MRP events
func WithEventStore(store events.EventStore) Option {
	return func(s *Service) { s.eventStore = store }
}

// WithMetrics records Prometheus metrics. The forest size gauges follow
// NodeInsertedEvent, so they only move when an event store is configured too.
func WithMetrics(r *metrics.Recorder) Option {
	return func(s *Service) { s.recorder = r }
}

// WithInputValidator replaces the default input validator
func WithInputValidator(v *services.InputValidator) Option {
	return func(s *Service) { s.validator = v }
}

// NewService wires a service around a repository and an MRP engine
func NewService(repo repositories.BOMRepository, engine *mrp.MRPService, opts ...Option) *Service {
	s := &Service{
		repo:      repo,
		mrp:       engine,
		validator: services.NewInputValidator(false),
		checker:   services.NewBOMValidator(),
		notifier:  events.LogNotifier{},
	}
	for _, opt := range opts {
		opt(s)
	}

	if s.recorder != nil && s.eventStore != nil {
		sizer := events.HandlerFunc{
			Types: []string{events.NodeInsertedEvent},
			Fn: func(events.Event) error {
				s.recorder.ObserveForest(s.repo.NodeCount(), s.repo.RootCount())
				return nil
			},
		}
		if err := s.eventStore.Subscribe(sizer.Types, sizer); err != nil {
			logger.Warn("forest size gauges disabled", "error", err)
		}
	}
	return s
}

// Repository returns the underlying BOM repository
func (s *Service) Repository() repositories.BOMRepository {
	return s.repo
}

// AddNode validates raw input and inserts the node
func (s *Service) AddNode(ctx context.Context, input services.NodeInput) (services.Insertion, error) {
	insertion, err := s.validator.Parse(input)
	if err == nil {
		err = s.repo.InsertNode(insertion.Name, insertion.Parent, insertion.Quantity)
	}

	if err != nil {
		s.observeInsertion(insertionResult(err))
		s.publish(events.InsertionRejectedEvent, events.InsertionRejected{
			Name:   input.Name,
			Parent: input.Parent,
			Reason: err.Error(),
		})
		s.notifier.Notify(events.SeverityError, userMessage(err))
		logger.Debug("insertion rejected", "name", input.Name, "parent", input.Parent, "error", err)
		return services.Insertion{}, err
	}

	s.observeInsertion(metrics.ResultOK)
	s.publish(events.NodeInsertedEvent, events.NodeInserted{
		Name:     insertion.Name,
		Parent:   insertion.Parent,
		Quantity: insertion.Quantity,
	})
	s.notifier.Notify(events.SeveritySuccess, "Node added successfully.")
	logger.Debug("node inserted", "name", insertion.Name, "parent", insertion.Parent, "quantity", insertion.Quantity)
	return insertion, nil
}

// CalculateMRP aggregates requirements across the forest
func (s *Service) CalculateMRP(ctx context.Context) (*dto.MRPResult, error) {
	start := time.Now()
	result, err := s.mrp.CalculateMRP(ctx)
	elapsed := time.Since(start)

	if err != nil {
		if s.recorder != nil {
			s.recorder.ObserveCalculation(calculationResult(err), elapsed.Seconds(), 0)
		}
		s.notifier.Notify(events.SeverityError, userMessage(err))
		return nil, err
	}

	if s.recorder != nil {
		s.recorder.ObserveCalculation(metrics.ResultOK, elapsed.Seconds(), result.Len())
	}
	s.publish(events.MRPCalculatedEvent, events.MRPCalculated{Materials: result.Len(), Roots: result.RootCount})
	logger.Debug("mrp calculated", "materials", result.Len(), "roots", result.RootCount, "elapsed", elapsed)
	return result, nil
}

// Explode returns the per-occurrence breakdown
func (s *Service) Explode(ctx context.Context) ([]dto.ExplodedRequirement, error) {
	rows, err := s.mrp.Explode(ctx)
	if err != nil {
		s.notifier.Notify(events.SeverityError, userMessage(err))
		return nil, err
	}
	return rows, nil
}

// Check reports structural ambiguities in the current forest
func (s *Service) Check() *services.ValidationResult {
	return s.checker.ValidateBOM(s.repo.Snapshot())
}

// Relationships returns the relationship log in insertion order
func (s *Service) Relationships() []entities.Relationship {
	return s.repo.Relationships()
}

// Material is the first node with a given name and the catalog quantity of
// that name
type Material struct {
	Node            *entities.Node
	CatalogQuantity entities.Quantity
}

// FindMaterial looks a material up by name using the same search order as
// insertion. Names are trimmed like insertion input.
func (s *Service) FindMaterial(raw string) (Material, error) {
	name, err := entities.NewMaterialName(raw)
	if err != nil {
		return Material{}, err
	}

	node, ok := s.repo.FindNode(name)
	if !ok {
		return Material{}, errors.Wrapf(ErrMaterialNotFound, "material %q", name)
	}

	qty, ok := s.repo.QuantityOf(name)
	if !ok {
		qty = node.Quantity
	}
	return Material{Node: node, CatalogQuantity: qty}, nil
}

// Snapshot returns a copy of the current forest
func (s *Service) Snapshot() *entities.Forest {
	return s.repo.Snapshot()
}

func (s *Service) observeInsertion(result string) {
	if s.recorder != nil {
		s.recorder.ObserveInsertion(result)
	}
}

func (s *Service) publish(eventType string, data interface{}) {
	if s.eventStore == nil {
		return
	}
	if err := s.eventStore.AppendEvent(events.BOMStream, events.NewEvent(eventType, events.BOMStream, data)); err != nil {
		logger.Warn("failed to record event", "event", eventType, "error", err)
	}
}

func insertionResult(err error) string {
	switch {
	case errors.Is(err, entities.ErrValidation):
		return metrics.ResultValidation
	case errors.Is(err, entities.ErrParentNotFound):
		return metrics.ResultParentNotFound
	default:
		return metrics.ResultError
	}
}

func calculationResult(err error) string {
	if errors.Is(err, entities.ErrEmptyTree) {
		return metrics.ResultEmptyTree
	}
	return metrics.ResultError
}

// userMessage renders an error for the notification sink
func userMessage(err error) string {
	switch {
	case errors.Is(err, entities.ErrParentNotFound):
		return "Parent node not found: " + err.Error()
	case errors.Is(err, entities.ErrValidation):
		return "Please enter a node name and a valid quantity: " + err.Error()
	case errors.Is(err, entities.ErrEmptyTree):
		return "There are no nodes yet: " + err.Error()
	default:
		return err.Error()
	}
}
