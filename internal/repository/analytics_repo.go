package repository

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"veda-backend/internal/metrics"
	"veda-backend/internal/models"
	"veda-backend/internal/storage"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// AnalyticsRepo is the record store. Every mutation reads the whole
// collection, changes it in memory and writes it back. Nothing serialises
// concurrent mutations, so the last writer wins.
type AnalyticsRepo struct {
	backend storage.Backend
	metrics *metrics.Collector
	logger  *zap.Logger
}

func NewAnalyticsRepo(backend storage.Backend, collector *metrics.Collector, logger *zap.Logger) *AnalyticsRepo {
	return &AnalyticsRepo{
		backend: backend,
		metrics: collector,
		logger:  logger.With(zap.String("component", "analytics_repo"), zap.String("backend", backend.Name())),
	}
}

// BackendName reports which storage strategy is in use.
func (r *AnalyticsRepo) BackendName() string {
	return r.backend.Name()
}

// List returns every record in insertion order.
func (r *AnalyticsRepo) List(ctx context.Context) ([]models.Record, error) {
	records, err := r.load(ctx)
	r.observe("list", err)
	if err != nil {
		return nil, err
	}
	return records, nil
}

// Append stores rec at the end of the collection with its rating cleared.
// An empty ID is replaced by a fresh UUID. Re-sending a record that is
// already stored with identical content succeeds without writing.
func (r *AnalyticsRepo) Append(ctx context.Context, rec *models.Record) error {
	err := r.appendRecord(ctx, rec)
	r.observe("append", err)
	return err
}

func (r *AnalyticsRepo) appendRecord(ctx context.Context, rec *models.Record) error {
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	rec.Rating = models.RatingUnset

	records, err := r.load(ctx)
	if err != nil {
		return err
	}

	for _, existing := range records {
		if existing.ID != rec.ID {
			continue
		}
		if existing.SameContent(*rec) {
			r.logger.Debug("duplicate append ignored", zap.String("id", rec.ID))
			return nil
		}
		return invalid("duplicate id %q", rec.ID)
	}

	records = append(records, *rec)
	return r.save(ctx, "append", records)
}

// UpdateRating sets the rating of the record with the given id. The input is
// validated before storage is read; an unknown id leaves storage untouched.
func (r *AnalyticsRepo) UpdateRating(ctx context.Context, id string, rating models.Rating) error {
	err := r.updateRating(ctx, id, rating)
	r.observe("rate", err)
	return err
}

func (r *AnalyticsRepo) updateRating(ctx context.Context, id string, rating models.Rating) error {
	if id == "" {
		return invalid("id is required")
	}
	if _, err := models.ParseRating(string(rating)); err != nil {
		return invalid("%v", err)
	}

	records, err := r.load(ctx)
	if err != nil {
		return err
	}

	idx := -1
	for i := range records {
		if records[i].ID == id {
			idx = i
			break
		}
	}
	if idx == -1 {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}

	records[idx].Rating = rating
	return r.save(ctx, "rate", records)
}

func (r *AnalyticsRepo) load(ctx context.Context) ([]models.Record, error) {
	data, err := r.backend.Load(ctx)
	if err != nil {
		return nil, &StorageError{Op: "read", Backend: r.backend.Name(), Err: err}
	}

	records := []models.Record{}
	if len(bytes.TrimSpace(data)) == 0 {
		return records, nil
	}
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, &StorageError{Op: "decode", Backend: r.backend.Name(), Err: fmt.Errorf("%w: %v", ErrCorrupt, err)}
	}
	return records, nil
}

func (r *AnalyticsRepo) save(ctx context.Context, op string, records []models.Record) error {
	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return &StorageError{Op: "encode", Backend: r.backend.Name(), Err: err}
	}
	if err := r.backend.Save(ctx, data); err != nil {
		return &StorageError{Op: "write", Backend: r.backend.Name(), Err: err}
	}
	r.logger.Debug("collection saved", zap.String("op", op), zap.Int("records", len(records)))
	return nil
}

func (r *AnalyticsRepo) observe(op string, err error) {
	r.metrics.RecordStoreOp(op, outcome(err))
}

func outcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, ErrInvalid):
		return "invalid"
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.Is(err, ErrCorrupt):
		return "corrupt"
	default:
		return "storage_error"
	}
}
