// Package modelstore persists the single production model together with its
// metadata sidecar.
package modelstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/wonny/salescast/internal/contracts"
	"github.com/wonny/salescast/internal/metrics"
	"github.com/wonny/salescast/internal/timeseries"
)

// Object names inside the backend
const (
	ArtifactName = "sarima_model.bin"
	MetadataName = "model_metadata.json"
)

// ErrCorruptMetadata is returned when the metadata sidecar cannot be decoded.
var ErrCorruptMetadata = errors.New("corrupt model metadata")

// State 저장 슬롯 상태
type State string

const (
	StateAbsent       State = "absent"
	StatePresentValid State = "present_valid"
	StatePresentStale State = "present_stale"
)

// Info 저장된 모델 요약 (실패하지 않음)
type Info struct {
	Exists       bool                     `json:"exists"`
	Path         string                   `json:"path"`
	Size         int64                    `json:"size,omitempty"`
	ModifiedTime *time.Time               `json:"modified_time,omitempty"`
	Metadata     *contracts.ModelMetadata `json:"metadata,omitempty"`
}

// StateReport explains State.
type StateReport struct {
	State  State  `json:"state"`
	Reason string `json:"reason,omitempty"`
}

// Store 단일 모델 슬롯
// ⭐ SSOT: 모델 저장/로드는 여기서만
type Store struct {
	backend Backend
	codec   contracts.ModelCodec
	now     func() time.Time
	log     zerolog.Logger

	mu sync.Mutex // serializes Save
}

// New creates a store over backend using codec for the artifact.
func New(backend Backend, codec contracts.ModelCodec, log zerolog.Logger) *Store {
	return &Store{
		backend: backend,
		codec:   codec,
		now:     time.Now,
		log:     log.With().Str("component", "modelstore.store").Logger(),
	}
}

// Location is where the artifact lives.
func (s *Store) Location() string {
	return s.backend.Location(ArtifactName)
}

// Exists reports whether an artifact is present.
func (s *Store) Exists(ctx context.Context) bool {
	_, err := s.backend.Stat(ctx, ArtifactName)
	return err == nil
}

// Save writes the artifact, then the metadata with saved_at and model_file
// filled in. There is no rollback: a failed metadata write leaves the new
// artifact next to the previous metadata.
func (s *Store) Save(ctx context.Context, model contracts.FittedModel, meta *contracts.ModelMetadata) (*contracts.ModelMetadata, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if meta == nil {
		meta = contracts.NewModelMetadata(model)
	}
	err := s.save(ctx, model, meta)
	metrics.StoreOperations.WithLabelValues("save", metrics.Outcome(err)).Inc()
	if err != nil {
		return nil, err
	}
	return meta, nil
}

func (s *Store) save(ctx context.Context, model contracts.FittedModel, meta *contracts.ModelMetadata) error {
	blob, err := s.codec.Marshal(model)
	if err != nil {
		return fmt.Errorf("encode model: %w", err)
	}
	if err := s.backend.Put(ctx, ArtifactName, blob); err != nil {
		return fmt.Errorf("write artifact: %w", err)
	}

	meta.SavedAt = s.now().UTC().Format(time.RFC3339)
	meta.ModelFile = s.backend.Location(ArtifactName)
	data, err := json.MarshalIndent(meta, "", "  ")
	if err != nil {
		return fmt.Errorf("encode metadata: %w", err)
	}
	if err := s.backend.Put(ctx, MetadataName, data); err != nil {
		return fmt.Errorf("write metadata: %w", err)
	}

	s.log.Info().
		Str("location", meta.ModelFile).
		Str("order", model.Order().String()).
		Int("bytes", len(blob)).
		Str("saved_at", meta.SavedAt).
		Msg("model saved")
	return nil
}

// Load decodes the artifact. With validateMetadata the metadata is read and
// compared with the model; a disagreement is logged, not returned.
// Without validation the returned metadata is nil.
func (s *Store) Load(ctx context.Context, validateMetadata bool) (contracts.FittedModel, *contracts.ModelMetadata, error) {
	model, meta, err := s.load(ctx, validateMetadata)
	metrics.StoreOperations.WithLabelValues("load", metrics.Outcome(err)).Inc()
	return model, meta, err
}

func (s *Store) load(ctx context.Context, validateMetadata bool) (contracts.FittedModel, *contracts.ModelMetadata, error) {
	blob, err := s.backend.Get(ctx, ArtifactName)
	if errors.Is(err, ErrObjectNotFound) {
		return nil, nil, fmt.Errorf("%w at %s", contracts.ErrModelNotFound, s.Location())
	}
	if err != nil {
		return nil, nil, fmt.Errorf("read artifact: %w", err)
	}

	model, err := s.codec.Unmarshal(blob)
	if err != nil {
		return nil, nil, fmt.Errorf("decode model: %w", err)
	}
	if !validateMetadata {
		return model, nil, nil
	}

	meta, err := s.Metadata(ctx)
	if err != nil {
		s.log.Warn().Err(err).Msg("model loaded without usable metadata")
		return model, nil, nil
	}
	if err := meta.CheckModel(model); err != nil {
		s.log.Warn().Err(err).Msg("loaded model disagrees with metadata")
	}
	return model, meta, nil
}

// Metadata reads the sidecar only.
func (s *Store) Metadata(ctx context.Context) (*contracts.ModelMetadata, error) {
	data, err := s.backend.Get(ctx, MetadataName)
	if errors.Is(err, ErrObjectNotFound) {
		return nil, fmt.Errorf("%w: no metadata at %s", contracts.ErrModelNotFound, s.backend.Location(MetadataName))
	}
	if err != nil {
		return nil, fmt.Errorf("read metadata: %w", err)
	}

	var meta contracts.ModelMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorruptMetadata, err)
	}
	return &meta, nil
}

// Info summarizes the slot. Backend errors are logged and reported as absent.
func (s *Store) Info(ctx context.Context) Info {
	info := Info{Path: s.Location()}

	stat, err := s.backend.Stat(ctx, ArtifactName)
	if err != nil {
		if !errors.Is(err, ErrObjectNotFound) {
			s.log.Warn().Err(err).Msg("stat artifact failed")
		}
		return info
	}
	info.Exists = true
	info.Size = stat.Size
	mod := stat.ModTime
	info.ModifiedTime = &mod

	if meta, err := s.Metadata(ctx); err == nil {
		info.Metadata = meta
	}
	return info
}

// State classifies the slot. With current set, metadata whose end date or
// observation count differs from current is stale.
func (s *Store) State(ctx context.Context, current *timeseries.Series) StateReport {
	if !s.Exists(ctx) {
		return StateReport{State: StateAbsent}
	}
	meta, err := s.Metadata(ctx)
	if err != nil {
		return StateReport{State: StatePresentStale, Reason: err.Error()}
	}
	if current != nil && current.Len() > 0 {
		if err := meta.CheckSeries(current); err != nil {
			return StateReport{State: StatePresentStale, Reason: err.Error()}
		}
	}
	return StateReport{State: StatePresentValid}
}

// Delete empties the slot.
func (s *Store) Delete(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.backend.Delete(ctx, ArtifactName); err != nil {
		return err
	}
	return s.backend.Delete(ctx, MetadataName)
}
