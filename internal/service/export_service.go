package service

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/noah-isme/gema-activity-export/internal/contract"
	"github.com/noah-isme/gema-activity-export/internal/dto"
	"github.com/noah-isme/gema-activity-export/internal/models"
	"github.com/noah-isme/gema-activity-export/internal/observability"
	"github.com/noah-isme/gema-activity-export/internal/repository"
)

const defaultSideChannelTimeout = 10 * time.Second

// ActivitySource yields the records to export in authoring order.
type ActivitySource func() []models.ActivityRecord

// FileWriter replaces a file with new content.
type FileWriter interface {
	WriteFile(path string, data []byte) error
}

// DocumentCache keeps a copy of the rendered document for API consumers.
type DocumentCache interface {
	Store(ctx context.Context, doc []byte, meta dto.CachedDocumentMeta) error
}

// ExportAnnouncer notifies listeners that a new document was written.
type ExportAnnouncer interface {
	Announce(ctx context.Context, event dto.ExportedEvent) error
}

// ExportDependencies groups collaborators of the export service. Mirror, Cache and Announcer are optional.
type ExportDependencies struct {
	Source    ActivitySource
	Writer    FileWriter
	Mirror    repository.ActivityRepository
	Cache     DocumentCache
	Announcer ExportAnnouncer
}

// ExportService writes the activities document.
type ExportService interface {
	Export(ctx context.Context) (dto.ExportResult, error)
}

type exportService struct {
	deps       ExportDependencies
	outputPath string
	timeout    time.Duration
	logger     zerolog.Logger
	tracer     trace.Tracer
	now        func() time.Time
}

// NewExportService constructs the export service writing to outputPath.
func NewExportService(deps ExportDependencies, outputPath string, sideChannelTimeout time.Duration, logger zerolog.Logger) ExportService {
	if sideChannelTimeout <= 0 {
		sideChannelTimeout = defaultSideChannelTimeout
	}
	return &exportService{
		deps:       deps,
		outputPath: outputPath,
		timeout:    sideChannelTimeout,
		logger:     logger.With().Str("component", "export_service").Logger(),
		tracer:     otel.Tracer("github.com/noah-isme/gema-activity-export/internal/service/export"),
		now:        time.Now,
	}
}

// NormalizeActivities converts records to their wire form, keeping order.
func NormalizeActivities(records []models.ActivityRecord) []dto.ExportedActivity {
	items := make([]dto.ExportedActivity, 0, len(records))
	for _, record := range records {
		items = append(items, dto.ExportedActivity{
			Name:     record.Name,
			Date:     record.OccursAt.Format(dto.ActivityDateLayout),
			Location: record.Location,
		})
	}
	return items
}

// RenderActivities serializes records as a two-space indented JSON array without a trailing newline.
func RenderActivities(records []models.ActivityRecord) ([]byte, error) {
	var buf bytes.Buffer
	encoder := json.NewEncoder(&buf)
	encoder.SetEscapeHTML(false)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(NormalizeActivities(records)); err != nil {
		return nil, fmt.Errorf("encode activities: %w", err)
	}
	return bytes.TrimSuffix(buf.Bytes(), []byte("\n")), nil
}

func (s *exportService) Export(ctx context.Context) (dto.ExportResult, error) {
	start := s.now()
	runID := uuid.NewString()
	logger := s.logger.With().Str("run_id", runID).Str("path", s.outputPath).Logger()

	ctx, span := s.tracer.Start(ctx, "activities.export", trace.WithAttributes(
		attribute.String("export.run_id", runID),
		attribute.String("export.path", s.outputPath),
	))
	defer span.End()

	result, err := s.export(ctx, runID, logger)
	observability.ExportDuration().Observe(s.now().Sub(start).Seconds())
	if err != nil {
		observability.ExportRuns().WithLabelValues("error").Inc()
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		logger.Error().Err(err).Msg("activity export failed")
		return dto.ExportResult{}, err
	}

	observability.ExportRuns().WithLabelValues("success").Inc()
	observability.ExportRecords().Set(float64(result.Records))
	observability.ExportBytes().Set(float64(result.Bytes))
	observability.ExportLastSuccess().Set(float64(result.GeneratedAt.Unix()))
	span.SetAttributes(attribute.Int("export.records", result.Records))

	logger.Info().
		Int("records", result.Records).
		Int("bytes", result.Bytes).
		Str("checksum", result.Checksum).
		Int64("mirrored_rows", result.MirroredRows).
		Bool("cached", result.Cached).
		Bool("announced", result.Announced).
		Msg("activities exported")

	return result, nil
}

func (s *exportService) export(ctx context.Context, runID string, logger zerolog.Logger) (dto.ExportResult, error) {
	records := s.deps.Source()

	doc, err := RenderActivities(records)
	if err != nil {
		return dto.ExportResult{}, err
	}

	if err := contract.Validate(doc); err != nil {
		return dto.ExportResult{}, err
	}

	if err := s.deps.Writer.WriteFile(s.outputPath, doc); err != nil {
		return dto.ExportResult{}, fmt.Errorf("write activities document: %w", err)
	}

	sum := sha256.Sum256(doc)
	result := dto.ExportResult{
		RunID:       runID,
		OutputPath:  s.outputPath,
		Records:     len(records),
		Bytes:       len(doc),
		Checksum:    hex.EncodeToString(sum[:]),
		GeneratedAt: s.now().UTC(),
	}

	// the file is the system of record; side channels only log their failures
	if s.deps.Mirror != nil {
		rows, err := s.mirror(ctx, records)
		if err != nil {
			observability.SideChannelErrors().WithLabelValues("mirror").Inc()
			logger.Warn().Err(err).Msg("activity mirror failed")
		}
		result.MirroredRows = rows
	}

	if s.deps.Cache != nil {
		if err := s.cache(ctx, doc, result); err != nil {
			observability.SideChannelErrors().WithLabelValues("cache").Inc()
			logger.Warn().Err(err).Msg("document cache failed")
		} else {
			result.Cached = true
		}
	}

	if s.deps.Announcer != nil {
		if err := s.announce(ctx, result); err != nil {
			observability.SideChannelErrors().WithLabelValues("announce").Inc()
			logger.Warn().Err(err).Msg("export announcement failed")
		} else {
			result.Announced = true
		}
	}

	return result, nil
}

func (s *exportService) mirror(ctx context.Context, records []models.ActivityRecord) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	items := make([]models.Activity, 0, len(records))
	for _, record := range records {
		items = append(items, models.Activity{
			Name:     record.Name,
			Location: record.Location,
			Date:     record.OccursAt,
		})
	}

	rows, err := s.deps.Mirror.ReplaceAll(ctx, items)
	if err != nil {
		return 0, fmt.Errorf("mirror activities: %w", err)
	}
	return rows, nil
}

func (s *exportService) cache(ctx context.Context, doc []byte, result dto.ExportResult) error {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	return s.deps.Cache.Store(ctx, doc, dto.CachedDocumentMeta{
		RunID:       result.RunID,
		Checksum:    result.Checksum,
		Records:     result.Records,
		GeneratedAt: result.GeneratedAt,
	})
}

func (s *exportService) announce(ctx context.Context, result dto.ExportResult) error {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	return s.deps.Announcer.Announce(ctx, dto.ExportedEvent{
		RunID:       result.RunID,
		OutputPath:  result.OutputPath,
		Records:     result.Records,
		Checksum:    result.Checksum,
		GeneratedAt: result.GeneratedAt,
	})
}
