package report

import (
	"context"
	"encoding/csv"
	"errors"
	"io"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/temirov/albatross/internal/migrate/state"
)

const (
	recordLoaderMissingMessageConstant = "record loader not configured"
	outputWriterMissingMessageConstant = "output writer not configured"

	csvHeaderKindConstant       = "kind"
	csvHeaderIdentifierConstant = "id"
	csvHeaderPathConstant       = "path"
	csvHeaderStatusConstant     = "status"
	csvHeaderRecordedAtConstant = "recorded_at"

	reportCompletedMessageConstant      = "State report complete"
	recordsFieldNameConstant            = "records"
	groupsCompleteFieldNameConstant     = "groups_complete"
	groupsSkippedFieldNameConstant      = "groups_skipped"
	projectsCompleteFieldNameConstant   = "projects_complete"
	projectsInProgressFieldNameConstant = "projects_in_progress"
	projectsSkippedFieldNameConstant    = "projects_skipped"
)

// RecordLoader reads the current records of a state journal.
type RecordLoader func(journalPath string) ([]state.MigrationRecord, error)

// ServiceDependencies describes required collaborators for a report run.
type ServiceDependencies struct {
	Logger       *zap.Logger
	RecordLoader RecordLoader
	Output       io.Writer
}

// ReportOptions configures one report run.
type ReportOptions struct {
	StateFilePath string
}

// Service writes journal records as CSV and summarizes them per kind.
type Service struct {
	logger       *zap.Logger
	recordLoader RecordLoader
	output       io.Writer
}

var (
	errRecordLoaderMissing = errors.New(recordLoaderMissingMessageConstant)
	errOutputWriterMissing = errors.New(outputWriterMissingMessageConstant)
)

// NewService constructs a Service with the provided dependencies.
func NewService(dependencies ServiceDependencies) (*Service, error) {
	if dependencies.RecordLoader == nil {
		return nil, errRecordLoaderMissing
	}
	if dependencies.Output == nil {
		return nil, errOutputWriterMissing
	}

	logger := dependencies.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	service := &Service{
		logger:       logger,
		recordLoader: dependencies.RecordLoader,
		output:       dependencies.Output,
	}

	return service, nil
}

// Run loads the journal, writes one CSV row per record, and logs
// per-kind status counts.
func (service *Service) Run(executionContext context.Context, options ReportOptions) error {
	records, loadError := service.recordLoader(options.StateFilePath)
	if loadError != nil {
		return loadError
	}

	csvWriter := csv.NewWriter(service.output)
	header := []string{
		csvHeaderKindConstant,
		csvHeaderIdentifierConstant,
		csvHeaderPathConstant,
		csvHeaderStatusConstant,
		csvHeaderRecordedAtConstant,
	}
	if writeError := csvWriter.Write(header); writeError != nil {
		return writeError
	}

	for _, record := range records {
		if writeError := csvWriter.Write(journalRecordFields(record)); writeError != nil {
			return writeError
		}
	}

	csvWriter.Flush()
	if flushError := csvWriter.Error(); flushError != nil {
		return flushError
	}

	service.logSummary(records)

	return nil
}

func (service *Service) logSummary(records []state.MigrationRecord) {
	statusCounts := make(map[state.EntityKind]map[state.Status]int)
	for _, record := range records {
		kindCounts, exists := statusCounts[record.Kind]
		if !exists {
			kindCounts = make(map[state.Status]int)
			statusCounts[record.Kind] = kindCounts
		}
		kindCounts[record.Status]++
	}

	service.logger.Info(
		reportCompletedMessageConstant,
		zap.Int(recordsFieldNameConstant, len(records)),
		zap.Int(groupsCompleteFieldNameConstant, statusCounts[state.KindGroup][state.StatusComplete]),
		zap.Int(groupsSkippedFieldNameConstant, statusCounts[state.KindGroup][state.StatusSkipped]),
		zap.Int(projectsCompleteFieldNameConstant, statusCounts[state.KindProject][state.StatusComplete]),
		zap.Int(projectsInProgressFieldNameConstant, statusCounts[state.KindProject][state.StatusInProgress]),
		zap.Int(projectsSkippedFieldNameConstant, statusCounts[state.KindProject][state.StatusSkipped]),
	)
}

func journalRecordFields(record state.MigrationRecord) []string {
	return []string{
		string(record.Kind),
		strconv.FormatInt(record.ID, 10),
		record.Path,
		string(record.Status),
		record.RecordedAt.UTC().Format(time.RFC3339Nano),
	}
}
