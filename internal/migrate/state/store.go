package state

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

const (
	journalFilePermissionsConstant      = 0o644
	journalDirectoryPermissionsConstant = 0o755
)

const (
	prepareJournalErrorTemplateConstant = "unable to prepare state journal directory %s: %w"
	openJournalErrorTemplateConstant    = "unable to open state journal %s: %w"
	readJournalErrorTemplateConstant    = "unable to read state journal %s: %w"
	repairJournalErrorTemplateConstant  = "unable to repair state journal %s: %w"
	corruptJournalErrorTemplateConstant = "state journal %s is corrupt at line %d: %w"
	encodeRecordErrorTemplateConstant   = "unable to encode state record: %w"
	appendRecordErrorTemplateConstant   = "unable to append to state journal: %w"
	flushJournalErrorTemplateConstant   = "unable to flush state journal: %w"
)

type recordKey struct {
	kind       EntityKind
	identifier int64
}

// JournalStore persists migration records as append-only JSON lines.
// A single writer owns the journal; every Record call is durable before
// it returns.
type JournalStore struct {
	journalPath string
	journalFile *os.File
	records     map[recordKey]MigrationRecord
}

// NewJournalStore opens or creates the journal at journalPath and replays
// its records. Replay is last-write-wins per kind and id. A final line cut
// short by a crash is discarded; any other undecodable line is corruption.
func NewJournalStore(journalPath string) (*JournalStore, error) {
	journalDirectory := filepath.Dir(journalPath)
	if directoryError := os.MkdirAll(journalDirectory, journalDirectoryPermissionsConstant); directoryError != nil {
		return nil, fmt.Errorf(prepareJournalErrorTemplateConstant, journalDirectory, directoryError)
	}

	journalFile, openError := os.OpenFile(journalPath, os.O_RDWR|os.O_CREATE|os.O_APPEND, journalFilePermissionsConstant)
	if openError != nil {
		return nil, fmt.Errorf(openJournalErrorTemplateConstant, journalPath, openError)
	}

	journalContent, readError := io.ReadAll(journalFile)
	if readError != nil {
		journalFile.Close()
		return nil, fmt.Errorf(readJournalErrorTemplateConstant, journalPath, readError)
	}

	records, tornTailLength, replayError := replayJournal(journalPath, journalContent)
	if replayError != nil {
		journalFile.Close()
		return nil, replayError
	}
	if tornTailLength > 0 {
		// Appends must start on a fresh line.
		repairedLength := int64(len(journalContent) - tornTailLength)
		if truncateError := journalFile.Truncate(repairedLength); truncateError != nil {
			journalFile.Close()
			return nil, fmt.Errorf(repairJournalErrorTemplateConstant, journalPath, truncateError)
		}
	}

	store := &JournalStore{
		journalPath: journalPath,
		journalFile: journalFile,
		records:     records,
	}

	return store, nil
}

func replayJournal(journalPath string, journalContent []byte) (map[recordKey]MigrationRecord, int, error) {
	records := make(map[recordKey]MigrationRecord)

	content := string(journalContent)
	tornTailLength := 0
	if len(content) > 0 && !strings.HasSuffix(content, "\n") {
		lastNewlineIndex := strings.LastIndexByte(content, '\n')
		tornTailLength = len(content) - lastNewlineIndex - 1
		content = content[:lastNewlineIndex+1]
	}

	for lineIndex, line := range strings.Split(content, "\n") {
		if len(strings.TrimSpace(line)) == 0 {
			continue
		}
		var record MigrationRecord
		if decodeError := json.Unmarshal([]byte(line), &record); decodeError != nil {
			return nil, 0, fmt.Errorf(corruptJournalErrorTemplateConstant, journalPath, lineIndex+1, decodeError)
		}
		records[recordKey{kind: record.Kind, identifier: record.ID}] = record
	}

	return records, tornTailLength, nil
}

// Record appends one transition and forces it to stable storage before
// updating the in-memory view.
func (store *JournalStore) Record(kind EntityKind, identifier int64, path string, status Status) error {
	record := MigrationRecord{
		Kind:       kind,
		ID:         identifier,
		Path:       path,
		Status:     status,
		RecordedAt: time.Now().UTC(),
	}

	encodedRecord, encodeError := json.Marshal(record)
	if encodeError != nil {
		return fmt.Errorf(encodeRecordErrorTemplateConstant, encodeError)
	}

	if _, writeError := store.journalFile.Write(append(encodedRecord, '\n')); writeError != nil {
		return fmt.Errorf(appendRecordErrorTemplateConstant, writeError)
	}
	if syncError := store.journalFile.Sync(); syncError != nil {
		return fmt.Errorf(flushJournalErrorTemplateConstant, syncError)
	}

	store.records[recordKey{kind: kind, identifier: identifier}] = record

	return nil
}

// Lookup reports the last recorded status for the entity.
func (store *JournalStore) Lookup(kind EntityKind, identifier int64) (Status, bool) {
	record, found := store.records[recordKey{kind: kind, identifier: identifier}]
	if !found {
		return "", false
	}

	return record.Status, true
}

// Snapshot returns every current record ordered by kind and id.
func (store *JournalStore) Snapshot() []MigrationRecord {
	return sortedRecords(store.records)
}

// ReadJournal replays the journal at journalPath without opening it for
// appends. A missing journal yields no records; a torn final line is
// discarded the same way NewJournalStore discards it.
func ReadJournal(journalPath string) ([]MigrationRecord, error) {
	journalContent, readError := os.ReadFile(journalPath)
	if readError != nil {
		if errors.Is(readError, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf(readJournalErrorTemplateConstant, journalPath, readError)
	}

	records, _, replayError := replayJournal(journalPath, journalContent)
	if replayError != nil {
		return nil, replayError
	}

	return sortedRecords(records), nil
}

func sortedRecords(records map[recordKey]MigrationRecord) []MigrationRecord {
	ordered := make([]MigrationRecord, 0, len(records))
	for _, record := range records {
		ordered = append(ordered, record)
	}
	sort.Slice(ordered, func(firstIndex int, secondIndex int) bool {
		if ordered[firstIndex].Kind != ordered[secondIndex].Kind {
			return ordered[firstIndex].Kind < ordered[secondIndex].Kind
		}

		return ordered[firstIndex].ID < ordered[secondIndex].ID
	})

	return ordered
}

// Close releases the journal file handle.
func (store *JournalStore) Close() error {
	return store.journalFile.Close()
}
