package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"fiscos/internal/config"
	"fiscos/internal/domain"
	"fiscos/internal/generator"
	"fiscos/internal/pipeline"
	"fiscos/internal/port"
)

// BatchFile is one uploaded document of an audit batch.
type BatchFile struct {
	Name        string
	ContentType string
	Data        []byte
}

// AuditService runs the extraction pipeline over an uploaded batch and
// persists the surviving records. Archived source documents can be read
// back by batch and file name.
type AuditService interface {
	ProcessBatch(ctx context.Context, files []BatchFile) (*domain.BatchResult, error)
	ArchivedDocument(ctx context.Context, batchID uuid.UUID, name string) ([]byte, error)
}

type auditService struct {
	reader     port.DocumentReader
	pipeline   *pipeline.Pipeline
	recordRepo port.RecordRepository
	storage    port.ObjectStorage // nil when archival is disabled
	archiveCfg *config.ArchiveConfig
	batchCfg   *config.BatchConfig
}

// NewAuditService creates a new AuditService implementation. storage may be
// nil, which disables source-document archival.
func NewAuditService(
	reader port.DocumentReader,
	pl *pipeline.Pipeline,
	recordRepo port.RecordRepository,
	storage port.ObjectStorage,
	archiveCfg *config.ArchiveConfig,
	batchCfg *config.BatchConfig,
) AuditService {
	return &auditService{
		reader:     reader,
		pipeline:   pl,
		recordRepo: recordRepo,
		storage:    storage,
		archiveCfg: archiveCfg,
		batchCfg:   batchCfg,
	}
}

// ProcessBatch validates the batch, runs every document through the pipeline
// and appends the results to the record store in one transaction. Individual
// document failures never abort the batch; a store write failure or a
// service-wide rate limit does.
func (s *auditService) ProcessBatch(ctx context.Context, files []BatchFile) (*domain.BatchResult, error) {
	if len(files) == 0 {
		return nil, domain.ErrEmptyBatch
	}
	if s.batchCfg.MaxFiles > 0 && len(files) > s.batchCfg.MaxFiles {
		return nil, fmt.Errorf("%w: %d files (limit %d)", domain.ErrBatchTooLarge, len(files), s.batchCfg.MaxFiles)
	}

	result := &domain.BatchResult{BatchID: uuid.New()}
	maxBytes := s.batchCfg.MaxFileSizeMB * 1024 * 1024
	var archivedKeys []string

	for i, f := range files {
		if err := validateFile(&f, maxBytes); err != nil {
			result.Failures = append(result.Failures, domain.DocumentFailure{
				SourceFile: f.Name,
				Reason:     err.Error(),
			})
			continue
		}

		text := s.reader.ExtractText(ctx, f.Data, f.ContentType)
		rec, err := s.pipeline.Run(ctx, f.Name, text)
		if err != nil {
			var rlErr *generator.RateLimitError
			if errors.As(err, &rlErr) && rlErr.Provider == "all" {
				// Every provider is rate limited; processing the rest of the
				// batch would only fail the same way.
				log.Printf("auditService.ProcessBatch: aborting batch %s after %d/%d files: %v",
					result.BatchID, i, len(files), err)
				for _, remaining := range files[i:] {
					result.Failures = append(result.Failures, domain.DocumentFailure{
						SourceFile: remaining.Name,
						Reason:     "generation service rate limited",
					})
				}
				break
			}
			log.Printf("auditService.ProcessBatch: %s failed: %v", f.Name, err)
			result.Failures = append(result.Failures, domain.DocumentFailure{
				SourceFile: f.Name,
				Reason:     err.Error(),
			})
			continue
		}

		result.Records = append(result.Records, *rec)
		if key, ok := s.archive(ctx, result.BatchID, &f); ok {
			archivedKeys = append(archivedKeys, key)
		}
	}

	if err := s.recordRepo.InsertBatch(ctx, result.BatchID, result.Records); err != nil {
		s.discardArchived(ctx, archivedKeys)
		return nil, fmt.Errorf("%w: %v", domain.ErrStoreWrite, err)
	}
	return result, nil
}

// ArchivedDocument returns the original bytes of a document archived during
// ProcessBatch. Unknown keys and a disabled archive both surface as not
// found.
func (s *auditService) ArchivedDocument(ctx context.Context, batchID uuid.UUID, name string) ([]byte, error) {
	if s.storage == nil || !s.archiveCfg.Enabled() {
		return nil, fmt.Errorf("%w: document archival is disabled", domain.ErrNotFound)
	}
	data, err := s.storage.Download(ctx, s.archiveCfg.Bucket, archiveKey(batchID, name))
	if err != nil {
		return nil, fmt.Errorf("auditService.ArchivedDocument %s/%s: %w", batchID, name, err)
	}
	return data, nil
}

// archive uploads the original bytes for traceability and reports the key
// on success. Failure is logged and swallowed: the extracted record is
// already the system of record.
func (s *auditService) archive(ctx context.Context, batchID uuid.UUID, f *BatchFile) (string, bool) {
	if s.storage == nil || !s.archiveCfg.Enabled() {
		return "", false
	}
	key := archiveKey(batchID, f.Name)
	_, err := s.storage.Upload(ctx, port.UploadInput{
		Bucket:      s.archiveCfg.Bucket,
		Key:         key,
		Body:        bytes.NewReader(f.Data),
		ContentType: f.ContentType,
	})
	if err != nil {
		log.Printf("auditService.archive: %s: %v", f.Name, err)
		return "", false
	}
	return key, true
}

// discardArchived removes objects uploaded for a batch whose records never
// reached the store, so the archive only holds documents with records.
// Best effort; a leftover object is harmless.
func (s *auditService) discardArchived(ctx context.Context, keys []string) {
	for _, key := range keys {
		if err := s.storage.Delete(ctx, s.archiveCfg.Bucket, key); err != nil {
			log.Printf("auditService.discardArchived: %s: %v", key, err)
		}
	}
}

func archiveKey(batchID uuid.UUID, name string) string {
	return fmt.Sprintf("batches/%s/%s", batchID, name)
}

func validateFile(f *BatchFile, maxBytes int64) error {
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(f.Name)), ".")
	if _, ok := domain.AllowedExtensions[ext]; !ok {
		if _, ok := domain.AllowedContentTypes[f.ContentType]; !ok {
			return fmt.Errorf("%w: %q", domain.ErrUnsupportedFileType, f.Name)
		}
	}
	if maxBytes > 0 && int64(len(f.Data)) > maxBytes {
		return fmt.Errorf("%w: %q (%d bytes)", domain.ErrFileTooLarge, f.Name, len(f.Data))
	}
	return nil
}
