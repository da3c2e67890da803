package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/google/uuid"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"fiscos/internal/config"
	"fiscos/internal/domain"
	"fiscos/internal/generator"
	"fiscos/internal/pipeline"
	"fiscos/internal/port"
	"fiscos/mocks"
)

func testBatchCfg() *config.BatchConfig {
	return &config.BatchConfig{MaxFiles: 10, MaxFileSizeMB: 1}
}

func testArchiveCfg() *config.ArchiveConfig {
	return &config.ArchiveConfig{}
}

func txtFile(name, content string) BatchFile {
	return BatchFile{Name: name, ContentType: "text/plain", Data: []byte(content)}
}

// stubGenerator returns canned outputs in call order.
type stubGenerator struct {
	outputs []func() (*port.GenerateOutput, error)
	calls   int
}

func (s *stubGenerator) Generate(ctx context.Context, input port.GenerateInput) (*port.GenerateOutput, error) {
	i := s.calls
	s.calls++
	if i >= len(s.outputs) {
		return nil, errors.New("unexpected generate call")
	}
	return s.outputs[i]()
}

func okOutput(text string) func() (*port.GenerateOutput, error) {
	return func() (*port.GenerateOutput, error) {
		return &port.GenerateOutput{Text: text}, nil
	}
}

func failOutput(err error) func() (*port.GenerateOutput, error) {
	return func() (*port.GenerateOutput, error) { return nil, err }
}

func TestProcessBatch_EmptyBatch(t *testing.T) {
	svc := NewAuditService(new(mocks.MockDocumentReader), pipeline.New(new(mocks.MockTextGenerator)),
		new(mocks.MockRecordRepo), nil, testArchiveCfg(), testBatchCfg())

	_, err := svc.ProcessBatch(context.Background(), nil)
	assert.True(t, errors.Is(err, domain.ErrEmptyBatch))
}

func TestProcessBatch_TooManyFiles(t *testing.T) {
	svc := NewAuditService(new(mocks.MockDocumentReader), pipeline.New(new(mocks.MockTextGenerator)),
		new(mocks.MockRecordRepo), nil, testArchiveCfg(), &config.BatchConfig{MaxFiles: 1, MaxFileSizeMB: 1})

	files := []BatchFile{txtFile("a.txt", "x"), txtFile("b.txt", "y")}
	_, err := svc.ProcessBatch(context.Background(), files)
	assert.True(t, errors.Is(err, domain.ErrBatchTooLarge))
}

func TestProcessBatch_PartialFailure(t *testing.T) {
	// Three documents: the second yields a malformed payload. The batch
	// must persist the other two and report one failure.
	reader := new(mocks.MockDocumentReader)
	reader.On("ExtractText", mock.Anything, mock.Anything, mock.Anything).Return("document text")

	gen := &stubGenerator{outputs: []func() (*port.GenerateOutput, error){
		okOutput("extracted 1"), okOutput(`{"goods_tax_amount": 10.0}`),
		okOutput("extracted 2"), okOutput("not json at all"),
		okOutput("extracted 3"), okOutput(`{"service_tax_amount": 20.0}`),
	}}

	repo := new(mocks.MockRecordRepo)
	repo.On("InsertBatch", mock.Anything, mock.Anything, mock.MatchedBy(func(records []domain.FiscalRecord) bool {
		return len(records) == 2
	})).Return(nil)

	svc := NewAuditService(reader, pipeline.New(gen), repo, nil, testArchiveCfg(), testBatchCfg())

	result, err := svc.ProcessBatch(context.Background(), []BatchFile{
		txtFile("a.txt", "1"), txtFile("b.txt", "2"), txtFile("c.txt", "3"),
	})
	require.NoError(t, err)

	assert.Len(t, result.Records, 2)
	require.Len(t, result.Failures, 1)
	assert.Equal(t, "b.txt", result.Failures[0].SourceFile)
	repo.AssertExpectations(t)
}

func TestProcessBatch_UnsupportedFileIsPerDocumentFailure(t *testing.T) {
	reader := new(mocks.MockDocumentReader)
	reader.On("ExtractText", mock.Anything, mock.Anything, mock.Anything).Return("text")

	gen := &stubGenerator{outputs: []func() (*port.GenerateOutput, error){
		okOutput("extracted"), okOutput(`{"goods_tax_amount": 10.0}`),
	}}

	repo := new(mocks.MockRecordRepo)
	repo.On("InsertBatch", mock.Anything, mock.Anything, mock.Anything).Return(nil)

	svc := NewAuditService(reader, pipeline.New(gen), repo, nil, testArchiveCfg(), testBatchCfg())

	result, err := svc.ProcessBatch(context.Background(), []BatchFile{
		{Name: "spreadsheet.xlsx", ContentType: "application/vnd.ms-excel", Data: []byte("x")},
		txtFile("ok.txt", "fine"),
	})
	require.NoError(t, err)

	assert.Len(t, result.Records, 1)
	require.Len(t, result.Failures, 1)
	assert.Equal(t, "spreadsheet.xlsx", result.Failures[0].SourceFile)
}

func TestProcessBatch_StoreWriteFailureIsFatal(t *testing.T) {
	reader := new(mocks.MockDocumentReader)
	reader.On("ExtractText", mock.Anything, mock.Anything, mock.Anything).Return("text")

	gen := &stubGenerator{outputs: []func() (*port.GenerateOutput, error){
		okOutput("extracted"), okOutput(`{"goods_tax_amount": 10.0}`),
	}}

	repo := new(mocks.MockRecordRepo)
	repo.On("InsertBatch", mock.Anything, mock.Anything, mock.Anything).Return(errors.New("connection reset"))

	svc := NewAuditService(reader, pipeline.New(gen), repo, nil, testArchiveCfg(), testBatchCfg())

	_, err := svc.ProcessBatch(context.Background(), []BatchFile{txtFile("a.txt", "1")})
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrStoreWrite))
}

func TestProcessBatch_ServiceWideRateLimitAbortsRemaining(t *testing.T) {
	reader := new(mocks.MockDocumentReader)
	reader.On("ExtractText", mock.Anything, mock.Anything, mock.Anything).Return("text")

	rateLimited := generator.NewRateLimitError("all", errors.New("all providers rate limited"), 30)
	gen := &stubGenerator{outputs: []func() (*port.GenerateOutput, error){
		okOutput("extracted 1"), okOutput(`{"goods_tax_amount": 10.0}`),
		failOutput(rateLimited),
	}}

	repo := new(mocks.MockRecordRepo)
	repo.On("InsertBatch", mock.Anything, mock.Anything, mock.MatchedBy(func(records []domain.FiscalRecord) bool {
		return len(records) == 1
	})).Return(nil)

	svc := NewAuditService(reader, pipeline.New(gen), repo, nil, testArchiveCfg(), testBatchCfg())

	result, err := svc.ProcessBatch(context.Background(), []BatchFile{
		txtFile("a.txt", "1"), txtFile("b.txt", "2"), txtFile("c.txt", "3"),
	})
	require.NoError(t, err)

	// First document made it through; the rate-limited one and everything
	// after it are reported as failures without further generation calls.
	assert.Len(t, result.Records, 1)
	require.Len(t, result.Failures, 2)
	assert.Equal(t, "b.txt", result.Failures[0].SourceFile)
	assert.Equal(t, "c.txt", result.Failures[1].SourceFile)
	assert.Equal(t, 3, gen.calls)
	repo.AssertExpectations(t)
}

func TestProcessBatch_SingleProviderRateLimitDoesNotAbort(t *testing.T) {
	// A 429 from one named provider is a per-document failure; only the
	// service-wide signal aborts the batch.
	reader := new(mocks.MockDocumentReader)
	reader.On("ExtractText", mock.Anything, mock.Anything, mock.Anything).Return("text")

	rateLimited := generator.NewRateLimitError("openai", errors.New("429"), 30)
	gen := &stubGenerator{outputs: []func() (*port.GenerateOutput, error){
		failOutput(rateLimited),
		okOutput("extracted 2"), okOutput(`{"goods_tax_amount": 10.0}`),
	}}

	repo := new(mocks.MockRecordRepo)
	repo.On("InsertBatch", mock.Anything, mock.Anything, mock.Anything).Return(nil)

	svc := NewAuditService(reader, pipeline.New(gen), repo, nil, testArchiveCfg(), testBatchCfg())

	result, err := svc.ProcessBatch(context.Background(), []BatchFile{
		txtFile("a.txt", "1"), txtFile("b.txt", "2"),
	})
	require.NoError(t, err)

	assert.Len(t, result.Records, 1)
	assert.Len(t, result.Failures, 1)
}

func TestProcessBatch_SingleProviderChainRateLimitAbortsBatch(t *testing.T) {
	// With one configured provider the fallback chain still turns its 429
	// into the service-wide signal, so the batch aborts instead of burning
	// generation calls per remaining document.
	reader := new(mocks.MockDocumentReader)
	reader.On("ExtractText", mock.Anything, mock.Anything, mock.Anything).Return("text")

	provider := new(mocks.MockTextGenerator)
	provider.On("Generate", mock.Anything, mock.Anything).
		Return(nil, generator.NewRateLimitError("openai", errors.New("429"), 30))
	chain := generator.NewFallbackGenerator([]port.TextGenerator{provider}, []string{"openai"})

	repo := new(mocks.MockRecordRepo)
	repo.On("InsertBatch", mock.Anything, mock.Anything, mock.MatchedBy(func(records []domain.FiscalRecord) bool {
		return len(records) == 0
	})).Return(nil)

	svc := NewAuditService(reader, pipeline.New(chain), repo, nil, testArchiveCfg(), testBatchCfg())

	result, err := svc.ProcessBatch(context.Background(), []BatchFile{
		txtFile("a.txt", "1"), txtFile("b.txt", "2"),
	})
	require.NoError(t, err)

	assert.Empty(t, result.Records)
	require.Len(t, result.Failures, 2)
	assert.Equal(t, "a.txt", result.Failures[0].SourceFile)
	assert.Equal(t, "b.txt", result.Failures[1].SourceFile)
	provider.AssertNumberOfCalls(t, "Generate", 1)
	repo.AssertExpectations(t)
}

func TestProcessBatch_UnreadableDocumentYieldsDefaultedRecord(t *testing.T) {
	// A swallowed read failure produces an empty text, which becomes an
	// all-defaults UNKNOWN record without any generation round trips.
	reader := new(mocks.MockDocumentReader)
	reader.On("ExtractText", mock.Anything, mock.Anything, mock.Anything).Return("")

	gen := &stubGenerator{}

	repo := new(mocks.MockRecordRepo)
	repo.On("InsertBatch", mock.Anything, mock.Anything, mock.MatchedBy(func(records []domain.FiscalRecord) bool {
		return len(records) == 1 &&
			records[0].DocumentType == domain.DocumentTypeUnknown &&
			records[0].SourceFile == "scan.pdf"
	})).Return(nil)

	svc := NewAuditService(reader, pipeline.New(gen), repo, nil, testArchiveCfg(), testBatchCfg())

	result, err := svc.ProcessBatch(context.Background(), []BatchFile{
		{Name: "scan.pdf", ContentType: "application/pdf", Data: []byte("%PDF-")},
	})
	require.NoError(t, err)

	assert.Len(t, result.Records, 1)
	assert.Empty(t, result.Failures)
	assert.Equal(t, 0, gen.calls)
	repo.AssertExpectations(t)
}

func TestProcessBatch_ArchiveFailureIsNonFatal(t *testing.T) {
	reader := new(mocks.MockDocumentReader)
	reader.On("ExtractText", mock.Anything, mock.Anything, mock.Anything).Return("text")

	gen := &stubGenerator{outputs: []func() (*port.GenerateOutput, error){
		okOutput("extracted"), okOutput(`{"goods_tax_amount": 10.0}`),
	}}

	storage := new(mocks.MockObjectStorage)
	storage.On("Upload", mock.Anything, mock.Anything).Return(nil, errors.New("bucket gone"))

	repo := new(mocks.MockRecordRepo)
	repo.On("InsertBatch", mock.Anything, mock.Anything, mock.Anything).Return(nil)

	archiveCfg := &config.ArchiveConfig{Bucket: "fiscal-archive"}
	svc := NewAuditService(reader, pipeline.New(gen), repo, storage, archiveCfg, testBatchCfg())

	result, err := svc.ProcessBatch(context.Background(), []BatchFile{txtFile("a.txt", "1")})
	require.NoError(t, err)
	assert.Len(t, result.Records, 1)
	storage.AssertExpectations(t)
}

func TestProcessBatch_StoreWriteFailureDiscardsArchivedObjects(t *testing.T) {
	// When the store write fails the batch produced no records, so the
	// documents archived along the way are removed again.
	reader := new(mocks.MockDocumentReader)
	reader.On("ExtractText", mock.Anything, mock.Anything, mock.Anything).Return("text")

	gen := &stubGenerator{outputs: []func() (*port.GenerateOutput, error){
		okOutput("extracted"), okOutput(`{"goods_tax_amount": 10.0}`),
	}}

	storage := new(mocks.MockObjectStorage)
	storage.On("Upload", mock.Anything, mock.Anything).Return(&port.UploadOutput{}, nil)
	storage.On("Delete", mock.Anything, "fiscal-archive", mock.MatchedBy(func(key string) bool {
		return strings.HasPrefix(key, "batches/") && strings.HasSuffix(key, "/a.txt")
	})).Return(nil)

	repo := new(mocks.MockRecordRepo)
	repo.On("InsertBatch", mock.Anything, mock.Anything, mock.Anything).Return(errors.New("connection reset"))

	archiveCfg := &config.ArchiveConfig{Bucket: "fiscal-archive"}
	svc := NewAuditService(reader, pipeline.New(gen), repo, storage, archiveCfg, testBatchCfg())

	_, err := svc.ProcessBatch(context.Background(), []BatchFile{txtFile("a.txt", "1")})
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrStoreWrite))
	storage.AssertExpectations(t)
}

func TestArchivedDocument(t *testing.T) {
	batchID := uuid.New()

	storage := new(mocks.MockObjectStorage)
	storage.On("Download", mock.Anything, "fiscal-archive", "batches/"+batchID.String()+"/a.txt").
		Return([]byte("original bytes"), nil)

	archiveCfg := &config.ArchiveConfig{Bucket: "fiscal-archive"}
	svc := NewAuditService(new(mocks.MockDocumentReader), pipeline.New(new(mocks.MockTextGenerator)),
		new(mocks.MockRecordRepo), storage, archiveCfg, testBatchCfg())

	data, err := svc.ArchivedDocument(context.Background(), batchID, "a.txt")
	require.NoError(t, err)
	assert.Equal(t, []byte("original bytes"), data)
}

func TestArchivedDocument_ArchiveDisabled(t *testing.T) {
	svc := NewAuditService(new(mocks.MockDocumentReader), pipeline.New(new(mocks.MockTextGenerator)),
		new(mocks.MockRecordRepo), nil, testArchiveCfg(), testBatchCfg())

	_, err := svc.ArchivedDocument(context.Background(), uuid.New(), "a.txt")
	assert.True(t, errors.Is(err, domain.ErrNotFound))
}
