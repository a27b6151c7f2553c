package services

import (
	"bytes"
	"compress/flate"
	"context"
	"fmt"
	"io"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/Custom-Logic/pdfsmaller-advanced-sub003/internal/client/backend"
	"github.com/Custom-Logic/pdfsmaller-advanced-sub003/internal/client/cloud"
	"github.com/Custom-Logic/pdfsmaller-advanced-sub003/internal/client/eventbus"
	"github.com/Custom-Logic/pdfsmaller-advanced-sub003/internal/client/events"
	"github.com/Custom-Logic/pdfsmaller-advanced-sub003/internal/client/models"
	"github.com/Custom-Logic/pdfsmaller-advanced-sub003/internal/common"
)

// rig stands in for the mediator: it answers file-request and
// file-persist-request on a real bus and records service events.
type rig struct {
	t   *testing.T
	bus *eventbus.Bus

	files     map[string]*models.FileRecord
	persisted map[string]events.FilePersistRequest

	progress  []events.Progress
	completes []events.Complete
	errors    []events.ServiceError
	cancels   []events.Cancelled
	statuses  []events.StatusChanged
}

func newRig(t *testing.T, kind models.ServiceKind) *rig {
	t.Helper()
	r := &rig{
		t:         t,
		bus:       eventbus.New(nil),
		files:     make(map[string]*models.FileRecord),
		persisted: make(map[string]events.FilePersistRequest),
	}

	r.bus.Subscribe(events.TopicFileRequest, func(payload any) {
		req := payload.(events.FileRequest)
		resp := events.FileResponse{RequestID: req.RequestID, FileID: req.FileID}
		if record, ok := r.files[req.FileID]; ok {
			resp.Record = record
		} else {
			resp.ErrorKind = common.KindNotFound
			resp.ErrorMessage = "unknown fileId"
		}
		r.bus.Publish(events.TopicFileResponse, resp)
	})
	r.bus.Subscribe(events.TopicFilePersistRequest, func(payload any) {
		req := payload.(events.FilePersistRequest)
		id := uuid.NewString()
		r.persisted[id] = req
		r.bus.Publish(events.TopicFilePersistResponse, events.FilePersistResponse{
			RequestID: req.RequestID,
			FileID:    id,
		})
	})

	r.bus.Subscribe(events.ServiceTopic(kind, events.SuffixProgress), func(p any) {
		r.progress = append(r.progress, p.(events.Progress))
	})
	r.bus.Subscribe(events.ServiceTopic(kind, events.SuffixComplete), func(p any) {
		r.completes = append(r.completes, p.(events.Complete))
	})
	r.bus.Subscribe(events.ServiceTopic(kind, events.SuffixError), func(p any) {
		r.errors = append(r.errors, p.(events.ServiceError))
	})
	r.bus.Subscribe(events.ServiceTopic(kind, events.SuffixCancelled), func(p any) {
		r.cancels = append(r.cancels, p.(events.Cancelled))
	})
	r.bus.Subscribe(events.ServiceTopic(kind, events.SuffixStatusChanged), func(p any) {
		r.statuses = append(r.statuses, p.(events.StatusChanged))
	})
	return r
}

func (r *rig) addFile(name string, data []byte) string {
	id := uuid.NewString()
	r.files[id] = &models.FileRecord{
		ID:        id,
		Name:      name,
		SizeBytes: int64(len(data)),
		MimeType:  "application/pdf",
		Bytes:     data,
		Source:    models.SourceUserSelected,
	}
	return id
}

func (r *rig) requireMonotonicProgressTo100() {
	r.t.Helper()
	require.NotEmpty(r.t, r.progress)
	last := -1.0
	for _, p := range r.progress {
		require.GreaterOrEqual(r.t, p.Percent, last)
		last = p.Percent
	}
	require.Equal(r.t, 100.0, last)
}

func defaultCompression() CompressionOptions {
	return CompressionOptions{CompressionLevel: "medium", ImageQuality: 80}
}

func TestCompression_LocalRun(t *testing.T) {
	r := newRig(t, models.ServiceCompression)
	svc := NewCompression(r.bus, nil, &backend.Stub{})
	require.NoError(t, svc.Initialize())

	original := bytes.Repeat([]byte("pdfsmaller "), 512)
	idA := r.addFile("a.pdf", original)
	idB := r.addFile("b.pdf", original)

	err := svc.Start(context.Background(), StartInputs{JobID: "job-1", FileIDs: []string{idA, idB}}, defaultCompression())
	require.NoError(t, err)

	require.Len(t, r.completes, 1)
	require.Len(t, r.completes[0].OutputFileIDs, 2)
	require.Equal(t, "job-1", r.completes[0].JobID)
	r.requireMonotonicProgressTo100()
	require.Equal(t, models.StateIdle, svc.State())

	// Outputs really are flate streams of the inputs.
	out := r.persisted[r.completes[0].OutputFileIDs[0]]
	require.Equal(t, "a_compressed.pdf", out.Name)
	require.Equal(t, idA, out.DerivedFrom)
	fr := flate.NewReader(bytes.NewReader(out.Bytes))
	round, err := io.ReadAll(fr)
	require.NoError(t, err)
	require.Equal(t, original, round)

	result := r.completes[0].Result.(CompressionResult)
	require.Equal(t, int64(2*len(original)), result.OriginalBytes)
	require.Greater(t, result.Ratio, 0.0)
}

func TestCompression_ServerPathUsesRemote(t *testing.T) {
	r := newRig(t, models.ServiceCompression)
	svc := NewCompression(r.bus, nil, &backend.Stub{})
	require.NoError(t, svc.Initialize())

	id := r.addFile("a.pdf", []byte("0123456789"))
	opts := defaultCompression()
	opts.UseServerProcessing = true

	require.NoError(t, svc.Start(context.Background(), StartInputs{JobID: "j", FileIDs: []string{id}}, opts))
	require.Len(t, r.completes, 1)

	// The stub keeps a deterministic byte subset rather than a flate stream.
	out := r.persisted[r.completes[0].OutputFileIDs[0]]
	require.NotEmpty(t, out.Bytes)
	require.Less(t, len(out.Bytes), 10)
}

func TestCompression_RejectsBadOptions(t *testing.T) {
	r := newRig(t, models.ServiceCompression)
	svc := NewCompression(r.bus, nil, &backend.Stub{})
	require.NoError(t, svc.Initialize())

	tests := []struct {
		name string
		opts CompressionOptions
		want error
	}{
		{"unknown level", CompressionOptions{CompressionLevel: "ultra", ImageQuality: 80}, common.ErrUnsupported},
		{"quality too low", CompressionOptions{CompressionLevel: "low", ImageQuality: 5}, common.ErrInvalidInput},
		{"quality too high", CompressionOptions{CompressionLevel: "low", ImageQuality: 101}, common.ErrInvalidInput},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := svc.Start(context.Background(), StartInputs{JobID: "j", FileIDs: []string{"f"}}, tt.opts)
			require.ErrorIs(t, err, tt.want)
			require.Empty(t, r.errors) // rejected before the run started
		})
	}
}

func TestCompression_WrongOptionsType(t *testing.T) {
	r := newRig(t, models.ServiceCompression)
	svc := NewCompression(r.bus, nil, &backend.Stub{})
	require.NoError(t, svc.Initialize())

	err := svc.Start(context.Background(), StartInputs{JobID: "j", FileIDs: []string{"f"}}, OCROptions{})
	require.ErrorIs(t, err, common.ErrInvalidInput)
}

func TestCompression_UnknownFileFailsRun(t *testing.T) {
	r := newRig(t, models.ServiceCompression)
	svc := NewCompression(r.bus, nil, &backend.Stub{})
	require.NoError(t, svc.Initialize())

	err := svc.Start(context.Background(), StartInputs{JobID: "j", FileIDs: []string{"no-such"}}, defaultCompression())
	require.ErrorIs(t, err, common.ErrNotFound)

	require.Len(t, r.errors, 1)
	require.Equal(t, common.KindNotFound, r.errors[0].Kind)
	require.Empty(t, r.completes)
	require.Equal(t, models.StateIdle, svc.State())
}

func TestCompression_SecondStartWhileRunningIsBusy(t *testing.T) {
	r := newRig(t, models.ServiceCompression)
	svc := NewCompression(r.bus, nil, &backend.Stub{})
	require.NoError(t, svc.Initialize())

	_, err := svc.begin(context.Background(), StartInputs{JobID: "first"})
	require.NoError(t, err)

	id := r.addFile("a.pdf", []byte("x"))
	err = svc.Start(context.Background(), StartInputs{JobID: "second", FileIDs: []string{id}}, defaultCompression())
	require.ErrorIs(t, err, common.ErrServiceBusy)

	svc.Cancelled("test over")
	require.Equal(t, models.StateIdle, svc.State())
}

func TestCompression_CancelEndsRunAsCancelled(t *testing.T) {
	r := newRig(t, models.ServiceCompression)
	stub := &backend.Stub{}
	svc := NewCompression(r.bus, nil, stub)
	require.NoError(t, svc.Initialize())

	stub.StepHook = func() { svc.Cancel() }

	id := r.addFile("a.pdf", []byte("payload"))
	opts := defaultCompression()
	opts.UseServerProcessing = true

	err := svc.Start(context.Background(), StartInputs{JobID: "j", FileIDs: []string{id}}, opts)
	require.ErrorIs(t, err, common.ErrCancelled)

	require.Len(t, r.cancels, 1)
	require.Empty(t, r.completes)
	require.Empty(t, r.errors)
	require.Equal(t, models.StateIdle, svc.State())
}

func TestCompression_RemoteFailure(t *testing.T) {
	r := newRig(t, models.ServiceCompression)
	svc := NewCompression(r.bus, nil, &backend.Stub{Err: common.ErrRemoteFailure})
	require.NoError(t, svc.Initialize())

	id := r.addFile("a.pdf", []byte("payload"))
	opts := defaultCompression()
	opts.UseServerProcessing = true

	err := svc.Start(context.Background(), StartInputs{JobID: "j", FileIDs: []string{id}}, opts)
	require.ErrorIs(t, err, common.ErrRemoteFailure)
	require.Len(t, r.errors, 1)
	require.Equal(t, common.KindRemoteFailure, r.errors[0].Kind)
}

func TestBase_FileRequestTimesOut(t *testing.T) {
	bus := eventbus.New(nil) // nobody answers
	base := NewBase(models.ServiceCompression, bus, nil, 30*time.Millisecond)
	require.NoError(t, base.Initialize())

	_, err := base.begin(context.Background(), StartInputs{JobID: "j"})
	require.NoError(t, err)

	_, err = base.ResolveFile(context.Background(), "f1")
	require.ErrorIs(t, err, common.ErrTimeout)
	base.End(err)
	require.Equal(t, models.StateIdle, base.State())
}

func TestBase_FailCarriesRunContext(t *testing.T) {
	r := newRig(t, models.ServiceCompression)
	base := NewBase(models.ServiceCompression, r.bus, nil, 0)
	require.NoError(t, base.Initialize())

	_, err := base.begin(context.Background(), StartInputs{JobID: "j"})
	require.NoError(t, err)

	base.Fail(fmt.Errorf("engine exploded: %w", common.ErrRemoteFailure), "run aborted")

	require.Len(t, r.errors, 1)
	require.Equal(t, common.KindRemoteFailure, r.errors[0].Kind)
	require.Equal(t, "run aborted", r.errors[0].Context)
	require.Equal(t, models.StateIdle, base.State())
}

func TestBase_SetFileTimeoutShortensWait(t *testing.T) {
	bus := eventbus.New(nil) // nobody answers
	base := NewBase(models.ServiceCompression, bus, nil, 0)
	base.SetFileTimeout(30 * time.Millisecond)
	require.NoError(t, base.Initialize())

	_, err := base.begin(context.Background(), StartInputs{JobID: "j"})
	require.NoError(t, err)

	start := time.Now()
	_, err = base.ResolveFile(context.Background(), "f1")
	require.ErrorIs(t, err, common.ErrTimeout)
	require.Less(t, time.Since(start), DefaultFileTimeout)
	base.End(err)
}

func TestBase_SetFileTimeoutIgnoresNonPositive(t *testing.T) {
	base := NewBase(models.ServiceCompression, eventbus.New(nil), nil, 30*time.Millisecond)
	base.SetFileTimeout(0)
	base.SetFileTimeout(-time.Second)

	base.mu.Lock()
	got := base.fileTimeout
	base.mu.Unlock()
	require.Equal(t, 30*time.Millisecond, got)
}

func TestBase_InitializeIsIdempotent(t *testing.T) {
	r := newRig(t, models.ServiceCompression)
	svc := NewCompression(r.bus, nil, &backend.Stub{})

	require.Equal(t, models.StateUninitialized, svc.State())
	require.NoError(t, svc.Initialize())
	require.NoError(t, svc.Initialize())
	require.Equal(t, models.StateIdle, svc.State())

	svc.Teardown()
	require.Equal(t, models.StateUninitialized, svc.State())
}

func TestConversion_LocalTxt(t *testing.T) {
	r := newRig(t, models.ServiceConversion)
	svc := NewConversion(r.bus, nil, &backend.Stub{})
	require.NoError(t, svc.Initialize())

	id := r.addFile("report.pdf", []byte("Hello PDF"))
	opts := ConversionOptions{TargetFormat: "txt", Quality: "medium"}

	require.NoError(t, svc.Start(context.Background(), StartInputs{JobID: "j", FileIDs: []string{id}}, opts))
	require.Len(t, r.completes, 1)

	out := r.persisted[r.completes[0].OutputFileIDs[0]]
	require.Equal(t, "report.txt", out.Name)
	require.Equal(t, "text/plain", out.MimeType)
	require.Contains(t, string(out.Bytes), "Hello PDF")
}

func TestConversion_OfficeFormatGoesRemote(t *testing.T) {
	r := newRig(t, models.ServiceConversion)
	svc := NewConversion(r.bus, nil, &backend.Stub{})
	require.NoError(t, svc.Initialize())

	id := r.addFile("report.pdf", []byte("cells"))
	opts := ConversionOptions{TargetFormat: "xlsx", Quality: "high"}
	require.True(t, opts.RequiresServerProcessing())

	require.NoError(t, svc.Start(context.Background(), StartInputs{JobID: "j", FileIDs: []string{id}}, opts))
	require.Len(t, r.completes, 1)

	out := r.persisted[r.completes[0].OutputFileIDs[0]]
	require.Equal(t, "report.xlsx", out.Name)
	require.Equal(t, convertMimeTypes["xlsx"], out.MimeType)
}

func TestOCR_StubRun(t *testing.T) {
	r := newRig(t, models.ServiceOCR)
	svc := NewOCR(r.bus, nil, &backend.Stub{})
	require.NoError(t, svc.Initialize())

	id := r.addFile("scan.pdf", []byte("scanned words here"))
	opts := OCROptions{
		Language:            "de",
		OutputFormat:        "text",
		Quality:             "balanced",
		ConfidenceThreshold: 0.5,
	}

	require.NoError(t, svc.Start(context.Background(), StartInputs{JobID: "j", FileIDs: []string{id}}, opts))
	require.Len(t, r.completes, 1)

	out := r.persisted[r.completes[0].OutputFileIDs[0]]
	require.Equal(t, "scan_ocr.txt", out.Name)

	result := r.completes[0].Result.(OCRRunResult)
	require.Equal(t, "de", result.Language)
	require.Greater(t, result.WordCount, 0)
	r.requireMonotonicProgressTo100()
}

func TestOCR_RejectsUnknownLanguage(t *testing.T) {
	r := newRig(t, models.ServiceOCR)
	svc := NewOCR(r.bus, nil, &backend.Stub{})
	require.NoError(t, svc.Initialize())

	opts := OCROptions{Language: "xx", OutputFormat: "text", Quality: "fast"}
	err := svc.Start(context.Background(), StartInputs{JobID: "j", FileIDs: []string{"f"}}, opts)
	require.ErrorIs(t, err, common.ErrUnsupported)
}

func TestSummarize_Run(t *testing.T) {
	r := newRig(t, models.ServiceAISummarize)
	svc := NewSummarize(r.bus, nil, &backend.Stub{})
	require.NoError(t, svc.Initialize())

	id := r.addFile("paper.pdf", []byte("long body of text"))
	opts := SummarizeOptions{Style: "academic", Length: "short"}

	require.NoError(t, svc.Start(context.Background(), StartInputs{JobID: "j", FileIDs: []string{id}}, opts))
	require.Len(t, r.completes, 1)
	require.Equal(t, "paper_summary.txt", r.persisted[r.completes[0].OutputFileIDs[0]].Name)
}

func TestTranslate_Run(t *testing.T) {
	r := newRig(t, models.ServiceAITranslate)
	svc := NewTranslate(r.bus, nil, &backend.Stub{})
	require.NoError(t, svc.Initialize())

	id := r.addFile("doc.pdf", []byte("bonjour"))
	opts := TranslateOptions{TargetLanguage: "en", Quality: "standard", PreserveFormatting: true}

	require.NoError(t, svc.Start(context.Background(), StartInputs{JobID: "j", FileIDs: []string{id}}, opts))
	require.Len(t, r.completes, 1)
	require.Equal(t, "doc_en.pdf", r.persisted[r.completes[0].OutputFileIDs[0]].Name)
}

func TestTranslate_PremiumQualityFlagsServerProcessing(t *testing.T) {
	require.True(t, TranslateOptions{TargetLanguage: "en", Quality: "premium"}.RequiresServerProcessing())
	require.False(t, TranslateOptions{TargetLanguage: "en", Quality: "standard"}.RequiresServerProcessing())
	require.True(t, OCROptions{Language: "en", OutputFormat: "text", Quality: "accurate"}.RequiresServerProcessing())
}

func TestCloudUpload_MemoryProvider(t *testing.T) {
	r := newRig(t, models.ServiceCloudUpload)
	reg := cloud.NewRegistry()
	mem := cloud.NewMemoryProvider(cloud.Memory)
	reg.Register(mem)

	svc := NewCloudUpload(r.bus, nil, reg)
	require.NoError(t, svc.Initialize())

	idA := r.addFile("a.pdf", []byte("aaa"))
	idB := r.addFile("b.pdf", []byte("bbb"))
	opts := CloudUploadOptions{Provider: cloud.Memory, DestinationPath: "backups"}

	require.NoError(t, svc.Start(context.Background(), StartInputs{JobID: "j", FileIDs: []string{idA, idB}}, opts))
	require.Len(t, r.completes, 1)
	require.Empty(t, r.completes[0].OutputFileIDs)

	result := r.completes[0].Result.(CloudUploadResult)
	require.Equal(t, []string{"backups/a.pdf", "backups/b.pdf"}, result.Keys)

	obj, err := mem.Download(context.Background(), "backups/b.pdf")
	require.NoError(t, err)
	require.Equal(t, []byte("bbb"), obj.Bytes)
}

func TestCloudUpload_UnknownProvider(t *testing.T) {
	r := newRig(t, models.ServiceCloudUpload)
	svc := NewCloudUpload(r.bus, nil, cloud.NewRegistry())
	require.NoError(t, svc.Initialize())

	opts := CloudUploadOptions{Provider: cloud.Dropbox, DestinationPath: "x"}
	err := svc.Start(context.Background(), StartInputs{JobID: "j", FileIDs: []string{"f"}}, opts)
	require.ErrorIs(t, err, common.ErrUnsupported)
	require.Equal(t, models.StateIdle, svc.State())
}

func TestCloudDownload_PersistsWithCloudSource(t *testing.T) {
	r := newRig(t, models.ServiceCloudDownload)
	reg := cloud.NewRegistry()
	mem := cloud.NewMemoryProvider(cloud.Memory)
	require.NoError(t, mem.Upload(context.Background(), "inbox/c.pdf", []byte("ccc")))
	reg.Register(mem)

	svc := NewCloudDownload(r.bus, nil, reg)
	require.NoError(t, svc.Initialize())

	opts := CloudDownloadOptions{Provider: cloud.Memory, FilePath: "inbox/c.pdf"}
	require.NoError(t, svc.Start(context.Background(), StartInputs{JobID: "j"}, opts))

	require.Len(t, r.completes, 1)
	require.Len(t, r.completes[0].OutputFileIDs, 1)

	out := r.persisted[r.completes[0].OutputFileIDs[0]]
	require.Equal(t, models.SourceCloudDownload, out.Source)
	require.Equal(t, []byte("ccc"), out.Bytes)
	r.requireMonotonicProgressTo100()
}

func TestCloudDownload_MissingObjectFailsRun(t *testing.T) {
	r := newRig(t, models.ServiceCloudDownload)
	reg := cloud.NewRegistry()
	reg.Register(cloud.NewMemoryProvider(cloud.Memory))

	svc := NewCloudDownload(r.bus, nil, reg)
	require.NoError(t, svc.Initialize())

	opts := CloudDownloadOptions{Provider: cloud.Memory, FilePath: "nope"}
	err := svc.Start(context.Background(), StartInputs{JobID: "j"}, opts)
	require.ErrorIs(t, err, common.ErrNotFound)
	require.Len(t, r.errors, 1)
	require.Equal(t, common.KindNotFound, r.errors[0].Kind)
}

func TestSuffixName(t *testing.T) {
	require.Equal(t, "a_compressed.pdf", suffixName("a.pdf", "_compressed", ""))
	require.Equal(t, "a.txt", suffixName("a.pdf", "", "txt"))
	require.Equal(t, "noext_summary", suffixName("noext", "_summary", ""))
	require.Equal(t, "noext.json", suffixName("noext", "", "json"))
}
