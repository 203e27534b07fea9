package recorder

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"

	"sosapp/internal/models"
	"sosapp/internal/ports"
	"sosapp/pkg/logger"
)

type Options struct {
	Dir         string
	ContentType string
	MaxDuration time.Duration
	MaxBytes    int64
}

// FileRecorder is the capture device. The handset streams encoded video
// into it with Write while a recording is open; the clip is finalized on
// StopRecording or when a duration or size limit is hit.
type FileRecorder struct {
	mu     sync.Mutex
	opts   Options
	active *recording
	logger *logger.Logger
	now    func() time.Time
}

type recording struct {
	id        string
	path      string
	file      *os.File
	size      int64
	startedAt time.Time
	timer     *time.Timer
	result    chan models.RecordingResult
}

var _ ports.CaptureDevice = (*FileRecorder)(nil)

func NewFileRecorder(opts Options, log *logger.Logger) *FileRecorder {
	if opts.ContentType == "" {
		opts.ContentType = "video/mp4"
	}

	return &FileRecorder{
		opts:   opts,
		logger: log.WithComponent("recorder"),
		now:    time.Now,
	}
}

func (r *FileRecorder) StartRecording(ctx context.Context) (<-chan models.RecordingResult, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.active != nil {
		return nil, models.ErrDeviceBusy
	}

	if err := os.MkdirAll(r.opts.Dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create recording directory: %w", err)
	}

	id := uuid.New().String()
	path := filepath.Join(r.opts.Dir, id+extensionFor(r.opts.ContentType))

	file, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("failed to create recording file: %w", err)
	}

	rec := &recording{
		id:        id,
		path:      path,
		file:      file,
		startedAt: r.now(),
		result:    make(chan models.RecordingResult, 1),
	}

	if r.opts.MaxDuration > 0 {
		rec.timer = time.AfterFunc(r.opts.MaxDuration, func() {
			r.logger.WithField("recording_id", rec.id).Info("Maximum recording duration reached")
			r.mu.Lock()
			defer r.mu.Unlock()
			r.finishLocked(rec)
		})
	}

	r.active = rec
	r.logger.WithField("recording_id", id).Info("Recording started")

	return rec.result, nil
}

func (r *FileRecorder) StopRecording(ctx context.Context) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.active == nil {
		return
	}
	r.finishLocked(r.active)
}

// Write appends video bytes to the open recording. When the size limit is
// reached the bytes that still fit are kept, the clip is finalized and
// ErrRecordingLimit is returned.
func (r *FileRecorder) Write(p []byte) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	rec := r.active
	if rec == nil {
		return 0, models.ErrNotRecording
	}

	chunk := p
	limited := false
	if r.opts.MaxBytes > 0 && rec.size+int64(len(p)) > r.opts.MaxBytes {
		chunk = p[:r.opts.MaxBytes-rec.size]
		limited = true
	}

	n, err := rec.file.Write(chunk)
	rec.size += int64(n)
	if err != nil {
		r.failLocked(rec, fmt.Errorf("failed to write recording: %w", err))
		return n, err
	}

	if limited {
		r.logger.WithField("recording_id", rec.id).Info("Maximum recording size reached")
		r.finishLocked(rec)
		return n, models.ErrRecordingLimit
	}

	return n, nil
}

func (r *FileRecorder) IsRecording() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.active != nil
}

func (r *FileRecorder) finishLocked(rec *recording) {
	if r.active != rec {
		return
	}
	r.active = nil

	if rec.timer != nil {
		rec.timer.Stop()
	}

	if err := rec.file.Close(); err != nil {
		r.resolve(rec, models.RecordingResult{Err: fmt.Errorf("failed to finalize recording: %w", err)})
		return
	}

	if rec.size == 0 {
		os.Remove(rec.path)
		r.resolve(rec, models.RecordingResult{Err: models.ErrRecordingAborted})
		return
	}

	r.resolve(rec, models.RecordingResult{
		File: models.FileHandle{
			ID:          rec.id,
			Path:        rec.path,
			ContentType: r.opts.ContentType,
			Size:        rec.size,
			Duration:    r.now().Sub(rec.startedAt),
		},
	})
}

func (r *FileRecorder) failLocked(rec *recording, err error) {
	if r.active != rec {
		return
	}
	r.active = nil

	if rec.timer != nil {
		rec.timer.Stop()
	}
	rec.file.Close()
	os.Remove(rec.path)

	r.resolve(rec, models.RecordingResult{Err: err})
}

func (r *FileRecorder) resolve(rec *recording, result models.RecordingResult) {
	entry := r.logger.WithFields(map[string]interface{}{
		"recording_id": rec.id,
		"size":         rec.size,
	})
	if result.Err != nil {
		entry.WithError(result.Err).Warn("Recording ended without a clip")
	} else {
		entry.Info("Recording finished")
	}

	rec.result <- result
	close(rec.result)
}

func extensionFor(contentType string) string {
	switch contentType {
	case "video/quicktime":
		return ".mov"
	case "video/webm":
		return ".webm"
	default:
		return ".mp4"
	}
}
