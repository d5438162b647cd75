package services

import (
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"nexdoc/console/models"
)

// UploadPhase is the state of one file moving through upload and analysis.
type UploadPhase string

const (
	PhaseUploading      UploadPhase = "uploading"
	PhaseUploaded       UploadPhase = "uploaded"
	PhaseUploadFailed   UploadPhase = "upload_failed"
	PhaseAnalyzing      UploadPhase = "analyzing"
	PhaseResults        UploadPhase = "results"
	PhaseAnalysisFailed UploadPhase = "analysis_failed"
)

// Upload tracks one file through Uploading → {Uploaded, UploadFailed} and
// then Analyzing → {Results, AnalysisFailed}.
//
// Progress is a cosmetic ramp, not a measurement: the transport exposes no
// real progress, so the value climbs on a timer and is capped below 100
// until the terminating API response arrives. Completion is decided solely
// by that response; nothing may treat Progress reaching 100 as a signal.
type Upload struct {
	TempID     string
	ContractID int
	Name       string
	Size       string
	Phase      UploadPhase
	Progress   int
	Err        string
	Results    []models.AnalysisResult
}

// uploadTicker ramps the cosmetic progress value until stopped.
type uploadTicker struct {
	mu   sync.Mutex
	up   *Upload
	emit func(Upload)
	stop chan struct{}
	done chan struct{}
}

func startTicker(up *Upload, interval time.Duration, step, cap int, emit func(Upload)) *uploadTicker {
	t := &uploadTicker{up: up, emit: emit, stop: make(chan struct{}), done: make(chan struct{})}
	go func() {
		defer close(t.done)
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-t.stop:
				return
			case <-ticker.C:
				t.mu.Lock()
				if t.up.Progress < cap {
					t.up.Progress += step
					if t.up.Progress > cap {
						t.up.Progress = cap
					}
					snapshot := *t.up
					t.mu.Unlock()
					t.notify(snapshot)
					continue
				}
				t.mu.Unlock()
			}
		}
	}()
	return t
}

func (t *uploadTicker) notify(snapshot Upload) {
	if t.emit != nil {
		t.emit(snapshot)
	}
}

// finish stops the ramp and applies fn to the upload under the lock.
func (t *uploadTicker) finish(fn func(*Upload)) Upload {
	close(t.stop)
	<-t.done
	t.mu.Lock()
	defer t.mu.Unlock()
	fn(t.up)
	return *t.up
}

type uploadResponse struct {
	ID     int    `json:"id"`
	Name   string `json:"name"`
	Size   string `json:"size"`
	Status string `json:"status"`
}

// Upload sends one file to the backend. onChange (optional) receives state
// snapshots as the cosmetic progress advances and on every phase change.
// On success the contract list is refetched wholesale rather than spliced.
func (s *ContractService) Upload(ctx context.Context, filename string, size int64, r io.Reader, onChange func(Upload)) (Upload, error) {
	up := Upload{
		TempID:   uuid.NewString(),
		Name:     filename,
		Size:     FormatFileSize(size),
		Phase:    PhaseUploading,
		Progress: 0,
	}
	if onChange != nil {
		onChange(up)
	}

	ticker := startTicker(&up, 200*time.Millisecond, 10, 90, onChange)

	var resp uploadResponse
	err := s.api.UploadFile(ctx, "/contracts/upload", filename, r, &resp)
	if err != nil {
		final := ticker.finish(func(u *Upload) {
			u.Phase = PhaseUploadFailed
			u.Progress = 0
			u.Err = err.Error()
		})
		if onChange != nil {
			onChange(final)
		}
		return final, err
	}

	final := ticker.finish(func(u *Upload) {
		u.Phase = PhaseUploaded
		u.Progress = 100
		u.ContractID = resp.ID
	})
	if onChange != nil {
		onChange(final)
	}

	if err := s.Store.Fetch(ctx); err != nil {
		// The upload itself succeeded; a failed refresh is reported at the
		// screen level by the store's Failed state.
		log.Warnf("Contract list refresh after upload failed: %v", err)
	}
	return final, nil
}

// AnalysisResponse is the body of GET /contracts/{id}/analysis.
type AnalysisResponse struct {
	ContractID int                     `json:"contract_id"`
	Status     string                  `json:"status"`
	Results    []models.AnalysisResult `json:"results"`
}

// Analyze runs the analysis step for an uploaded file. The same cosmetic
// ramp applies; the phase only moves to Results when the backend responds.
func (s *ContractService) Analyze(ctx context.Context, up Upload, onChange func(Upload)) (Upload, error) {
	if up.Phase != PhaseUploaded {
		return up, fmt.Errorf("cannot analyze upload in phase %q", up.Phase)
	}
	up.Phase = PhaseAnalyzing
	up.Progress = 0
	if onChange != nil {
		onChange(up)
	}

	ticker := startTicker(&up, 500*time.Millisecond, 5, 90, onChange)

	var resp AnalysisResponse
	err := s.api.GetJSON(ctx, fmt.Sprintf("/contracts/%d/analysis", up.ContractID), &resp)
	if err != nil {
		final := ticker.finish(func(u *Upload) {
			u.Phase = PhaseAnalysisFailed
			u.Err = err.Error()
		})
		if onChange != nil {
			onChange(final)
		}
		return final, err
	}

	final := ticker.finish(func(u *Upload) {
		u.Phase = PhaseResults
		u.Progress = 100
		u.Results = resp.Results
	})
	if onChange != nil {
		onChange(final)
	}
	return final, nil
}

// FormatFileSize renders a byte count the way the backend does ("2.3 MB").
func FormatFileSize(bytes int64) string {
	const unit = 1024
	if bytes < unit {
		return fmt.Sprintf("%d B", bytes)
	}
	div, exp := int64(unit), 0
	for n := bytes / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(bytes)/float64(div), "KMGT"[exp])
}
