// Package jobs tracks map rendering requests: their canonical
// fingerprints, their lifecycle state in Redis and the Kafka plumbing
// between the API and the render workers.
package jobs

import (
	"fmt"
	"strings"
	"time"

	"github.com/cespare/xxhash/v2"
)

// Request is one map rendering order, as submitted through the API.
type Request struct {
	Title   string `json:"title"`
	AreaWKT string `json:"area_wkt"`

	Paper     string `json:"paper"`
	Landscape bool   `json:"landscape"`
	IndexPos  string `json:"index_position"`

	Locale string `json:"locale"`

	// Scale is the denominator for multi-page maps; single-page maps
	// derive it from the paper.
	Scale     float64 `json:"scale,omitempty"`
	Multipage bool    `json:"multipage,omitempty"`
}

// Fingerprint is a stable identifier of the request content, so a
// resubmitted identical order can reuse the finished render.
func (r Request) Fingerprint() string {
	canon := strings.Join([]string{
		strings.TrimSpace(r.Title),
		collapseWhitespace(r.AreaWKT),
		strings.ToLower(strings.TrimSpace(r.Paper)),
		fmt.Sprintf("%t", r.Landscape),
		strings.ToLower(strings.TrimSpace(r.IndexPos)),
		strings.TrimSpace(r.Locale),
		fmt.Sprintf("%g", r.Scale),
		fmt.Sprintf("%t", r.Multipage),
	}, "|")
	return fmt.Sprintf("%016x", xxhash.Sum64String(canon))
}

func collapseWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// Status is the lifecycle state of a job.
type Status string

const (
	StatusSubmitted Status = "submitted"
	StatusRendering Status = "rendering"
	StatusDone      Status = "done"
	StatusFailed    Status = "failed"
)

// Job is the stored state of one rendering order.
type Job struct {
	ID      string  `json:"id"`
	Request Request `json:"request"`

	Status Status `json:"status"`
	Error  string `json:"error,omitempty"`

	// OutputPath is the rendered PDF, set once Status is done.
	OutputPath string `json:"output_path,omitempty"`

	SubmittedAt time.Time `json:"submitted_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// New builds a submitted job from a request, identified by the
// request fingerprint.
func New(r Request) Job {
	now := time.Now().UTC()
	return Job{
		ID:          r.Fingerprint(),
		Request:     r,
		Status:      StatusSubmitted,
		SubmittedAt: now,
		UpdatedAt:   now,
	}
}
