// Package router validates and normalizes API input before it reaches
// the job store.
package router

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/maposmatic/ocitysmap-go/internal/coords"
	"github.com/maposmatic/ocitysmap-go/internal/jobs"
	"github.com/maposmatic/ocitysmap-go/internal/paper"
)

const maxBodyBytes = 64 << 10

// Defaults fill the optional request fields left empty by the client.
type Defaults struct {
	Paper  string
	Locale string
	Scale  float64
}

// ParseJobRequest validates user input for POST /jobs and returns a
// normalized request.
func ParseJobRequest(r *http.Request, def Defaults) (jobs.Request, string, error) {
	var warn string

	var req jobs.Request
	body := io.LimitReader(r.Body, maxBodyBytes)
	dec := json.NewDecoder(body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		return jobs.Request{}, "", fmt.Errorf("invalid request body: %w", err)
	}

	req.Title = strings.TrimSpace(req.Title)
	if req.Title == "" {
		return jobs.Request{}, "", errors.New("missing required field: title")
	}

	req.AreaWKT = strings.TrimSpace(req.AreaWKT)
	if req.AreaWKT == "" {
		return jobs.Request{}, "", errors.New("missing required field: area_wkt")
	}
	if _, err := coords.ParseWKT(req.AreaWKT); err != nil {
		return jobs.Request{}, "", fmt.Errorf("invalid area_wkt: %w", err)
	}

	req.Paper = strings.TrimSpace(req.Paper)
	if req.Paper == "" {
		req.Paper = def.Paper
	}
	if _, err := paper.Lookup(req.Paper); err != nil {
		return jobs.Request{}, "", fmt.Errorf("invalid paper: %w", err)
	}

	switch paper.IndexPosition(req.IndexPos) {
	case paper.IndexNone, paper.IndexSide, paper.IndexBottom:
	default:
		return jobs.Request{}, "", fmt.Errorf("invalid index_position %q (want side, bottom or empty)", req.IndexPos)
	}

	if req.Locale == "" {
		req.Locale = def.Locale
	}

	if req.Multipage {
		if req.Scale == 0 {
			req.Scale = def.Scale
		}
		if req.Scale <= 0 {
			return jobs.Request{}, "", fmt.Errorf("invalid scale %g for a multipage map", req.Scale)
		}
		// multipage maps place the index on trailing pages
		if req.IndexPos != "" {
			warn = "index_position is ignored for multipage maps"
			req.IndexPos = ""
		}
	} else if req.Scale != 0 {
		warn = "scale is ignored for single page maps; the paper determines it"
		req.Scale = 0
	}

	return req, warn, nil
}

// ParsePapersQuery reads the optional area filter of GET /papers.
// With an area the response is restricted to papers the area fits on.
func ParsePapersQuery(r *http.Request) (*coords.BoundingBox, paper.IndexPosition, error) {
	raw := strings.TrimSpace(r.URL.Query().Get("area"))
	pos := paper.IndexPosition(strings.TrimSpace(r.URL.Query().Get("index_position")))
	switch pos {
	case paper.IndexNone, paper.IndexSide, paper.IndexBottom:
	default:
		return nil, "", fmt.Errorf("invalid index_position %q", pos)
	}
	if raw == "" {
		return nil, pos, nil
	}
	bbox, err := coords.ParseWKT(raw)
	if err != nil {
		return nil, "", fmt.Errorf("invalid area: %w", err)
	}
	return &bbox, pos, nil
}
