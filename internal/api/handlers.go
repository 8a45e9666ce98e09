package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/matzehuels/worksite/pkg/buildinfo"
	werrors "github.com/matzehuels/worksite/pkg/errors"
	"github.com/matzehuels/worksite/pkg/export"
	"github.com/matzehuels/worksite/pkg/pipeline"
)

type healthResponse struct {
	Status string         `json:"status"`
	Build  buildinfo.Info `json:"build"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, healthResponse{Status: "ok", Build: buildinfo.Current()})
}

func (s *Server) handleBuilders(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string][]string{"builders": s.runner.Registry.Names()})
}

func (s *Server) handleStyles(w http.ResponseWriter, r *http.Request) {
	if s.runner.Project == nil {
		s.writeError(w, r, werrors.New(werrors.ErrCodeUnsupported, "no project configured"))
		return
	}
	names, err := s.runner.Project.Styles(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"pack": s.runner.Project.Pack, "styles": names})
}

func (s *Server) handleStructures(w http.ResponseWriter, r *http.Request) {
	if s.runner.Project == nil {
		s.writeError(w, r, werrors.New(werrors.ErrCodeUnsupported, "no project configured"))
		return
	}
	names, err := s.runner.Project.Structures(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"pack": s.runner.Project.Pack, "structures": names})
}

type statsResponse struct {
	Nodes    int   `json:"nodes"`
	Placed   int   `json:"placed"`
	CacheHit bool  `json:"cache_hit"`
	BuildMS  int64 `json:"build_ms"`
}

type buildResponse struct {
	Seed      int64          `json:"seed"`
	Artifacts map[string]any `json:"artifacts"`
	Stats     statsResponse  `json:"stats"`
}

func (s *Server) handleBuild(w http.ResponseWriter, r *http.Request) {
	var opts pipeline.Options
	if err := decodeBody(w, r, &opts); err != nil {
		s.writeError(w, r, err)
		return
	}
	opts.Logger = s.logger

	res, err := s.runner.Execute(r.Context(), opts)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	artifacts := make(map[string]any, len(res.Artifacts))
	for format, data := range res.Artifacts {
		artifacts[format] = artifactValue(format, data)
	}
	writeJSON(w, http.StatusOK, buildResponse{
		Seed:      res.Build.Seed.Value(),
		Artifacts: artifacts,
		Stats: statsResponse{
			Nodes:    res.Stats.Nodes,
			Placed:   res.Stats.Placed,
			CacheHit: res.Stats.CacheHit,
			BuildMS:  res.Stats.BuildTime.Milliseconds(),
		},
	})
}

// artifactValue embeds JSON formats as JSON and everything else as a string.
func artifactValue(format string, data []byte) any {
	switch format {
	case pipeline.FormatDOT, pipeline.FormatSVG:
		return string(data)
	default:
		return json.RawMessage(data)
	}
}

type batchRequest struct {
	pipeline.Options
	Seeds []int64 `json:"seeds"`
}

type batchItem struct {
	Seed      int64           `json:"seed"`
	Nodes     int             `json:"nodes"`
	Placed    int             `json:"placed"`
	CacheHit  bool            `json:"cache_hit"`
	Materials json.RawMessage `json:"materials"`
}

func (s *Server) handleBatch(w http.ResponseWriter, r *http.Request) {
	var req batchRequest
	if err := decodeBody(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	switch {
	case len(req.Seeds) == 0:
		s.writeError(w, r, werrors.New(werrors.ErrCodeInvalidInput, "seeds are required"))
		return
	case len(req.Seeds) > MaxBatchSeeds:
		s.writeError(w, r, werrors.New(werrors.ErrCodeInvalidInput, "at most %d seeds per batch, got %d", MaxBatchSeeds, len(req.Seeds)))
		return
	}

	opts := req.Options
	opts.Logger = s.logger
	job, err := s.runner.Load(r.Context(), opts)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	builds, err := s.runner.BuildMany(r.Context(), job, req.Seeds, opts)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	items := make([]batchItem, 0, len(builds))
	for _, b := range builds {
		materials, err := b.Flat.MaterialsToJSON()
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		items = append(items, batchItem{
			Seed:      b.Seed.Value(),
			Nodes:     len(b.Flat.Items),
			Placed:    len(b.Flat.Placed()),
			CacheHit:  b.CacheHit,
			Materials: materials,
		})
	}
	writeJSON(w, http.StatusOK, map[string]any{"builds": items})
}

type exportResponse struct {
	Channel  string `json:"channel"`
	Seed     int64  `json:"seed"`
	Placed   int    `json:"placed"`
	Updates  int    `json:"updates"`
	Duration string `json:"duration"`
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	if s.exporter == nil {
		s.writeError(w, r, werrors.New(werrors.ErrCodeUnsupported, "no architect configured"))
		return
	}
	var opts pipeline.Options
	if err := decodeBody(w, r, &opts); err != nil {
		s.writeError(w, r, err)
		return
	}
	opts.Logger = s.logger
	opts.Formats = []string{pipeline.FormatMaterials}

	start := time.Now()
	res, err := s.runner.Execute(r.Context(), opts)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	updates := 0
	channel, err := s.runner.Export(r.Context(), s.exporter, res.Build, func(export.Update) { updates++ })
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, exportResponse{
		Channel:  channel,
		Seed:     res.Build.Seed.Value(),
		Placed:   res.Stats.Placed,
		Updates:  updates,
		Duration: time.Since(start).Round(time.Millisecond).String(),
	})
}
