package handlers

import (
	"context"

	"callbook/internal/gitver"
	"callbook/internal/server/dto"
)

// HealthHandler serves the health check endpoint.
type HealthHandler struct {
	cfg *Config
	git *gitver.Repo
}

// NewHealthHandler creates a new health handler.
func NewHealthHandler(cfg *Config, git *gitver.Repo) *HealthHandler {
	return &HealthHandler{cfg: cfg, git: git}
}

// Health returns server status, build info and the data history length.
func (h *HealthHandler) Health(ctx context.Context, _ *dto.HealthRequest) (*dto.HealthResponse, error) {
	commits := 0
	if h.git != nil {
		commits, _ = h.git.Count(ctx)
	}
	return &dto.HealthResponse{
		Status:    "ok",
		Version:   h.cfg.Version,
		GoVersion: h.cfg.GoVersion,
		Commits:   commits,
	}, nil
}
