package handler

import (
	"context"
	"log"
	"strconv"

	"smartmatch/internal/breaker"
	"smartmatch/internal/delivery/http/middleware"
	"smartmatch/internal/domain/matching"
	"smartmatch/internal/pkg/response"
	"smartmatch/internal/repository"

	"github.com/gofiber/fiber/v3"
)

const defaultHistoryLimit = 50

// cachePrefixes enumerates every namespace the service writes so a blanket
// flush cannot touch foreign keys on a shared Redis.
var cachePrefixes = []string{"request:", "selection:", "match:nexten:", "match:v1:"}

type CacheFlusher interface {
	FlushPrefix(ctx context.Context, prefix string) (int64, error)
}

type AdminHandler struct {
	breakers *breaker.Registry
	cache    CacheFlusher
	history  repository.MatchHistoryRepository
	logger   *log.Logger
}

func NewAdminHandler(breakers *breaker.Registry, cache CacheFlusher, history repository.MatchHistoryRepository, logger *log.Logger) *AdminHandler {
	if logger == nil {
		logger = log.Default()
	}
	return &AdminHandler{breakers: breakers, cache: cache, history: history, logger: logger}
}

func (h *AdminHandler) RegisterRoutes(r fiber.Router) {
	if r == nil {
		return
	}

	r.Get("/breakers", h.ListBreakers)
	r.Post("/breakers/:algorithm/reset", h.ResetBreaker)
	r.Post("/cache/flush", h.FlushCache)
	r.Get("/history", h.ListHistory)
}

func (h *AdminHandler) ListBreakers(c fiber.Ctx) error {
	return response.Success(c, fiber.StatusOK, response.MessageOK, h.breakers.Snapshots())
}

func (h *AdminHandler) ResetBreaker(c fiber.Ctx) error {
	algo, ok := matching.ParseAlgorithm(c.Params("algorithm"))
	if !ok {
		return middleware.NewAppError(fiber.StatusBadRequest, "Unknown algorithm", nil, nil)
	}

	br := h.breakers.Get(string(algo))
	br.Reset()

	h.logger.Printf("[Admin] breaker reset | rid=%s algorithm=%s", middleware.RequestID(c), algo)
	return response.Success(c, fiber.StatusOK, response.MessageOK, br.Snapshot())
}

func (h *AdminHandler) FlushCache(c fiber.Ctx) error {
	if h.cache == nil {
		return middleware.NewAppError(fiber.StatusNotFound, "Cache disabled", nil, nil)
	}

	prefixes := cachePrefixes
	if p := c.Query("prefix"); p != "" {
		if !knownCachePrefix(p) {
			return middleware.NewAppError(fiber.StatusBadRequest, "Unknown cache prefix", nil, nil)
		}
		prefixes = []string{p}
	}

	var deleted int64
	for _, prefix := range prefixes {
		n, err := h.cache.FlushPrefix(c.Context(), prefix)
		if err != nil {
			return middleware.NewAppError(fiber.StatusInternalServerError, response.MessageInternalServerError, nil, err)
		}
		deleted += n
	}

	h.logger.Printf("[Admin] cache flushed | rid=%s prefixes=%d deleted=%d", middleware.RequestID(c), len(prefixes), deleted)
	return response.Success(c, fiber.StatusOK, response.MessageOK, map[string]any{"deleted": deleted})
}

func (h *AdminHandler) ListHistory(c fiber.Ctx) error {
	if h.history == nil {
		return middleware.NewAppError(fiber.StatusNotFound, "History disabled", nil, nil)
	}

	limit := defaultHistoryLimit
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			return middleware.NewAppError(fiber.StatusBadRequest, "Invalid limit", nil, err)
		}
		limit = n
	}

	entries, err := h.history.ListRecent(c.Context(), limit)
	if err != nil {
		return middleware.NewAppError(fiber.StatusInternalServerError, response.MessageInternalServerError, nil, err)
	}
	return response.Success(c, fiber.StatusOK, response.MessageOK, entries)
}

func knownCachePrefix(p string) bool {
	for _, known := range cachePrefixes {
		if p == known {
			return true
		}
	}
	return false
}
