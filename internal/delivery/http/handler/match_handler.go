package handler

import (
	"smartmatch/internal/breaker"
	"smartmatch/internal/delivery/http/dto"
	"smartmatch/internal/delivery/http/middleware"
	"smartmatch/internal/domain/matching"
	"smartmatch/internal/pkg/response"
	"smartmatch/internal/usecase"

	"github.com/gofiber/fiber/v3"
)

type MatchHandler struct {
	uc       usecase.MatchingUsecase
	breakers *breaker.Registry
}

func NewMatchHandler(uc usecase.MatchingUsecase, breakers *breaker.Registry) *MatchHandler {
	return &MatchHandler{uc: uc, breakers: breakers}
}

func (h *MatchHandler) RegisterRoutes(r fiber.Router) {
	if r == nil {
		return
	}

	r.Post("/match", h.Match)
	r.Get("/algorithms", h.ListAlgorithms)
}

func (h *MatchHandler) Match(c fiber.Ctx) error {
	var req dto.MatchRequest
	if err := c.Bind().Body(&req); err != nil {
		return middleware.NewAppError(fiber.StatusBadRequest, "Bad request", nil, err)
	}
	if err := req.Validate(); err != nil {
		return middleware.NewAppError(fiber.StatusBadRequest, err.Error(), nil, err)
	}

	candidate, jobs, opts, force := req.ToDomain()

	res := h.uc.Match(c.Context(), candidate, jobs, opts, force)

	return response.Success(c, fiber.StatusOK, response.MessageOK, dto.FromMatchingResponse(res))
}

func (h *MatchHandler) ListAlgorithms(c fiber.Ctx) error {
	algos := matching.AllAlgorithms()

	out := make([]map[string]any, 0, len(algos))
	snapshots := make(map[string]breaker.Snapshot, len(algos))
	for _, s := range h.breakers.Snapshots() {
		snapshots[s.Name] = s
	}

	for _, a := range algos {
		entry := map[string]any{
			"name":           string(a),
			"fallback_order": matching.FallbackOrder(a),
		}
		if s, ok := snapshots[string(a)]; ok {
			entry["breaker"] = s
		}
		out = append(out, entry)
	}

	return response.Success(c, fiber.StatusOK, response.MessageOK, out)
}
