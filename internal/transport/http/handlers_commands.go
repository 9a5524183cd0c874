package httptransport

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"domreg/internal/flows"
	"domreg/pkg/domain"
	"domreg/pkg/platform/httputil"
	"domreg/pkg/requestcontext"
)

// CommandService is the flow surface the command handlers need.
type CommandService interface {
	Create(ctx context.Context, req flows.CreateRequest) (*flows.Result, error)
	Renew(ctx context.Context, req flows.RenewRequest) (*flows.Result, error)
	Transfer(ctx context.Context, req flows.TransferRequest) (*flows.Result, error)
}

// CommandHandler serves the domain command endpoints.
type CommandHandler struct {
	flows  CommandService
	logger *slog.Logger
}

func NewCommandHandler(flowService CommandService, logger *slog.Logger) *CommandHandler {
	return &CommandHandler{flows: flowService, logger: logger}
}

// Register mounts the command endpoints.
func (h *CommandHandler) Register(r chi.Router) {
	r.Post("/domains", h.HandleCreate)
	r.Post("/domains/{name}/renew", h.HandleRenew)
	r.Post("/domains/{name}/transfer", h.HandleTransfer)
}

type createRequest struct {
	Name  string  `json:"name"`
	Years int     `json:"years"`
	Token *string `json:"token,omitempty"`
}

type renewRequest struct {
	Years int     `json:"years"`
	Token *string `json:"token,omitempty"`
}

type transferRequest struct {
	Token *string `json:"token,omitempty"`
}

type commandResponse struct {
	Domain             string       `json:"domain"`
	RegistrarID        string       `json:"registrar_id"`
	ExpirationTime     time.Time    `json:"expiration_time"`
	Price              domain.Money `json:"price"`
	AppliedToken       string       `json:"applied_token,omitempty"`
	TokenRedeemed      bool         `json:"token_redeemed,omitempty"`
	BulkPricingRemoved bool         `json:"bulk_pricing_removed,omitempty"`
}

func toCommandResponse(result *flows.Result) commandResponse {
	return commandResponse{
		Domain:             result.Domain.Name.String(),
		RegistrarID:        result.Domain.RegistrarID.String(),
		ExpirationTime:     result.Domain.ExpirationTime,
		Price:              result.Price,
		AppliedToken:       result.AppliedToken,
		TokenRedeemed:      result.Redeemed,
		BulkPricingRemoved: result.BulkPricingRemoved,
	}
}

// HandleCreate handles POST /domains.
func (h *CommandHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	req, ok := httputil.DecodeJSON[createRequest](w, r, h.logger)
	if !ok {
		return
	}

	result, err := h.flows.Create(ctx, flows.CreateRequest{
		Name:  req.Name,
		Years: req.Years,
		Token: req.Token,
	})
	if err != nil {
		h.logger.WarnContext(ctx, "domain create rejected",
			"request_id", requestcontext.RequestID(ctx), "domain", req.Name, "error", err)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, toCommandResponse(result))
}

// HandleRenew handles POST /domains/{name}/renew.
func (h *CommandHandler) HandleRenew(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	name := chi.URLParam(r, "name")

	req, ok := httputil.DecodeJSON[renewRequest](w, r, h.logger)
	if !ok {
		return
	}

	result, err := h.flows.Renew(ctx, flows.RenewRequest{
		Name:  name,
		Years: req.Years,
		Token: req.Token,
	})
	if err != nil {
		h.logger.WarnContext(ctx, "domain renew rejected",
			"request_id", requestcontext.RequestID(ctx), "domain", name, "error", err)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toCommandResponse(result))
}

// HandleTransfer handles POST /domains/{name}/transfer.
func (h *CommandHandler) HandleTransfer(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	name := chi.URLParam(r, "name")

	req, ok := httputil.DecodeJSON[transferRequest](w, r, h.logger)
	if !ok {
		return
	}

	result, err := h.flows.Transfer(ctx, flows.TransferRequest{
		Name:  name,
		Token: req.Token,
	})
	if err != nil {
		h.logger.WarnContext(ctx, "domain transfer rejected",
			"request_id", requestcontext.RequestID(ctx), "domain", name, "error", err)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toCommandResponse(result))
}
