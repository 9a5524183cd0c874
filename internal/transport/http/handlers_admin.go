package httptransport

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	tldstore "domreg/internal/tld"
	"domreg/internal/token/models"
	tokenstore "domreg/internal/token/store"
	"domreg/pkg/domain"
	"domreg/pkg/epperr"
	"domreg/pkg/platform/httputil"
	"domreg/pkg/platform/sentinel"
	stringsutil "domreg/pkg/platform/strings"
	"domreg/pkg/requestcontext"
)

// AdminHandler serves token and TLD administration.
type AdminHandler struct {
	tokens tokenstore.Store
	tlds   tldstore.Store
	logger *slog.Logger
}

func NewAdminHandler(tokens tokenstore.Store, tlds tldstore.Store, logger *slog.Logger) *AdminHandler {
	return &AdminHandler{tokens: tokens, tlds: tlds, logger: logger}
}

// Register mounts the admin endpoints.
func (h *AdminHandler) Register(r chi.Router) {
	r.Post("/admin/tokens", h.HandleCreateToken)
	r.Get("/admin/tokens/{key}", h.HandleGetToken)
	r.Put("/admin/tlds/{name}", h.HandlePutTLD)
	r.Get("/admin/tlds", h.HandleListTLDs)
	r.Get("/admin/tlds/{name}", h.HandleGetTLD)
}

type createTokenRequest struct {
	Key                 string        `json:"key"`
	Type                string        `json:"type"`
	Behavior            string        `json:"behavior,omitempty"`
	DiscountFraction    float64       `json:"discount_fraction,omitempty"`
	DiscountPrice       *domain.Money `json:"discount_price,omitempty"`
	DiscountPremiums    bool          `json:"discount_premiums,omitempty"`
	AllowedCommands     []string      `json:"allowed_commands,omitempty"`
	AllowedTLDs         []string      `json:"allowed_tlds,omitempty"`
	AllowedRegistrarIDs []string      `json:"allowed_registrar_ids,omitempty"`
	DomainName          string        `json:"domain_name,omitempty"`
	PromoStart          *time.Time    `json:"promo_start,omitempty"`
	PromoEnd            *time.Time    `json:"promo_end,omitempty"`
}

var errBadTokenRequest = epperr.New(epperr.CodeParameterPolicy, "Invalid token definition")

func (req createTokenRequest) toToken(now time.Time) (*models.Token, error) {
	tok := models.New(req.Key, models.TokenType(req.Type), now)
	if req.Behavior != "" {
		tok.Behavior = models.TokenBehavior(req.Behavior)
	}
	tok.DiscountFraction = req.DiscountFraction
	tok.DiscountPrice = req.DiscountPrice
	tok.DiscountPremiums = req.DiscountPremiums
	tok.AllowedTLDs = stringsutil.DedupeAndTrimLower(req.AllowedTLDs)
	tok.DomainName = req.DomainName

	for _, c := range req.AllowedCommands {
		kind, err := domain.ParseCommandKind(c)
		if err != nil {
			return nil, epperr.Wrap(err, epperr.CodeParameterPolicy, "Invalid token definition")
		}
		tok.AllowedCommands = append(tok.AllowedCommands, kind)
	}
	for _, r := range req.AllowedRegistrarIDs {
		registrarID, err := domain.ParseRegistrarID(r)
		if err != nil {
			return nil, epperr.Wrap(err, epperr.CodeParameterPolicy, "Invalid token definition")
		}
		tok.AllowedRegistrarIDs = append(tok.AllowedRegistrarIDs, registrarID)
	}
	if req.PromoStart != nil && req.PromoEnd != nil {
		schedule, err := models.PromoSchedule(*req.PromoStart, *req.PromoEnd)
		if err != nil {
			return nil, epperr.Wrap(err, epperr.CodeParameterPolicy, "Invalid token definition")
		}
		tok.StatusSchedule = schedule
	} else if req.PromoStart != nil || req.PromoEnd != nil {
		return nil, errBadTokenRequest
	}

	if err := tok.Validate(); err != nil {
		return nil, epperr.Wrap(err, epperr.CodeParameterPolicy, "Invalid token definition")
	}
	return &tok, nil
}

// HandleCreateToken handles POST /admin/tokens.
func (h *AdminHandler) HandleCreateToken(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	req, ok := httputil.DecodeJSON[createTokenRequest](w, r, h.logger)
	if !ok {
		return
	}

	if _, reserved := models.StaticTokenByKey(req.Key); reserved {
		httputil.WriteError(w, errBadTokenRequest)
		return
	}
	if _, err := h.tokens.Get(ctx, req.Key); err == nil {
		httputil.WriteError(w, epperr.New(epperr.CodeObjectExists, "Token already exists"))
		return
	}

	tok, err := req.toToken(requestcontext.Now(ctx))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	if err := h.tokens.Put(ctx, tok); err != nil {
		h.logger.ErrorContext(ctx, "token create failed",
			"request_id", requestcontext.RequestID(ctx), "token", req.Key, "error", err)
		httputil.WriteError(w, err)
		return
	}

	h.logger.InfoContext(ctx, "token created",
		"request_id", requestcontext.RequestID(ctx), "token", tok.Key, "type", tok.Type)
	httputil.WriteJSON(w, http.StatusCreated, toTokenResponse(tok))
}

// HandleGetToken handles GET /admin/tokens/{key}.
func (h *AdminHandler) HandleGetToken(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	key := chi.URLParam(r, "key")

	tok, err := h.tokens.Get(ctx, key)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			httputil.WriteError(w, epperr.New(epperr.CodeObjectNotFound, "Token does not exist"))
			return
		}
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toTokenResponse(tok))
}

type tokenResponse struct {
	Key              string                  `json:"key"`
	Type             models.TokenType        `json:"type"`
	Behavior         models.TokenBehavior    `json:"behavior"`
	DiscountFraction float64                 `json:"discount_fraction,omitempty"`
	DiscountPrice    *domain.Money           `json:"discount_price,omitempty"`
	DiscountPremiums bool                    `json:"discount_premiums,omitempty"`
	Redeemed         bool                    `json:"redeemed"`
	RedemptionID     *domain.HistoryEntryID  `json:"redemption_id,omitempty"`
	CreatedAt        time.Time               `json:"created_at"`
}

func toTokenResponse(tok *models.Token) tokenResponse {
	return tokenResponse{
		Key:              tok.Key,
		Type:             tok.Type,
		Behavior:         tok.Behavior,
		DiscountFraction: tok.DiscountFraction,
		DiscountPrice:    tok.DiscountPrice,
		DiscountPremiums: tok.DiscountPremiums,
		Redeemed:         tok.IsRedeemed(),
		RedemptionID:     tok.RedemptionHistoryID,
		CreatedAt:        tok.CreatedAt,
	}
}

type putTLDRequest struct {
	DefaultTokenKeys []string `json:"default_token_keys,omitempty"`
	PremiumLabels    []string `json:"premium_labels,omitempty"`
	Currency         string   `json:"currency"`
	CreateCost       int64    `json:"create_cost"`
	RenewCost        int64    `json:"renew_cost"`
}

// HandlePutTLD handles PUT /admin/tlds/{name}, creating or replacing the
// TLD configuration. Every referenced default token must already exist.
func (h *AdminHandler) HandlePutTLD(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	name := chi.URLParam(r, "name")

	req, ok := httputil.DecodeJSON[putTLDRequest](w, r, h.logger)
	if !ok {
		return
	}

	defaultKeys := stringsutil.DedupeAndTrim(req.DefaultTokenKeys)
	loaded, err := h.tokens.GetAll(ctx, defaultKeys)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	for _, key := range defaultKeys {
		if _, ok := loaded[key]; !ok {
			httputil.WriteError(w, epperr.New(epperr.CodeParameterPolicy, "Default token does not exist"))
			return
		}
	}

	now := requestcontext.Now(ctx)
	t := tldstore.New(name, req.Currency, req.CreateCost, req.RenewCost, now)
	t.DefaultTokenKeys = defaultKeys
	t.PremiumLabels = stringsutil.DedupeAndTrimLower(req.PremiumLabels)
	if err := t.Validate(); err != nil {
		httputil.WriteError(w, epperr.Wrap(err, epperr.CodeParameterPolicy, "Invalid TLD definition"))
		return
	}
	if err := h.tlds.Put(ctx, &t); err != nil {
		h.logger.ErrorContext(ctx, "tld put failed",
			"request_id", requestcontext.RequestID(ctx), "tld", name, "error", err)
		httputil.WriteError(w, err)
		return
	}

	h.logger.InfoContext(ctx, "tld configured",
		"request_id", requestcontext.RequestID(ctx), "tld", name,
		"default_tokens", len(defaultKeys))
	httputil.WriteJSON(w, http.StatusOK, t)
}

// HandleGetTLD handles GET /admin/tlds/{name}.
func (h *AdminHandler) HandleGetTLD(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	name := chi.URLParam(r, "name")

	t, err := h.tlds.Get(ctx, name)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			httputil.WriteError(w, epperr.New(epperr.CodeObjectNotFound, "TLD does not exist"))
			return
		}
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, t)
}

// HandleListTLDs handles GET /admin/tlds.
func (h *AdminHandler) HandleListTLDs(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	tlds, err := h.tlds.List(ctx)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, tlds)
}
