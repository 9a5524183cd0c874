package httptransport

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"domreg/internal/billing"
	"domreg/internal/bulkpricing"
	"domreg/internal/domains"
	"domreg/internal/flows"
	platformauth "domreg/internal/platform/auth"
	"domreg/internal/pricing"
	tldstore "domreg/internal/tld"
	tokensvc "domreg/internal/token/service"
	tokenstore "domreg/internal/token/store"
	"domreg/pkg/domain"
	"domreg/pkg/platform/tx"
)

type TransportSuite struct {
	suite.Suite
	server     *httptest.Server
	jwtService *platformauth.JWTService
}

func TestTransportSuite(t *testing.T) {
	suite.Run(t, new(TransportSuite))
}

func (s *TransportSuite) SetupTest() {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	tokens := tokenstore.NewInMemory()
	tlds := tldstore.NewInMemory()
	domainStore := domains.NewInMemory()
	recurrences := billing.NewInMemory()

	premium := pricing.NewLabelListChecker(tlds)
	tokenService := tokensvc.New(tokens, premium, tokensvc.WithLogger(logger))
	coordinator := bulkpricing.New(recurrences, bulkpricing.WithLogger(logger))
	flowService := flows.New(tx.NoopRunner{}, domainStore, tlds, recurrences, tokenService, coordinator,
		flows.WithLogger(logger))

	s.jwtService = platformauth.NewJWTService("test-key", "domreg-test")

	commands := NewCommandHandler(flowService, logger)
	admin := NewAdminHandler(tokens, tlds, logger)
	s.server = httptest.NewServer(NewRouter(commands, admin, s.jwtService))
	s.T().Cleanup(s.server.Close)
}

func (s *TransportSuite) bearer(registrarID domain.RegistrarID, admin bool) string {
	token, err := s.jwtService.GenerateToken(registrarID, admin, time.Minute)
	s.Require().NoError(err)
	return "Bearer " + token
}

func (s *TransportSuite) do(method, path, authHeader string, body any) *http.Response {
	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		s.Require().NoError(err)
		reader = bytes.NewReader(encoded)
	}
	req, err := http.NewRequest(method, s.server.URL+path, reader)
	s.Require().NoError(err)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	resp, err := http.DefaultClient.Do(req)
	s.Require().NoError(err)
	s.T().Cleanup(func() { _ = resp.Body.Close() })
	return resp
}

func (s *TransportSuite) decode(resp *http.Response) map[string]any {
	var body map[string]any
	s.Require().NoError(json.NewDecoder(resp.Body).Decode(&body))
	return body
}

// configureTLD creates the example TLD through the admin API.
func (s *TransportSuite) configureTLD(defaultTokens ...string) {
	resp := s.do(http.MethodPut, "/admin/tlds/example", s.bearer("admin001", true), map[string]any{
		"currency":           "USD",
		"create_cost":        1300,
		"renew_cost":         1100,
		"premium_labels":     []string{"rich"},
		"default_token_keys": defaultTokens,
	})
	s.Require().Equal(http.StatusOK, resp.StatusCode)
}

func (s *TransportSuite) TestHealthz() {
	resp := s.do(http.MethodGet, "/healthz", "", nil)
	s.Equal(http.StatusOK, resp.StatusCode)
}

func (s *TransportSuite) TestCommandsRequireAuth() {
	resp := s.do(http.MethodPost, "/domains", "", map[string]any{"name": "foo.example", "years": 1})
	s.Equal(http.StatusUnauthorized, resp.StatusCode)
}

func (s *TransportSuite) TestAdminRequiresAdminClaim() {
	resp := s.do(http.MethodPut, "/admin/tlds/example", s.bearer("TheRegistrar", false), map[string]any{
		"currency": "USD", "create_cost": 1300, "renew_cost": 1100,
	})
	s.Equal(http.StatusForbidden, resp.StatusCode)
}

func (s *TransportSuite) TestCreateDomain() {
	s.configureTLD()

	resp := s.do(http.MethodPost, "/domains", s.bearer("TheRegistrar", false), map[string]any{
		"name": "foo.example", "years": 2,
	})
	s.Require().Equal(http.StatusCreated, resp.StatusCode)

	body := s.decode(resp)
	s.Equal("foo.example", body["domain"])
	s.Equal("TheRegistrar", body["registrar_id"])

	price := body["price"].(map[string]any)
	s.Equal(float64(2600), price["amount"])
}

func (s *TransportSuite) TestCreateWithExplicitTokenAndRenewRejectsReuse() {
	s.configureTLD()

	resp := s.do(http.MethodPost, "/admin/tokens", s.bearer("admin001", true), map[string]any{
		"key": "halfOff", "type": "SINGLE_USE", "discount_fraction": 0.5,
	})
	s.Require().Equal(http.StatusCreated, resp.StatusCode)

	resp = s.do(http.MethodPost, "/domains", s.bearer("TheRegistrar", false), map[string]any{
		"name": "foo.example", "years": 1, "token": "halfOff",
	})
	s.Require().Equal(http.StatusCreated, resp.StatusCode)
	body := s.decode(resp)
	s.Equal(true, body["token_redeemed"])
	s.Equal(float64(650), body["price"].(map[string]any)["amount"])

	// The redeemed token is now a hard error on a second command.
	resp = s.do(http.MethodPost, fmt.Sprintf("/domains/%s/renew", "foo.example"), s.bearer("TheRegistrar", false), map[string]any{
		"years": 1, "token": "halfOff",
	})
	s.Require().Equal(http.StatusUnprocessableEntity, resp.StatusCode)
	body = s.decode(resp)
	s.Equal("Alloc token was already redeemed", body["error_description"])
	s.Equal(float64(2304), body["epp_code"])
}

func (s *TransportSuite) TestUnknownTokenRejectedWithAuthorizationCode() {
	s.configureTLD()

	resp := s.do(http.MethodPost, "/domains", s.bearer("TheRegistrar", false), map[string]any{
		"name": "foo.example", "years": 1, "token": "ghost",
	})
	s.Require().Equal(http.StatusForbidden, resp.StatusCode)
	body := s.decode(resp)
	s.Equal("The allocation token is invalid", body["error_description"])
}

func (s *TransportSuite) TestAdminTokenLifecycle() {
	resp := s.do(http.MethodPost, "/admin/tokens", s.bearer("admin001", true), map[string]any{
		"key": "promo1", "type": "UNLIMITED_USE", "discount_fraction": 0.25,
		"allowed_tlds": []string{"example"},
	})
	s.Require().Equal(http.StatusCreated, resp.StatusCode)

	// Duplicate keys conflict.
	resp = s.do(http.MethodPost, "/admin/tokens", s.bearer("admin001", true), map[string]any{
		"key": "promo1", "type": "UNLIMITED_USE",
	})
	s.Equal(http.StatusConflict, resp.StatusCode)

	resp = s.do(http.MethodGet, "/admin/tokens/promo1", s.bearer("admin001", true), nil)
	s.Require().Equal(http.StatusOK, resp.StatusCode)
	body := s.decode(resp)
	s.Equal("promo1", body["key"])
	s.Equal(false, body["redeemed"])

	resp = s.do(http.MethodGet, "/admin/tokens/missing", s.bearer("admin001", true), nil)
	s.Equal(http.StatusNotFound, resp.StatusCode)
}

func (s *TransportSuite) TestReservedTokenKeyRejected() {
	resp := s.do(http.MethodPost, "/admin/tokens", s.bearer("admin001", true), map[string]any{
		"key": "__REMOVE_BULK_PRICING__", "type": "UNLIMITED_USE",
	})
	s.Equal(http.StatusUnprocessableEntity, resp.StatusCode)
}

func (s *TransportSuite) TestPutTLDRejectsUnknownDefaultToken() {
	resp := s.do(http.MethodPut, "/admin/tlds/example", s.bearer("admin001", true), map[string]any{
		"currency": "USD", "create_cost": 1300, "renew_cost": 1100,
		"default_token_keys": []string{"ghost"},
	})
	s.Equal(http.StatusUnprocessableEntity, resp.StatusCode)
}

func (s *TransportSuite) TestDefaultPromoAppliedThroughAPI() {
	resp := s.do(http.MethodPost, "/admin/tokens", s.bearer("admin001", true), map[string]any{
		"key": "launch", "type": "DEFAULT_PROMO", "discount_fraction": 0.1,
	})
	s.Require().Equal(http.StatusCreated, resp.StatusCode)
	s.configureTLD("launch")

	resp = s.do(http.MethodPost, "/domains", s.bearer("TheRegistrar", false), map[string]any{
		"name": "foo.example", "years": 1,
	})
	s.Require().Equal(http.StatusCreated, resp.StatusCode)
	body := s.decode(resp)
	s.Equal("launch", body["applied_token"])
	s.Equal(float64(1170), body["price"].(map[string]any)["amount"])
}
