package httpserver

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"rates-engine/internal/application"
	"rates-engine/internal/domain"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
)

type Server struct {
	svc          *application.Service
	defaultBases []string
	ping         func(ctx context.Context) error
}

func NewServer(svc *application.Service, defaultBases []string) *Server {
	return &Server{svc: svc, defaultBases: defaultBases}
}

// SetReadyCheck wires the /readyz dependency probe (usually a DB ping).
func (s *Server) SetReadyCheck(fn func(ctx context.Context) error) { s.ping = fn }

type rateResponse struct {
	domain.ExchangeRate
	Stale bool `json:"stale,omitempty"`
}

func (s *Server) getRate(w http.ResponseWriter, r *http.Request) {
	base := domain.NormalizeCode(chi.URLParam(r, "base"))
	target := domain.NormalizeCode(chi.URLParam(r, "target"))
	if !domain.ValidCode(base) || !domain.ValidCode(target) {
		writeError(w, http.StatusBadRequest, "currency codes must be three letters")
		return
	}
	force := r.URL.Query().Get("refresh") == "true"
	allowStale := r.URL.Query().Get("allow_stale") == "true"

	rate, stale, err := s.svc.Rate(r.Context(), base, target, force, allowStale)
	if err != nil {
		if errors.Is(err, application.ErrRateNotFound) {
			writeError(w, http.StatusNotFound, "rate not available")
			return
		}
		internalError(w)
		return
	}
	writeJSON(w, http.StatusOK, rateResponse{ExchangeRate: rate, Stale: stale})
}

type convertResponse struct {
	Amount    decimal.Decimal `json:"amount"`
	Base      string          `json:"base"`
	Target    string          `json:"target"`
	Rate      decimal.Decimal `json:"rate"`
	Result    decimal.Decimal `json:"result"`
	Formatted string          `json:"formatted"`
}

func (s *Server) convert(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	base := domain.NormalizeCode(q.Get("base"))
	target := domain.NormalizeCode(q.Get("target"))
	if !domain.ValidCode(base) || !domain.ValidCode(target) {
		writeError(w, http.StatusBadRequest, "currency codes must be three letters")
		return
	}
	amount, err := decimal.NewFromString(q.Get("amount"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "amount must be a decimal number")
		return
	}

	rate, err := s.svc.GetExchangeRate(r.Context(), base, target, false)
	if err != nil {
		if errors.Is(err, application.ErrRateNotFound) {
			writeError(w, http.StatusNotFound, "rate not available")
			return
		}
		internalError(w)
		return
	}
	result := amount.Mul(rate)
	writeJSON(w, http.StatusOK, convertResponse{
		Amount:    amount,
		Base:      base,
		Target:    target,
		Rate:      rate,
		Result:    result,
		Formatted: s.svc.FormatCurrency(result, target, nil),
	})
}

type refreshRequest struct {
	Bases []string `json:"bases"`
}

func (s *Server) refresh(w http.ResponseWriter, r *http.Request) {
	var body refreshRequest
	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			writeError(w, http.StatusBadRequest, "invalid JSON body")
			return
		}
	}
	bases := body.Bases
	if len(bases) == 0 {
		bases = s.defaultBases
	}
	stats := s.svc.RefreshAllRates(r.Context(), bases)
	writeJSON(w, http.StatusOK, stats)
}

func (s *Server) listCurrencies(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.svc.SupportedCurrencies())
}

type errorResponse struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Code: status, Message: msg})
}

func internalError(w http.ResponseWriter) {
	writeError(w, http.StatusInternalServerError, http.StatusText(http.StatusInternalServerError))
}
