package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/Simplici0/menucost/internal/costing"
	"github.com/Simplici0/menucost/internal/metrics"
	"github.com/Simplici0/menucost/internal/service"
	"github.com/Simplici0/menucost/internal/store"
)

const maxBodyBytes = 1 << 20

type errorResponse struct {
	Error      string          `json:"error"`
	Field      string          `json:"field,omitempty"`
	Kind       string          `json:"kind,omitempty"`
	Owner      string          `json:"owner,omitempty"`
	Index      *int            `json:"index,omitempty"`
	Ref        string          `json:"ref,omitempty"`
	Via        []stepJSON      `json:"via,omitempty"`
	Conversion *conversionPair `json:"conversion,omitempty"`
}

type stepJSON struct {
	Owner string `json:"owner"`
	Index int    `json:"index"`
}

type conversionPair struct {
	From  string `json:"from"`
	To    string `json:"to,omitempty"`
	Yield string `json:"yield,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return fmt.Errorf("invalid json body: %w", err)
	}
	return nil
}

// describeError maps an error to its status and JSON body.
func describeError(err error) (int, errorResponse) {
	resp := errorResponse{Error: err.Error()}

	var ve *service.ValidationError
	var ce *costing.CostError
	var me *metrics.MetricError
	switch {
	case errors.As(err, &ve):
		resp.Field = ve.Field
		return http.StatusBadRequest, resp
	case errors.Is(err, store.ErrNotFound):
		return http.StatusNotFound, resp
	case errors.Is(err, store.ErrInUse), errors.Is(err, store.ErrDuplicate):
		return http.StatusConflict, resp
	case errors.As(err, &ce):
		resp.Kind = string(ce.Kind)
		resp.Owner = ce.Owner
		resp.Ref = ce.Ref
		if ce.Index >= 0 {
			idx := ce.Index
			resp.Index = &idx
		}
		for _, st := range ce.Via {
			resp.Via = append(resp.Via, stepJSON{Owner: st.Owner, Index: st.Index})
		}
		resp.Conversion = pairOf(err)
		return http.StatusUnprocessableEntity, resp
	case errors.Is(err, costing.ErrIncompatibleUnits):
		resp.Kind = "incompatible_units"
		resp.Conversion = pairOf(err)
		return http.StatusUnprocessableEntity, resp
	case errors.As(err, &me):
		resp.Kind = string(me.Kind)
		return http.StatusUnprocessableEntity, resp
	default:
		return http.StatusInternalServerError, errorResponse{Error: "internal error"}
	}
}

func pairOf(err error) *conversionPair {
	ce, ok := costing.ConversionPair(err)
	if !ok {
		return nil
	}
	p := &conversionPair{From: ce.From.String(), Yield: ce.Yield}
	if ce.To.Valid() {
		p.To = ce.To.String()
	}
	return p
}

func (s *server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status, body := describeError(err)
	if status == http.StatusInternalServerError {
		s.log.ErrorContext(r.Context(), "http.internal_error", "path", r.URL.Path, "err", err)
	}
	writeJSON(w, status, body)
}

func badRequest(w http.ResponseWriter, msg string) {
	writeJSON(w, http.StatusBadRequest, errorResponse{Error: msg})
}

func parsePositiveDecimal(raw, field string) (decimal.Decimal, error) {
	value, err := decimal.NewFromString(strings.TrimSpace(raw))
	if err != nil {
		return decimal.Zero, fmt.Errorf("%s must be numeric", field)
	}
	if !value.IsPositive() {
		return decimal.Zero, fmt.Errorf("%s must be greater than 0", field)
	}
	return value, nil
}
