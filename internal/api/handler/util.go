package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/nileops/remit-console/internal/api/problem"
	"github.com/nileops/remit-console/internal/domain"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const maxJSONBody = 1 << 20

// RespondJSON writes a JSON response.
func RespondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// RespondError writes an RFC 7807 error response.
func RespondError(w http.ResponseWriter, r *http.Request, status int, problemType, message string) {
	problem.Write(w, r, status, problem.Type(problemType), http.StatusText(status), message)
}

// respondServiceError maps domain errors onto problem responses. area names
// the resource ("transfer", "client", "rate") used in validation types.
func respondServiceError(w http.ResponseWriter, r *http.Request, area string, err error) {
	var (
		verr *domain.ValidationError
		uerr *domain.UploadError
		serr *domain.StoreError
	)
	switch {
	case errors.As(err, &verr):
		RespondError(w, r, http.StatusUnprocessableEntity, area+"/validation-failed", verr.Error())
	case errors.Is(err, domain.ErrNoRateAvailable):
		RespondError(w, r, http.StatusUnprocessableEntity, "transfer/no-rate-available", err.Error())
	case errors.Is(err, domain.ErrNotFound):
		RespondError(w, r, http.StatusNotFound, area+"/not-found", area+" not found")
	case errors.As(err, &uerr):
		RespondError(w, r, http.StatusBadGateway, "transfer/proof-upload-failed", uerr.Error())
	default:
		if status, problemType, message, ok := mapDBError(err); ok {
			RespondError(w, r, status, problemType, message)
			return
		}
		zap.L().Error("request failed", zap.Error(err), zap.String("path", r.URL.Path))
		detail := "unexpected server error"
		if errors.As(err, &serr) {
			detail = serr.Error()
		}
		RespondError(w, r, http.StatusInternalServerError, "store/failure", detail)
	}
}

func mapDBError(err error) (status int, problemType, message string, ok bool) {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return 0, "", "", false
	}

	switch pgErr.Code {
	case "23505": // unique_violation
		return http.StatusConflict, "db/unique-violation", "resource already exists", true
	case "23503": // foreign_key_violation
		return http.StatusUnprocessableEntity, "db/foreign-key-violation", "invalid reference", true
	case "23514": // check_violation
		return http.StatusUnprocessableEntity, "db/check-violation", "request violates data constraints", true
	default:
		return 0, "", "", false
	}
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxJSONBody))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		RespondError(w, r, http.StatusBadRequest, "request/invalid-body", fmt.Sprintf("Invalid request body: %v", err))
		return false
	}
	if err := dec.Decode(&struct{}{}); err != io.EOF {
		RespondError(w, r, http.StatusBadRequest, "request/invalid-body", "Request body must hold a single JSON object")
		return false
	}
	return true
}

func uuidParam(w http.ResponseWriter, r *http.Request, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, name))
	if err != nil {
		RespondError(w, r, http.StatusBadRequest, "request/invalid-"+name, "Invalid "+name)
		return uuid.Nil, false
	}
	return id, true
}

func intQuery(r *http.Request, name string) int {
	n, _ := strconv.Atoi(r.URL.Query().Get(name))
	return n
}

// looseDecimal accepts a JSON number, a numeric string, an empty string or
// null. The last two leave it unset.
type looseDecimal struct {
	decimal.NullDecimal
}

func (d *looseDecimal) UnmarshalJSON(b []byte) error {
	s := strings.TrimSpace(string(b))
	if unq, err := strconv.Unquote(s); err == nil {
		s = strings.TrimSpace(unq)
	}
	if s == "" || s == "null" {
		d.Valid = false
		return nil
	}
	v, err := decimal.NewFromString(s)
	if err != nil {
		return fmt.Errorf("invalid number %q", s)
	}
	d.Decimal, d.Valid = v, true
	return nil
}

func (d looseDecimal) ptr() *decimal.Decimal {
	if !d.Valid {
		return nil
	}
	v := d.Decimal
	return &v
}

func (d looseDecimal) value() decimal.Decimal {
	if !d.Valid {
		return decimal.Zero
	}
	return d.Decimal
}

func decodeStrict(raw string, dst any) error {
	dec := json.NewDecoder(strings.NewReader(raw))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return err
	}
	if err := dec.Decode(&struct{}{}); err != io.EOF {
		return errors.New("payload must hold a single JSON object")
	}
	return nil
}
