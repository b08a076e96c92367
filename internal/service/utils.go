package service

import (
	"strings"

	"github.com/nileops/remit-console/internal/domain"
)

func optionalString(v string) *string {
	v = strings.TrimSpace(v)
	if v == "" {
		return nil
	}
	return &v
}

func resolveCountry(field, value string) (domain.Country, error) {
	c, ok := domain.LookupCountry(value)
	if !ok {
		return domain.Country{}, domain.NewValidationError(field, "unknown country")
	}
	return c, nil
}
