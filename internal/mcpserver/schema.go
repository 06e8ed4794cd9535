package mcpserver

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

const (
	defaultPageLimit = 50
	maxPageLimit     = 500
)

func clampPagination(limit, offset, maxLimit int) (int, int) {
	if limit <= 0 {
		limit = defaultPageLimit
	}
	if limit > maxLimit {
		limit = maxLimit
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}

// decimalArg accepts amounts sent either as JSON numbers or strings.
func decimalArg(args map[string]any, key string) (decimal.Decimal, error) {
	switch v := args[key].(type) {
	case string:
		return decimal.NewFromString(strings.TrimSpace(v))
	case float64:
		return decimal.NewFromFloat(v), nil
	case nil:
		return decimal.Decimal{}, fmt.Errorf("%s is required", key)
	default:
		return decimal.Decimal{}, fmt.Errorf("%s must be a number or numeric string", key)
	}
}
