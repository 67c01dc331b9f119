package filter

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/duo-finance/backend/internal/types"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Query parameters used by ParseQuery and Encode.
const (
	ParamSearch   = "q"
	ParamRange    = "range"
	ParamFrom     = "from"
	ParamTo       = "to"
	ParamCategory = "category"
	ParamType     = "type"
	ParamMin      = "min"
	ParamMax      = "max"
)

// ParseQuery reads a filter state from URL query parameters. Missing
// parameters keep their defaults.
func ParseQuery(values url.Values) (State, error) {
	s := Default()
	s.Search = strings.TrimSpace(values.Get(ParamSearch))

	if r := values.Get(ParamRange); r != "" {
		s.Range = Range(r)
	}

	if t := values.Get(ParamType); t != "" {
		s.Type = Type(t)
	}

	var err error
	if from := values.Get(ParamFrom); from != "" {
		if s.StartDate, err = types.ParseDate(from); err != nil {
			return State{}, err
		}
	}

	if to := values.Get(ParamTo); to != "" {
		if s.EndDate, err = types.ParseDate(to); err != nil {
			return State{}, err
		}
	}

	// Explicit bounds without a range select a custom range
	if values.Get(ParamRange) == "" && (!s.StartDate.IsZero() || !s.EndDate.IsZero()) {
		s.Range = RangeCustom
	}

	if category := values.Get(ParamCategory); category != "" {
		id, err := uuid.Parse(category)
		if err != nil {
			return State{}, fmt.Errorf("%q is not a valid category ID", category)
		}
		s.CategoryID = &id
	}

	if s.AmountMin, err = parseAmount(values, ParamMin); err != nil {
		return State{}, err
	}

	if s.AmountMax, err = parseAmount(values, ParamMax); err != nil {
		return State{}, err
	}

	return s, s.Validate()
}

func parseAmount(values url.Values, param string) (decimal.NullDecimal, error) {
	value := values.Get(param)
	if value == "" {
		return decimal.NullDecimal{}, nil
	}

	amount, err := decimal.NewFromString(value)
	if err != nil {
		return decimal.NullDecimal{}, fmt.Errorf("%q is not a valid amount for %s", value, param)
	}

	return decimal.NewNullDecimal(amount), nil
}

// Encode returns the query parameters for the state. Parameters at their
// default value are omitted.
func (s State) Encode() url.Values {
	values := url.Values{}

	if search := strings.TrimSpace(s.Search); search != "" {
		values.Set(ParamSearch, search)
	}

	if r := s.dateRange(); r != RangeThisMonth {
		values.Set(ParamRange, string(r))
	}

	if s.dateRange() == RangeCustom {
		if !s.StartDate.IsZero() {
			values.Set(ParamFrom, s.StartDate.String())
		}

		if !s.EndDate.IsZero() {
			values.Set(ParamTo, s.EndDate.String())
		}
	}

	if s.CategoryID != nil {
		values.Set(ParamCategory, s.CategoryID.String())
	}

	if t := s.transactionType(); t != TypeAll {
		values.Set(ParamType, string(t))
	}

	if s.AmountMin.Valid {
		values.Set(ParamMin, s.AmountMin.Decimal.String())
	}

	if s.AmountMax.Valid {
		values.Set(ParamMax, s.AmountMax.Decimal.String())
	}

	return values
}
