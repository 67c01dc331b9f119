package v1

import (
	"github.com/duo-finance/backend/internal/types"
	ez_uuid "github.com/duo-finance/backend/internal/uuid"
)

type URIID struct {
	ID ez_uuid.UUID `uri:"id" binding:"required" format:"UUID"` // ID of the resource
}

type URIMonth struct {
	Month types.Month `uri:"month" binding:"required" example:"2024-05" swaggertype:"string"` // Year and month in YYYY-MM format
}

type QueryMonth struct {
	Month types.Month `form:"month" example:"2024-05" swaggertype:"string"` // Year and month in YYYY-MM format
}

// QueryPage selects a page of a list.
type QueryPage struct {
	Offset uint `form:"offset"` // The offset of the first resource returned. Defaults to 0.
	Limit  int  `form:"limit"`  // Maximum number of resources to return. Defaults to 50, -1 returns all.
}

// defaultLimit is the number of resources returned when no limit is set.
const defaultLimit = 50

// page returns the part of the items selected by the query and the
// pagination for it.
func page[T any](items []T, q QueryPage) ([]T, Pagination) {
	limit := q.Limit
	if limit == 0 {
		limit = defaultLimit
	}

	start := min(int(q.Offset), len(items))
	end := len(items)
	if limit > 0 {
		end = min(start+limit, len(items))
	}

	selected := items[start:end]
	return selected, Pagination{
		Count:  len(selected),
		Offset: q.Offset,
		Limit:  limit,
		Total:  int64(len(items)),
	}
}

type Pagination struct {
	Count  int   `json:"count" example:"25"`  // The amount of records returned in this response
	Offset uint  `json:"offset" example:"50"` // The offset for the first record returned
	Limit  int   `json:"limit" example:"25"`  // The maximum amount of resources to return for this request
	Total  int64 `json:"total" example:"827"` // The total number of resources matching the query
}
