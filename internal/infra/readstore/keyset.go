package readstore

import (
	"stock-hold-service/internal/pkg/pgconv"
	"stock-hold-service/internal/usecase/queries"

	"github.com/jackc/pgx/v5/pgtype"
)

// keysetClause filters rows strictly after the page key in
// (created_at DESC, id DESC) order. A NULL key selects the first page.
const keysetClause = `($2::timestamptz IS NULL OR (created_at, id) < ($2::timestamptz, $3::uuid))`

func keysetArgs(page queries.Page) (int, pgtype.Timestamptz, pgtype.UUID) {
	if page.After == nil {
		return page.Limit, pgtype.Timestamptz{}, pgtype.UUID{}
	}
	return page.Limit, pgconv.TimeToPgtype(page.After.CreatedAt), pgconv.UUIDToPgtype(page.After.ID)
}
