// Package export defines the outbound ports for pushing transactions to
// an external spreadsheet.
package export

import (
	"context"

	"pocketbudget/internal/core"
)

type (
	// RowAppender appends one transaction as a spreadsheet row and
	// returns an opaque row reference.
	RowAppender interface {
		Append(ctx context.Context, tx core.Transaction) (rowRef string, err error)
	}

	// RowRemover clears the rows previously exported for a transaction id.
	RowRemover interface {
		Remove(ctx context.Context, id string) error
	}
)
