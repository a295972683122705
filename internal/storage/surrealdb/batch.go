package surrealdb

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/surrealdb/surrealdb.go"
	surrealmodels "github.com/surrealdb/surrealdb.go/pkg/models"
)

// batchChunkSize bounds the statements sent in one query call.
const batchChunkSize = 200

// upsertOp replaces the record at rid with doc, creating it when absent.
type upsertOp struct {
	rid surrealmodels.RecordID
	doc any
}

// runUpserts submits ops as multi-statement queries without a transaction, so a
// failing statement does not block the others. ok[i] reports whether ops[i]
// was written; the error joins every failure seen.
func runUpserts(ctx context.Context, db *surrealdb.DB, ops []upsertOp) (ok []bool, err error) {
	ok = make([]bool, len(ops))
	var errs []error

	for start := 0; start < len(ops); start += batchChunkSize {
		end := min(start+batchChunkSize, len(ops))

		var sb strings.Builder
		vars := make(map[string]any, 2*(end-start))
		for i, op := range ops[start:end] {
			fmt.Fprintf(&sb, "UPSERT $rid%d CONTENT $doc%d RETURN NONE;\n", i, i)
			vars[fmt.Sprintf("rid%d", i)] = op.rid
			vars[fmt.Sprintf("doc%d", i)] = op.doc
		}

		results, qerr := surrealdb.Query[any](ctx, db, sb.String(), vars)
		if qerr != nil {
			errs = append(errs, qerr)
		}
		if results == nil {
			continue
		}
		for i, res := range *results {
			if start+i < end && res.Status == "OK" {
				ok[start+i] = true
			}
		}
	}

	return ok, errors.Join(errs...)
}

func countTrue(flags []bool) int {
	n := 0
	for _, f := range flags {
		if f {
			n++
		}
	}
	return n
}
