package hcl_adapter

import (
	"context"

	"github.com/hashicorp/hcl/v2"
	"github.com/specialistvlad/lidarcore/internal/ctxlog"
)

// isExprDefined reports whether expr was written in the source. gohcl fills
// an omitted optional expression with a zero-width placeholder, so a nil
// check is not enough.
func isExprDefined(ctx context.Context, expr hcl.Expression, attrName string) bool {
	if expr == nil {
		return false
	}
	r := expr.Range()
	defined := r.End.Byte > r.Start.Byte
	ctxlog.FromContext(ctx).Debug("Checking if HCL attribute was explicitly defined.",
		"attribute", attrName,
		"hcl_range", r.String(),
		"is_defined", defined,
	)
	return defined
}

func set[T any](dst *T, src *T) {
	if src != nil {
		*dst = *src
	}
}
