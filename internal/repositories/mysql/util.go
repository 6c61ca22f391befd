// internal/repositories/mysql/util.go
package mysql

import (
	"context"
	"strings"
	"time"
)

// placeholders menghasilkan "?, ?, ?, ..." sebanyak n.
func placeholders(n int) string {
	if n <= 0 {
		return ""
	}
	return strings.Repeat("?,", n-1) + "?"
}

// withTimeout memasang timeout default repo bila ctx belum punya deadline.
func withTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if _, ok := ctx.Deadline(); ok {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, d)
}
