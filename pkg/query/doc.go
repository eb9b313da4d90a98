// Package query keeps named query groups, such as a user's contact method
// list, in a shared cache so that writes can refresh them in one call.
//
//	reg := query.New(cache.NewMemory[[]byte]())
//	reg.Register("cmList", func(ctx context.Context, userID string) (any, error) {
//	    return svc.ListContactMethods(ctx, userID)
//	})
//	methods, err := query.Get[[]contactmethod.ContactMethod](ctx, reg, "cmList", userID)
//	...
//	err = reg.Refetch(ctx, "nrList", "cmList")
//
// Results are stored JSON-encoded, which lets the same registry run on the
// in-memory or the Redis cache backend.
package query
