// Package mutation runs write operations with single-flight state and
// dependent query refetching.
//
// An [Executor] moves Idle → Loading → Succeeded or Failed. Completion is
// two-phase: the mutation itself, then a refetch of the named query groups.
// With awaited refetches (the default) callers observe Succeeded, and the
// OnCompleted callback runs, only after the refetch returned.
//
//	exec := mutation.New(svc.CreateUserContactMethod,
//	    mutation.WithRefetchQueries(queries, "nrList", "cmList"),
//	    mutation.WithOnCompleted(func(id string) { close(id) }),
//	)
package mutation
