// Package job runs background tasks on River, a Postgres-backed queue.
//
// Tasks are plain types with a Name and a typed Handle method; periodic tasks
// add a cron Schedule:
//
//	mgr, err := job.NewManager(pool,
//	    job.WithTask(verification.NewSendTask(repo, sender, log)),
//	    job.WithScheduledTask(verification.NewExpireTask(repo, log)),
//	)
//
// The river_* tables are created by [Migrate].
//
// [Manager.EnqueueTx] inserts a job in the caller's transaction so it only
// becomes visible once the surrounding write commits.
package job
