// Package verification delivers one-time codes that prove a user owns the
// destination of a pending contact method.
//
// SendTask generates and stores a code, then hands it to a Sender. It runs
// either on the job queue (enqueued inside the transaction that created the
// contact method, see AfterCreate) or in process through Inline. ExpireTask
// is a scheduled task that removes expired codes.
//
//	jobs, err := job.NewManager(pool,
//		job.WithTask[verification.Payload](send),
//		job.WithScheduledTask(verification.NewExpireTask(repo)),
//	)
package verification
