// Package health serves liveness and readiness probes.
//
//	r.Get("/health/live", health.LivenessHandler())
//	r.Get("/health/ready", health.ReadinessHandler(health.Checks{
//	    "postgres": db.Healthcheck(pool),
//	    "jobs":     jobs.Healthcheck(),
//	}))
//
// Responses are plain text unless JSON is requested through the Accept
// header or ?format=json.
package health
