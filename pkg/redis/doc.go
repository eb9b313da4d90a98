// Package redis opens go-redis clients from environment configuration.
//
// Redis is optional: when REDIS_URL is empty the application keeps its query
// cache in process memory.
package redis
