// Package redis provides the Redis client constructor and the redis-backed
// login store. Login records live under login:<username> with a 7-day TTL,
// so expiry is enforced by Redis itself.
package redis
