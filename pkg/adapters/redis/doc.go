// Package redis provides a Redis-backed document store and distributed locker.
package redis
