// Package cache keeps recently synthesized audio in memory so that a repeated
// request can be replayed without another model call.
package cache
