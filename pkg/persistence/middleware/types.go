// Package middleware decorates session stores with at-rest protections for the
// terminal log: redaction of secrets typed by the player and field-level encryption.
package middleware

import "github.com/aretw0/gitquest/pkg/ports"

// Middleware allows wrapping a SessionStore to add behavior.
type Middleware func(ports.SessionStore) ports.SessionStore

// Chain applies middlewares so the first one sees states before the others.
func Chain(store ports.SessionStore, mws ...Middleware) ports.SessionStore {
	for i := len(mws) - 1; i >= 0; i-- {
		store = mws[i](store)
	}
	return store
}
