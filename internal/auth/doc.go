// Package auth decides whether a request may proceed.
//
// A Gate verifies the bearer credential, provisions the caller's local user
// record, and optionally requires the admin role. Each stage runs only when
// the previous one succeeded, so an unverified token never reaches the
// user store.
package auth
