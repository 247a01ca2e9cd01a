// Package domain contains shared domain types used across entity sub-packages.
// Entity-specific types live in sub-packages (domain/user). This root package
// holds the sentinel errors and typed errors that the HTTP adapter translates
// into status codes.
package domain
