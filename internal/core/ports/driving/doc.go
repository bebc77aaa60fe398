// Package driving defines the interfaces through which the outside world
// drives the core (the "primary" ports in hexagonal architecture).
//
// The CLI adapter depends on these interfaces; core services implement them.
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: services, adapters, or any infrastructure package
package driving
