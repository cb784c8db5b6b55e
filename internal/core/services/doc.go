// Package services implements the driving port interfaces.
// Services contain the core business logic and orchestrate
// calls to driven ports (adapters).
//
// Services are pure Go with no CGO. Every collaborator is passed in
// through a constructor; nothing here reads global configuration.
package services
