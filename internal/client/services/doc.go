// Package services contains the application services of the staffdesk
// client: the leave workflow, profile sync and the employee directory.
//
// Services read the current session from a SessionSource, check it with
// the gate before any network call, and talk to the API only through
// client.Gateway.
package services
