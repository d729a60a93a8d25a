// Package gate is the single place where the client decides what the
// current session may see and do.
//
// Decide maps a session and a route path onto a Decision (render, redirect,
// forbidden, not found). Authorize and the Can* helpers answer the same
// question for individual actions, so role comparisons never appear at call
// sites. Both are pure: they take the clock as an argument.
package gate
