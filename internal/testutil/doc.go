// Package testutil contains helper builders and utilities used across tests
// to reduce boilerplate: scripted dice for forcing failure draws, a recording
// logger for asserting diagnostics, and a trajectory builder. They are not
// intended for production usage.
package testutil
