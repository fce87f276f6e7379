// Package e2e contains end-to-end tests for the epochstat binary.
// These tests build the command and run it against real processes of the
// host, using a shell script as slot oracle.
package e2e
