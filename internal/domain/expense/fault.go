package expense

import (
	"errors"
	"fmt"
	"strings"
)

// FaultKind classifies a gateway fault. The store assigns the kind once at the
// database boundary so callers never have to substring-match error text.
type FaultKind string

const (
	FaultConnectivity FaultKind = "connectivity"
	FaultAuth         FaultKind = "auth"
	FaultData         FaultKind = "data"
	FaultValidation   FaultKind = "validation"
)

// Fault wraps a low-level error with its kind and the store operation that
// raised it.
type Fault struct {
	Kind FaultKind
	Op   string
	Err  error
}

func (f *Fault) Error() string {
	return fmt.Sprintf("%s: %s fault: %v", f.Op, f.Kind, f.Err)
}

func (f *Fault) Unwrap() error { return f.Err }

// AsFault extracts a *Fault from an error chain.
func AsFault(err error) (*Fault, bool) {
	var f *Fault
	ok := errors.As(err, &f)
	return f, ok
}

// Driver error fragments per kind. SQLite (and most drivers) only expose
// message text for these conditions, so the match happens here, exactly once.
var (
	connectivityFragments = []string{
		"connection", "timeout", "network", "no such host",
		"database is locked", "disk i/o error",
	}
	authFragments = []string{
		"login", "authentication", "access denied", "not authorized",
		"permission denied", "identity",
	}
)

// classify wraps err as a Fault, deriving the kind from the driver message.
// Anything unrecognized is a generic data fault.
func classify(op string, err error) *Fault {
	msg := strings.ToLower(err.Error())
	kind := FaultData
	switch {
	case containsAny(msg, connectivityFragments):
		kind = FaultConnectivity
	case containsAny(msg, authFragments):
		kind = FaultAuth
	}
	return &Fault{Kind: kind, Op: op, Err: err}
}

func containsAny(s string, fragments []string) bool {
	for _, f := range fragments {
		if strings.Contains(s, f) {
			return true
		}
	}
	return false
}

// RemediationHint maps a fault kind to the operator-facing hint shown in the
// error banner.
func RemediationHint(kind FaultKind) string {
	switch kind {
	case FaultConnectivity:
		return "Could not reach the expense database. Check network connectivity and that the database is online."
	case FaultAuth:
		return "Database authentication failed. Verify the service identity and credential configuration."
	case FaultValidation:
		return "The request was rejected by a data validation rule."
	default:
		return "The expense database reported an unexpected error."
	}
}
