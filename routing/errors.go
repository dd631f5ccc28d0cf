package routing

import (
	"errors"
	"fmt"
)

var (
	// Registration errors
	ErrDuplicateRegistration = errors.New("routing: identity already registered")
	ErrAmbiguousDispatch     = errors.New("routing: message type already mapped for link")

	// Lookup errors
	ErrPathwayNotFound = errors.New("routing: no pathway registered for identity")
	ErrLinkNotFound    = errors.New("routing: no pathway mapped for link and message type")

	// Dispatch errors
	ErrTypeMismatch          = errors.New("routing: message type does not match registration")
	ErrSendFailed            = errors.New("routing: pathway consumer side is gone")
	ErrPathwayClosed         = errors.New("routing: pathway is closed")
	ErrInternalInconsistency = errors.New("routing: erased value does not match verified type")

	// Claim errors
	ErrAlreadyClaimed = errors.New("routing: receiver already claimed")
)

// RegistrationError reports a failed registration during the setup phase.
type RegistrationError struct {
	Op       string // RegisterSender, RegisterReceiver, RegisterPathway
	Identity string // endpoint identity or dispatch key
	Link     string // link identity, when link-addressed
	TypeName string // payload type involved
	Err      error
}

func (e *RegistrationError) Error() string {
	if e.Link != "" {
		return fmt.Sprintf("routing registration error: %s failed for link %q key %q (type %s): %v",
			e.Op, e.Link, e.Identity, e.TypeName, e.Err)
	}
	return fmt.Sprintf("routing registration error: %s failed for identity %q (type %s): %v",
		e.Op, e.Identity, e.TypeName, e.Err)
}

func (e *RegistrationError) Unwrap() error {
	return e.Err
}

// DispatchError reports a failed send.
type DispatchError struct {
	Identity string // endpoint identity or resolved dispatch key
	Link     string // link identity, when link-addressed
	TypeName string // payload type being sent
	Expected string // registered type, when the mismatch is known
	Err      error
}

func (e *DispatchError) Error() string {
	switch {
	case e.Expected != "":
		return fmt.Sprintf("routing dispatch error: send of %s to %q rejected, endpoint carries %s: %v",
			e.TypeName, e.Identity, e.Expected, e.Err)
	case e.Link != "":
		return fmt.Sprintf("routing dispatch error: send of %s on link %q failed: %v",
			e.TypeName, e.Link, e.Err)
	default:
		return fmt.Sprintf("routing dispatch error: send of %s to %q failed: %v",
			e.TypeName, e.Identity, e.Err)
	}
}

func (e *DispatchError) Unwrap() error {
	return e.Err
}

// ClaimError reports a failed receiver claim.
type ClaimError struct {
	Identity string
	TypeName string // requested payload type
	Expected string // registered payload type, when the mismatch is known
	Err      error
}

func (e *ClaimError) Error() string {
	if e.Expected != "" {
		return fmt.Sprintf("routing claim error: receiver %q requested as %s but registered as %s: %v",
			e.Identity, e.TypeName, e.Expected, e.Err)
	}
	return fmt.Sprintf("routing claim error: claim of receiver %q (type %s) failed: %v",
		e.Identity, e.TypeName, e.Err)
}

func (e *ClaimError) Unwrap() error {
	return e.Err
}

// IsConfigurationError reports whether err indicates a structural
// misconfiguration discoverable before traffic begins. Callers typically
// treat these as fatal during setup.
func IsConfigurationError(err error) bool {
	switch {
	case errors.Is(err, ErrDuplicateRegistration):
		return true
	case errors.Is(err, ErrAmbiguousDispatch):
		return true
	case errors.Is(err, ErrPathwayNotFound):
		return true
	case errors.Is(err, ErrLinkNotFound):
		return true
	case errors.Is(err, ErrTypeMismatch):
		return true
	}
	return false
}

// IsShutdown reports whether err signals that the peer side of a pathway
// has gone away, as opposed to a configuration problem.
func IsShutdown(err error) bool {
	return errors.Is(err, ErrSendFailed) || errors.Is(err, ErrPathwayClosed)
}
