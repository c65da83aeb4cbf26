package submit

import "fmt"

// Kind tags the outcome of a single submission attempt.
type Kind int

const (
	// KindSuccess means the server accepted the submission and returned its id.
	KindSuccess Kind = iota
	// KindValidationError means a field was empty and nothing was sent.
	KindValidationError
	// KindServerError means the server answered with something other than 200 OK.
	KindServerError
	// KindTransportError means no usable exchange with the server took place.
	KindTransportError
)

func (k Kind) String() string {
	switch k {
	case KindSuccess:
		return "success"
	case KindValidationError:
		return "validation error"
	case KindServerError:
		return "server error"
	case KindTransportError:
		return "transport error"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// TransportReason tells the two transport failures apart.
type TransportReason int

const (
	// ReasonNoResponse: the request was sent but no response arrived.
	ReasonNoResponse TransportReason = iota + 1
	// ReasonRequestFailed: the request could not be built or sent.
	ReasonRequestFailed
)

// User-visible notification texts.
const (
	MsgValidation    = "Please fill in all fields."
	MsgNoResponse    = "No response from server. Please try again later."
	MsgRequestFailed = "Failed to process the request."
	msgMalformed     = "malformed response from server"
)

// Result is the outcome of one Submit call. Only the fields belonging to
// Kind are set.
type Result struct {
	Kind Kind

	// ID is the submission id returned by the server (KindSuccess).
	ID string

	// Status is the HTTP status code (KindServerError).
	Status int
	// Message is the server-provided error message (KindServerError).
	Message string

	// Missing lists the empty fields (KindValidationError).
	Missing []string

	// Reason is set for KindTransportError.
	Reason TransportReason
	// Err is the underlying error for KindTransportError.
	Err error
}

// OK reports whether the submission was accepted.
func (r Result) OK() bool {
	return r.Kind == KindSuccess
}

// Notification returns the single user-visible text for the result.
func (r Result) Notification() string {
	switch r.Kind {
	case KindSuccess:
		return fmt.Sprintf("Submission successful! Submission ID: %s", r.ID)
	case KindValidationError:
		return MsgValidation
	case KindServerError:
		return fmt.Sprintf("Submission failed: %s", r.Message)
	case KindTransportError:
		if r.Reason == ReasonNoResponse {
			return MsgNoResponse
		}
		return MsgRequestFailed
	default:
		return MsgRequestFailed
	}
}
