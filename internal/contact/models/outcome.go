package models

// OutcomeKind is the terminal state of one submission.
type OutcomeKind string

const (
	OutcomeAccepted    OutcomeKind = "accepted"
	OutcomeHoneypot    OutcomeKind = "honeypot"
	OutcomeInvalid     OutcomeKind = "invalid"
	OutcomeTooFast     OutcomeKind = "too_fast"
	OutcomeRateLimited OutcomeKind = "rate_limited"
	OutcomeDisposable  OutcomeKind = "disposable_email"
	OutcomeCaptcha     OutcomeKind = "captcha_failed"
	OutcomeSpam        OutcomeKind = "spam"
	OutcomeError       OutcomeKind = "error"
)

// Caller-facing messages.
const (
	MsgValidationFailed = "Validation failed"
	MsgTooFast          = "Too fast. Please try again."
	MsgDisposable       = "Disposable email addresses are not allowed."
	MsgDisposableIssue  = "Please use a permanent email address"
	MsgCaptchaFailed    = "Captcha verification failed"
	MsgCaptchaIssue     = "Invalid or missing token"
	MsgSpam             = "Message contains prohibited content."
	MsgServerError      = "Server error. Please try again later."
)

// Outcome is the typed result of the dispatcher. Expected rejections are
// outcomes, not errors.
type Outcome struct {
	Kind    OutcomeKind
	Message string
	Issues  []Issue
	// RetryAfter is set in seconds for rate-limit rejections.
	RetryAfter int
}

// Succeeded reports whether the caller should see {ok:true}. A honeypot hit
// is indistinguishable from acceptance on the wire.
func (o Outcome) Succeeded() bool {
	return o.Kind == OutcomeAccepted || o.Kind == OutcomeHoneypot
}
