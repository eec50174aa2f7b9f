package contact

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// Phase is the submission state of a contact form.
type Phase int

const (
	Idle Phase = iota
	Submitting
	Succeeded
	Failed
)

func (p Phase) String() string {
	switch p {
	case Idle:
		return "idle"
	case Submitting:
		return "submitting"
	case Succeeded:
		return "succeeded"
	case Failed:
		return "failed"
	default:
		return fmt.Sprintf("Phase(%d)", int(p))
	}
}

// FailureText is shown under the form when a submission fails.
const FailureText = "There was an error submitting your message. Please try again."

// SuccessText replaces the submit button after a successful submission.
const SuccessText = "Thank you for your message! I'll get back to you soon."

// ErrTransition is returned for a transition the form does not allow.
var ErrTransition = errors.New("contact: invalid form transition")

// Form is the state behind one rendered contact form. Values are retained
// after a failure so the visitor can retry, and cleared after success.
type Form struct {
	Phase  Phase
	Values Message
	// Token identifies one logical submission. Retrying a failed form reuses it.
	Token       string
	Error       string
	FieldErrors ValidationErrors
}

// NewForm returns an idle form with a fresh token.
func NewForm() *Form {
	return &Form{Phase: Idle, Token: uuid.NewString()}
}

// Restore rebuilds a form from posted values. A missing or malformed token
// is replaced.
func Restore(token string, values Message) *Form {
	f := NewForm()
	if _, err := uuid.Parse(token); err == nil {
		f.Token = token
	}
	f.Values = values
	return f
}

// Submit moves an idle or failed form to Submitting.
func (f *Form) Submit() error {
	if f.Phase != Idle && f.Phase != Failed {
		return fmt.Errorf("%w: %s -> %s", ErrTransition, f.Phase, Submitting)
	}
	f.Phase = Submitting
	f.Error = ""
	f.FieldErrors = nil
	return nil
}

// Resolve completes a submission. A nil err succeeds; anything else fails
// with the generic failure text, or per-field messages for validation errors.
func (f *Form) Resolve(err error) error {
	if f.Phase != Submitting {
		return fmt.Errorf("%w: %s -> resolved", ErrTransition, f.Phase)
	}
	if err == nil {
		f.Phase = Succeeded
		f.Values = Message{}
		f.Token = uuid.NewString()
		return nil
	}
	f.Phase = Failed
	var verrs ValidationErrors
	if errors.As(err, &verrs) {
		f.FieldErrors = verrs
		f.Error = "Please correct the highlighted fields."
		return nil
	}
	f.Error = FailureText
	return nil
}

// Busy reports whether the submit control should be disabled.
func (f *Form) Busy() bool { return f.Phase == Submitting }
