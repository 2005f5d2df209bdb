// Package wizard implements the service request wizard: a linear sequence of
// configurable steps that builds a Draft and hands it to the intake API.
//
// The Wizard is safe for concurrent use. Network calls (submission, item
// validation) run without holding the lock so a front end can keep rendering
// while they are in flight; their results are applied only if the wizard is
// still in the state that started them.
package wizard

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/procare-io/srportal/internal/models"
)

// Generic messages for failed calls that carry no detail of their own.
const (
	SubmitFailedMessage      = "Failed to submit request. Please try again."
	ValidateFailedMessage    = "Validation failed"
	ItemValidatedMessage     = "Item validated successfully"
	NothingToValidateMessage = "Please enter Serial Number or Item Number"
	CountryRequiredMessage   = "Please select country first"
)

// Phase is the lifecycle state of a wizard.
type Phase int

const (
	PhaseEditing Phase = iota
	PhaseSubmitting
	PhaseSubmitted
	PhaseCancelled
)

func (p Phase) String() string {
	switch p {
	case PhaseEditing:
		return "editing"
	case PhaseSubmitting:
		return "submitting"
	case PhaseSubmitted:
		return "submitted"
	case PhaseCancelled:
		return "cancelled"
	}
	return fmt.Sprintf("phase(%d)", int(p))
}

// Terminal reports whether no further transitions are possible.
func (p Phase) Terminal() bool {
	return p == PhaseSubmitted || p == PhaseCancelled
}

// MessageKind classifies the single message line shown under the form.
type MessageKind int

const (
	MessageNone MessageKind = iota
	MessageError
	MessageWarning
	MessageSuccess
)

// Actor is the signed-in person driving the wizard.
type Actor struct {
	Email          string
	Name           string
	Role           models.UserRole
	CustomerNumber string
	CustomerName   string
	CountryCode    string
	LanguageCode   string
}

// Submitter sends a completed draft to the intake API.
type Submitter interface {
	SubmitRequest(ctx context.Context, req models.IntakeSubmission) (*models.SubmitResponse, error)
}

// ItemValidator checks item eligibility before submission.
type ItemValidator interface {
	ValidateItem(ctx context.Context, req models.ItemValidationRequest) (*models.ItemValidation, error)
}

// Outcome is handed to the caller after a successful submission.
type Outcome struct {
	RequestID   int64
	RequestCode string
	Message     string
	NextSteps   string
	// Attachments are the local files still to be uploaded for the request.
	Attachments []string
}

type Options struct {
	Actor     Actor
	Flows     *FlowSet
	FlowName  string // forces a named flow instead of the role bindings
	Reasons   *models.ReasonTaxonomy
	Submitter Submitter
	Validator ItemValidator

	OnSubmitted func(Outcome)
	OnCancelled func()
}

// Wizard drives one draft from the first step to submission or cancellation.
type Wizard struct {
	mu         sync.Mutex
	actor      Actor
	flows      *FlowSet
	forced     string
	flow       *Flow
	step       int
	phase      Phase
	draft      Draft
	message    string
	kind       MessageKind
	reasons    *models.ReasonTaxonomy
	outcome    *Outcome
	validating bool
	// picked is the lookup result the identity fields were last filled from.
	picked     *models.LookupItem

	submitter   Submitter
	validator   ItemValidator
	onSubmitted func(Outcome)
	onCancelled func()

	// Items backs the serial and item number lookups; Customers backs the
	// staff customer picker.
	Items     *Search[models.LookupItem]
	Customers *Search[models.CustomerMatch]
}

func New(opts Options) (*Wizard, error) {
	if opts.Submitter == nil {
		return nil, fmt.Errorf("wizard: a submitter is required")
	}
	flows := opts.Flows
	if flows == nil {
		var err error
		if flows, err = DefaultFlows(); err != nil {
			return nil, err
		}
	}

	w := &Wizard{
		actor:       opts.Actor,
		flows:       flows,
		forced:      opts.FlowName,
		reasons:     opts.Reasons,
		submitter:   opts.Submitter,
		validator:   opts.Validator,
		onSubmitted: opts.OnSubmitted,
		onCancelled: opts.OnCancelled,
		Items:       NewSearch[models.LookupItem](),
		Customers:   NewSearch[models.CustomerMatch](),
	}
	w.draft = NewDraft(opts.Actor)

	flow, err := w.resolveFlow(w.draft.RequestType)
	if err != nil {
		return nil, err
	}
	w.flow = flow
	if !flow.HasField(FieldRequestType) {
		w.draft.RequestType = ""
	}
	return w, nil
}

func (w *Wizard) resolveFlow(rt models.RequestType) (*Flow, error) {
	if w.forced != "" {
		return w.flows.Get(w.forced)
	}
	return w.flows.Select(w.actor.Role, rt)
}

// View is a consistent copy of the wizard state for rendering.
type View struct {
	Flow        string
	StepIndex   int
	StepCount   int
	Step        Step
	Fields      []FieldSpec
	Phase       Phase
	Message     string
	MessageKind MessageKind
	Draft       Draft
	Outcome     *Outcome
	Validating  bool
	Reasons     *models.ReasonTaxonomy
}

// First reports whether Back has nowhere to go.
func (v View) First() bool { return v.StepIndex == 0 }

// Final reports whether the current step is the submit step.
func (v View) Final() bool { return v.StepIndex == v.StepCount-1 }

func (w *Wizard) Snapshot() View {
	w.mu.Lock()
	defer w.mu.Unlock()

	step := w.flow.Steps[w.step]
	v := View{
		Flow:        w.flow.Name,
		StepIndex:   w.step,
		StepCount:   len(w.flow.Steps),
		Step:        step,
		Fields:      step.VisibleFields(w.draft.RequestType, w.actor.Role),
		Phase:       w.phase,
		Message:     w.message,
		MessageKind: w.kind,
		Draft:       w.draft.Clone(),
		Validating:  w.validating,
		Reasons:     w.reasons,
	}
	if w.outcome != nil {
		o := *w.outcome
		v.Outcome = &o
	}
	return v
}

func (w *Wizard) editable() error {
	switch w.phase {
	case PhaseSubmitting:
		return ErrSubmitInFlight
	case PhaseSubmitted, PhaseCancelled:
		return ErrFinished
	}
	return nil
}

func (w *Wizard) setMessage(kind MessageKind, msg string) {
	w.kind = kind
	w.message = msg
	if msg == "" {
		w.kind = MessageNone
	}
}

// Next advances when the current step predicate holds. Otherwise the wizard
// stays put and the failing rule's message is shown.
func (w *Wizard) Next() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if err := w.editable(); err != nil {
		return err
	}
	if w.step == len(w.flow.Steps)-1 {
		return ErrLastStep
	}
	step := w.flow.Steps[w.step]
	if msg := step.Check(&w.draft, w.actor.Role); msg != "" {
		w.setMessage(MessageError, msg)
		return &ValidationError{Step: step.ID, Message: msg}
	}
	w.step++
	w.setMessage(MessageNone, "")
	return nil
}

// Back moves one step back without validating and keeps every field value.
// On the first step it only clears the message.
func (w *Wizard) Back() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if err := w.editable(); err != nil {
		return err
	}
	if w.step > 0 {
		w.step--
	}
	w.setMessage(MessageNone, "")
	return nil
}

// Cancel discards the draft. It is refused while a submission is in flight
// because the request may already exist on the server.
func (w *Wizard) Cancel() error {
	w.mu.Lock()
	if err := w.editable(); err != nil {
		w.mu.Unlock()
		return err
	}
	w.phase = PhaseCancelled
	w.draft = Draft{}
	w.picked = nil
	w.setMessage(MessageNone, "")
	w.Items.Reset()
	w.Customers.Reset()
	cb := w.onCancelled
	w.mu.Unlock()

	if cb != nil {
		cb()
	}
	return nil
}

// Submit validates every step and sends the draft. Only one submission
// can be in flight; a second call while Submitting returns ErrSubmitInFlight
// without contacting the API. On failure the wizard returns to the final step
// with a message and can be submitted again.
func (w *Wizard) Submit(ctx context.Context) (*Outcome, error) {
	w.mu.Lock()
	if err := w.editable(); err != nil {
		w.mu.Unlock()
		return nil, err
	}
	if w.step != len(w.flow.Steps)-1 {
		w.mu.Unlock()
		return nil, ErrNotFinalStep
	}
	// Fields stay editable from any step, so every predicate is checked
	// again. The wizard moves back to the first step that fails.
	for i, step := range w.flow.Steps {
		if msg := step.Check(&w.draft, w.actor.Role); msg != "" {
			w.step = i
			w.setMessage(MessageError, msg)
			w.mu.Unlock()
			return nil, &ValidationError{Step: step.ID, Message: msg}
		}
	}
	payload, err := w.draft.Submission()
	if err != nil {
		w.setMessage(MessageError, DefaultStepMessage)
		w.mu.Unlock()
		return nil, err
	}
	w.phase = PhaseSubmitting
	w.setMessage(MessageNone, "")
	submitter := w.submitter
	w.mu.Unlock()

	resp, err := submitter.SubmitRequest(ctx, payload)

	w.mu.Lock()
	if err == nil && resp == nil {
		err = ErrEmptyResponse
	}
	if err != nil {
		w.phase = PhaseEditing
		w.setMessage(MessageError, userMessage(err, SubmitFailedMessage))
		w.mu.Unlock()
		return nil, err
	}
	out := Outcome{
		RequestID:   resp.RequestID,
		RequestCode: resp.RequestCode,
		Message:     resp.Message,
		NextSteps:   resp.NextSteps,
		Attachments: append([]string(nil), w.draft.Attachments...),
	}
	w.phase = PhaseSubmitted
	w.outcome = &out
	w.draft = Draft{}
	w.picked = nil
	w.setMessage(MessageSuccess, resp.Message)
	cb := w.onSubmitted
	w.mu.Unlock()

	if cb != nil {
		cb(out)
	}
	return &out, nil
}

// SetField edits one draft field. Request type and reasons are routed through
// their dedicated setters so their invariants hold. Editing clears the
// current message.
func (w *Wizard) SetField(f Field, value string) error {
	switch f {
	case FieldRequestType:
		return w.SetRequestType(models.RequestType(value))
	case FieldMainReason:
		return w.SetMainReason(value)
	case FieldSubReason:
		return w.SetSubReason(value)
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	if err := w.editable(); err != nil {
		return err
	}
	if f == FieldSerialNumber || f == FieldItemNumber {
		w.dropPicked(f, value)
	}
	if err := w.draft.set(f, value); err != nil {
		return err
	}
	w.setMessage(MessageNone, "")
	return nil
}

// dropPicked clears the fields a lookup selection or item validation filled
// in once the identity term they belong to is retyped, so a new serial is
// never paired with another item's number and description.
func (w *Wizard) dropPicked(f Field, value string) {
	if w.picked == nil {
		return
	}
	prev := w.picked.ItemNumber
	if f == FieldSerialNumber {
		prev = w.picked.SerialNumber
	}
	if prev == "" || prev == value {
		return
	}
	w.draft.clearIdentity()
	w.picked = nil
}

// SetRequestType switches the identity selection mode. It is only allowed on
// the first step and may switch to a different flow.
func (w *Wizard) SetRequestType(rt models.RequestType) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if err := w.editable(); err != nil {
		return err
	}
	if !rt.Valid() {
		return fmt.Errorf("%w: request type %q", ErrInvalidValue, rt)
	}
	if w.step != 0 {
		return ErrRequestTypeLocked
	}
	flow, err := w.resolveFlow(rt)
	if err != nil {
		return err
	}
	w.draft.RequestType = rt
	w.flow = flow
	w.Items.Reset()
	w.setMessage(MessageNone, "")
	return nil
}

// SetReasons installs the reason taxonomy once it has been loaded.
func (w *Wizard) SetReasons(t *models.ReasonTaxonomy) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.reasons = t
}

// SetMainReason selects a main reason and always clears the sub reason, so
// selecting the same main reason twice leaves the same state.
func (w *Wizard) SetMainReason(main string) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if err := w.editable(); err != nil {
		return err
	}
	if main != "" && w.reasons != nil && !w.reasons.HasMain(main) {
		return fmt.Errorf("%w: %q", ErrUnknownReason, main)
	}
	w.draft.MainReason = main
	w.draft.SubReason = ""
	w.setMessage(MessageNone, "")
	return nil
}

// SetSubReason selects a sub reason of the current main reason. An empty
// value clears it.
func (w *Wizard) SetSubReason(sub string) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if err := w.editable(); err != nil {
		return err
	}
	if sub != "" && !w.reasons.BelongsTo(w.draft.MainReason, sub) {
		return fmt.Errorf("%w: %q under %q", ErrUnknownSubReason, sub, w.draft.MainReason)
	}
	w.draft.SubReason = sub
	w.setMessage(MessageNone, "")
	return nil
}

// SelectItem applies a lookup result. Number, serial, lot, description and
// family are overwritten together and the dropdown is closed.
func (w *Wizard) SelectItem(it models.LookupItem) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if err := w.editable(); err != nil {
		return err
	}
	w.draft.ItemNumber = it.ItemNumber
	w.draft.SerialNumber = it.SerialNumber
	w.draft.LotNumber = it.LotNumber
	w.draft.ItemDescription = it.ItemDescription
	w.draft.ProductFamily = it.ProductFamily
	picked := it
	w.picked = &picked
	w.Items.Clear()
	w.setMessage(MessageNone, "")
	return nil
}

// SelectCustomer applies a customer lookup result on behalf of staff users.
func (w *Wizard) SelectCustomer(c models.CustomerMatch) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if err := w.editable(); err != nil {
		return err
	}
	w.draft.CustomerNumber = c.CustomerNumber
	w.draft.CustomerName = c.CustomerName
	w.draft.Territory = c.Territory
	if c.CountryCode != "" {
		w.draft.CountryCode = c.CountryCode
	}
	w.Customers.Clear()
	w.setMessage(MessageNone, "")
	return nil
}

// ValidateItem asks the API whether the entered serial or item number is
// eligible for service. A valid item fills description, family and lot. A
// rejection only sets a message; it never blocks Next.
func (w *Wizard) ValidateItem(ctx context.Context) error {
	w.mu.Lock()
	if err := w.editable(); err != nil {
		w.mu.Unlock()
		return err
	}
	if w.validator == nil {
		w.mu.Unlock()
		return ErrNoValidator
	}
	if w.validating {
		w.mu.Unlock()
		return ErrValidationInFlight
	}
	req := models.ItemValidationRequest{
		CountryCode: strings.TrimSpace(w.draft.CountryCode),
	}
	switch w.draft.identityType() {
	case models.RequestTypeSerial:
		req.SerialNumber = strings.TrimSpace(w.draft.SerialNumber)
	case models.RequestTypeItem:
		req.ItemNumber = strings.TrimSpace(w.draft.ItemNumber)
	}
	if req.SerialNumber == "" && req.ItemNumber == "" {
		w.setMessage(MessageWarning, NothingToValidateMessage)
		w.mu.Unlock()
		return ErrNothingToValidate
	}
	if req.CountryCode == "" {
		w.setMessage(MessageWarning, CountryRequiredMessage)
		w.mu.Unlock()
		return ErrNothingToValidate
	}
	w.validating = true
	validator := w.validator
	w.mu.Unlock()

	resp, err := validator.ValidateItem(ctx, req)

	w.mu.Lock()
	defer w.mu.Unlock()
	w.validating = false
	if w.phase != PhaseEditing {
		return ErrFinished
	}
	if err == nil && resp == nil {
		err = ErrEmptyResponse
	}
	if err != nil {
		w.setMessage(MessageWarning, userMessage(err, ValidateFailedMessage))
		return err
	}
	if !resp.Valid || resp.Item == nil {
		msg := resp.Error
		if msg == "" {
			msg = resp.Message
		}
		if msg == "" {
			msg = ValidateFailedMessage
		}
		w.setMessage(MessageWarning, msg)
		return nil
	}
	item := resp.Item
	w.draft.ItemDescription = item.ItemDescription
	w.draft.ProductFamily = item.ProductFamily
	w.draft.LotNumber = item.LotNumber
	if w.draft.ItemNumber == "" {
		w.draft.ItemNumber = item.ItemNumber
	}
	w.picked = &models.LookupItem{
		ItemNumber:   w.draft.ItemNumber,
		SerialNumber: w.draft.SerialNumber,
	}
	w.setMessage(MessageSuccess, ItemValidatedMessage)
	return nil
}

// AddAttachment queues a local file for upload after submission.
func (w *Wizard) AddAttachment(path string) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if err := w.editable(); err != nil {
		return err
	}
	if path = strings.TrimSpace(path); path == "" {
		return fmt.Errorf("%w: empty attachment path", ErrInvalidValue)
	}
	w.draft.Attachments = append(w.draft.Attachments, path)
	return nil
}

// Actor returns the identity the wizard was started for.
func (w *Wizard) Actor() Actor {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.actor
}
