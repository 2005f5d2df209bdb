package tui

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/procare-io/srportal/internal/models"
	"github.com/procare-io/srportal/internal/session"
	"github.com/procare-io/srportal/internal/wizard"
)

type fakeBackend struct {
	mu        sync.Mutex
	submits   atomic.Int32
	uploaded  []string
	terms     []string
	items     []models.LookupItem
	customers []models.CustomerMatch
	submitErr error
}

func (f *fakeBackend) SubmitRequest(_ context.Context, _ models.IntakeSubmission) (*models.SubmitResponse, error) {
	f.submits.Add(1)
	if f.submitErr != nil {
		return nil, f.submitErr
	}
	return &models.SubmitResponse{
		Success:     true,
		RequestID:   7,
		RequestCode: "SR-1007",
		Message:     "Service request submitted successfully",
		NextSteps:   "A service coordinator will contact you within 1 business day.",
	}, nil
}

func (f *fakeBackend) ValidateItem(_ context.Context, req models.ItemValidationRequest) (*models.ItemValidation, error) {
	return &models.ItemValidation{Valid: true, Item: &models.LookupItem{
		ItemNumber: "ITM-100", SerialNumber: req.SerialNumber, ItemDescription: "Infusion Pump",
	}}, nil
}

func (f *fakeBackend) Countries(context.Context) ([]models.Country, error) {
	return []models.Country{{CountryCode: "US", CountryName: "United States"}, {CountryCode: "DE", CountryName: "Germany"}}, nil
}

func (f *fakeBackend) IssueReasons(context.Context, string) (*models.ReasonTaxonomy, error) {
	t := &models.ReasonTaxonomy{}
	t.Add("Device Malfunction", "Power Failure")
	t.Add("Preventive Maintenance", "")
	return t, nil
}

func (f *fakeBackend) SearchItems(_ context.Context, term string) ([]models.LookupItem, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.terms = append(f.terms, term)
	return f.items, nil
}

func (f *fakeBackend) SearchSerials(ctx context.Context, term string) ([]models.LookupItem, error) {
	return f.SearchItems(ctx, term)
}

func (f *fakeBackend) SearchCustomers(_ context.Context, term string) ([]models.CustomerMatch, error) {
	return f.customers, nil
}

func (f *fakeBackend) Upload(_ context.Context, _ int64, paths ...string) (*models.UploadResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.uploaded = append(f.uploaded, paths...)
	return &models.UploadResult{Success: true, Message: "2 file(s) uploaded"}, nil
}

func customer() wizard.Actor {
	return wizard.Actor{
		Email:          "jane@hospital.example",
		Name:           "Jane Doe",
		Role:           models.RoleCustomer,
		CustomerNumber: "CUST-001",
		CustomerName:   "General Hospital",
		CountryCode:    "US",
	}
}

// detailsFlow is a two step flow: one form step and the review.
func detailsFlow() *wizard.FlowSet {
	flows := wizard.MustDefaultFlows()
	flows.Flows["details"] = &wizard.Flow{Name: "details", Steps: []wizard.Step{
		{
			ID:    "details",
			Title: "Details",
			Fields: []wizard.FieldSpec{
				{Name: wizard.FieldIssueDescription, Label: "Description", Kind: wizard.KindTextArea},
				{Name: wizard.FieldLoanerRequired, Label: "Loaner required", Kind: wizard.KindToggle},
				{Name: wizard.FieldUrgencyLevel, Label: "Urgency", Kind: wizard.KindChoice, Source: wizard.SourceUrgency},
				{Name: wizard.FieldAttachments, Label: "Files", Kind: wizard.KindFiles},
			},
			Rules: []wizard.Rule{{
				Kind:    wizard.RuleMinLength,
				Fields:  []wizard.Field{wizard.FieldIssueDescription},
				Min:     10,
				Message: "Please provide a detailed description (at least 10 characters)",
			}},
		},
		{ID: "review", Title: "Review & Submit"},
	}}
	return flows
}

func newTestModel(t *testing.T, b *fakeBackend, flow string) Model {
	t.Helper()
	w, err := wizard.New(wizard.Options{
		Actor:     customer(),
		Flows:     detailsFlow(),
		FlowName:  flow,
		Submitter: b,
		Validator: b,
	})
	require.NoError(t, err)
	ref, err := LoadReference(context.Background(), b, "en")
	require.NoError(t, err)
	m, err := NewModel(Options{Wizard: w, Backend: b, Reference: ref, Debounce: time.Millisecond})
	require.NoError(t, err)
	return m
}

func press(t *testing.T, m Model, msgs ...tea.Msg) (Model, tea.Cmd) {
	t.Helper()
	var cmd tea.Cmd
	for _, msg := range msgs {
		var updated tea.Model
		updated, cmd = m.Update(msg)
		m = updated.(Model)
	}
	return m, cmd
}

func typed(s string) tea.KeyMsg { return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)} }

var (
	ctrlN = tea.KeyMsg{Type: tea.KeyCtrlN}
	ctrlB = tea.KeyMsg{Type: tea.KeyCtrlB}
	ctrlS = tea.KeyMsg{Type: tea.KeyCtrlS}
	ctrlV = tea.KeyMsg{Type: tea.KeyCtrlV}
	tab   = tea.KeyMsg{Type: tea.KeyTab}
	enter = tea.KeyMsg{Type: tea.KeyEnter}
	esc   = tea.KeyMsg{Type: tea.KeyEsc}
	right = tea.KeyMsg{Type: tea.KeyRight}
	down  = tea.KeyMsg{Type: tea.KeyDown}
	space = tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}
)

// drain runs cmd and any batched commands, returning the messages that
// arrive promptly. Timers longer than the wait, such as cursor blinks, are
// dropped.
func drain(cmd tea.Cmd) []tea.Msg {
	if cmd == nil {
		return nil
	}
	ch := make(chan tea.Msg, 1)
	go func() { ch <- cmd() }()
	select {
	case msg := <-ch:
		if batch, ok := msg.(tea.BatchMsg); ok {
			var out []tea.Msg
			for _, c := range batch {
				out = append(out, drain(c)...)
			}
			return out
		}
		return []tea.Msg{msg}
	case <-time.After(100 * time.Millisecond):
		return nil
	}
}

func find[T tea.Msg](msgs []tea.Msg) (T, bool) {
	for _, msg := range msgs {
		if v, ok := msg.(T); ok {
			return v, true
		}
	}
	var zero T
	return zero, false
}

func TestLoadReference(t *testing.T) {
	ref, err := LoadReference(context.Background(), &fakeBackend{}, "en")
	require.NoError(t, err)
	assert.Len(t, ref.Countries, 2)
	assert.Equal(t, []string{"Device Malfunction", "Preventive Maintenance"}, ref.Reasons.MainReasons())
}

func TestNewModelRequiresWizard(t *testing.T) {
	_, err := NewModel(Options{Backend: &fakeBackend{}})
	assert.Error(t, err)
}

func TestStepNavigation(t *testing.T) {
	m := newTestModel(t, &fakeBackend{}, "details")
	assert.Contains(t, m.View(), "Step 1 of 2: Details")

	m, _ = press(t, m, typed("too short"), ctrlN)
	assert.Equal(t, 0, m.wiz.Snapshot().StepIndex)
	assert.Contains(t, m.View(), "Please provide a detailed description (at least 10 characters)")

	m, _ = press(t, m, typed("!"), ctrlN)
	view := m.wiz.Snapshot()
	require.Equal(t, 1, view.StepIndex)
	assert.Contains(t, m.View(), "Review & Submit")
	assert.Contains(t, m.View(), "too short!")

	m, _ = press(t, m, ctrlB)
	assert.Equal(t, 0, m.wiz.Snapshot().StepIndex)
	assert.Equal(t, "too short!", m.input.Value())
}

func TestChoiceAndToggleFields(t *testing.T) {
	m := newTestModel(t, &fakeBackend{}, "details")

	m, _ = press(t, m, tab, space)
	assert.True(t, m.wiz.Snapshot().Draft.LoanerRequired)
	assert.Contains(t, m.View(), "[x]")

	m, _ = press(t, m, tab, right)
	assert.Equal(t, models.UrgencyUrgent, m.wiz.Snapshot().Draft.UrgencyLevel)
	m, _ = press(t, m, right, right)
	assert.Equal(t, models.UrgencyNormal, m.wiz.Snapshot().Draft.UrgencyLevel)
}

func TestSearchDropdown(t *testing.T) {
	b := &fakeBackend{items: []models.LookupItem{
		{ItemNumber: "ITM-100", ItemDescription: "Infusion Pump", LotNumber: "L1"},
		{ItemNumber: "ITM-101", ItemDescription: "Infusion Pump XL", LotNumber: "L2"},
	}}
	m := newTestModel(t, b, "quick")

	m, cmd := press(t, m, typed("IT"))
	firstTick, ok := find[searchTickMsg](drain(cmd))
	require.True(t, ok)

	m, cmd = press(t, m, typed("M"))
	latestTick, ok := find[searchTickMsg](drain(cmd))
	require.True(t, ok)

	// The superseded keystroke never reaches the API.
	_, cmd = press(t, m, firstTick)
	assert.Nil(t, cmd)

	m, cmd = press(t, m, latestTick)
	results, ok := find[itemResultsMsg](drain(cmd))
	require.True(t, ok)
	m, _ = press(t, m, results)
	assert.Equal(t, []string{"ITM"}, b.terms)
	assert.Contains(t, m.View(), "Infusion Pump XL")

	m, _ = press(t, m, down, enter)
	draft := m.wiz.Snapshot().Draft
	assert.Equal(t, "ITM-101", draft.ItemNumber)
	assert.Equal(t, "L2", draft.LotNumber)
	assert.Equal(t, "ITM-101", m.input.Value())
	assert.False(t, m.wiz.Items.Open())
}

func TestEditingSearchTermDropsSelection(t *testing.T) {
	b := &fakeBackend{items: []models.LookupItem{
		{ItemNumber: "ITM-100", ItemDescription: "Infusion Pump", ProductFamily: "Infusion", LotNumber: "L1"},
	}}
	m := newTestModel(t, b, "quick")

	m, cmd := press(t, m, typed("ITM"))
	tick, _ := find[searchTickMsg](drain(cmd))
	m, cmd = press(t, m, tick)
	results, _ := find[itemResultsMsg](drain(cmd))
	m, _ = press(t, m, results, enter)
	require.Equal(t, "Infusion Pump", m.wiz.Snapshot().Draft.ItemDescription)

	m, _ = press(t, m, typed("9"))
	draft := m.wiz.Snapshot().Draft
	assert.Equal(t, "ITM-1009", draft.ItemNumber)
	assert.Empty(t, draft.ItemDescription)
	assert.Empty(t, draft.ProductFamily)
	assert.Empty(t, draft.LotNumber)
}

func TestSearchBelowMinimumLength(t *testing.T) {
	b := &fakeBackend{}
	m := newTestModel(t, b, "quick")

	_, cmd := press(t, m, typed("I"))
	_, ok := find[searchTickMsg](drain(cmd))
	assert.False(t, ok)
}

func TestEscClosesDropdownBeforeCancelling(t *testing.T) {
	b := &fakeBackend{items: []models.LookupItem{{ItemNumber: "ITM-100"}}}
	m := newTestModel(t, b, "quick")

	m, cmd := press(t, m, typed("ITM"))
	tick, _ := find[searchTickMsg](drain(cmd))
	m, cmd = press(t, m, tick)
	results, _ := find[itemResultsMsg](drain(cmd))
	m, _ = press(t, m, results)
	require.True(t, m.wiz.Items.Open())

	m, cmd = press(t, m, esc)
	assert.Nil(t, cmd)
	assert.False(t, m.wiz.Items.Open())
	assert.False(t, m.Cancelled())

	m, cmd = press(t, m, esc)
	require.NotNil(t, cmd)
	_, quit := cmd().(tea.QuitMsg)
	assert.True(t, quit)
	assert.True(t, m.Cancelled())
	assert.Contains(t, m.View(), "Request cancelled")
}

func TestSubmit(t *testing.T) {
	b := &fakeBackend{}
	m := newTestModel(t, b, "details")

	m, _ = press(t, m, typed("Pump alarms during infusion"), ctrlS)
	assert.Contains(t, m.View(), "Complete the remaining steps before submitting")

	m, _ = press(t, m, tab, tab, tab, typed("a.pdf, b.jpg"), ctrlN)
	m, cmd := press(t, m, ctrlS)
	assert.True(t, m.submitting)

	// Keys are ignored while the request is in flight.
	m, second := press(t, m, ctrlS)
	assert.Nil(t, second)

	submitted, ok := find[submittedMsg](drain(cmd))
	require.True(t, ok)
	require.NoError(t, submitted.err)
	assert.Equal(t, int32(1), b.submits.Load())

	m, cmd = press(t, m, submitted)
	require.True(t, m.uploading)
	uploaded, ok := find[uploadedMsg](drain(cmd))
	require.True(t, ok)
	m, _ = press(t, m, uploaded)
	assert.Equal(t, []string{"a.pdf", "b.jpg"}, b.uploaded)

	out := m.View()
	assert.Contains(t, out, "SR-1007")
	assert.Contains(t, out, "A service coordinator will contact you")
	assert.Contains(t, out, "2 file(s) uploaded")
	assert.Equal(t, "SR-1007", m.Outcome().RequestCode)

	_, cmd = press(t, m, enter)
	require.NotNil(t, cmd)
	_, quit := cmd().(tea.QuitMsg)
	assert.True(t, quit)
}

func TestSubmitFailureStaysOnFinalStep(t *testing.T) {
	b := &fakeBackend{submitErr: errors.New("connection refused")}
	m := newTestModel(t, b, "details")

	m, _ = press(t, m, typed("Pump alarms during infusion"), ctrlN)
	m, cmd := press(t, m, ctrlS)
	submitted, ok := find[submittedMsg](drain(cmd))
	require.True(t, ok)
	m, _ = press(t, m, submitted)

	view := m.wiz.Snapshot()
	assert.Equal(t, wizard.PhaseEditing, view.Phase)
	assert.Equal(t, 1, view.StepIndex)
	assert.False(t, m.submitting)
	assert.Contains(t, m.View(), wizard.SubmitFailedMessage)
}

func TestValidateItem(t *testing.T) {
	m := newTestModel(t, &fakeBackend{}, "")

	// Standard flow, step one: country, request type, serial number.
	m, _ = press(t, m, tab, tab, typed("SN-4410"))
	m, cmd := press(t, m, ctrlV)
	validated, ok := find[validatedMsg](drain(cmd))
	require.True(t, ok)
	require.NoError(t, validated.err)
	m, _ = press(t, m, validated)

	draft := m.wiz.Snapshot().Draft
	assert.Equal(t, "Infusion Pump", draft.ItemDescription)
	assert.Equal(t, "ITM-100", draft.ItemNumber)
	assert.Contains(t, m.View(), wizard.ItemValidatedMessage)
}

func TestSignedOutNotice(t *testing.T) {
	events := make(chan session.Event, 1)
	b := &fakeBackend{}
	w, err := wizard.New(wizard.Options{Actor: customer(), Flows: detailsFlow(), FlowName: "details", Submitter: b})
	require.NoError(t, err)
	m, err := NewModel(Options{Wizard: w, Backend: b, Session: events})
	require.NoError(t, err)

	m, cmd := press(t, m, sessionMsg{event: session.Event{SignedIn: false}, ok: true})
	assert.NotNil(t, cmd)
	assert.Contains(t, m.View(), signedOutNotice)

	m, _ = press(t, m, sessionMsg{event: session.Event{SignedIn: true, Email: "jane@hospital.example"}, ok: true})
	assert.NotContains(t, m.View(), signedOutNotice)

	close(events)
	m, cmd = press(t, m, sessionMsg{ok: false})
	assert.Nil(t, cmd)
	assert.Nil(t, m.events)
}
