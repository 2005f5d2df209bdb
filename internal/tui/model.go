// Package tui is the terminal front end of the request wizard. It renders
// whatever flow the wizard is running from the step field specs, so a new
// flow file needs no code here.
package tui

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/procare-io/srportal/internal/models"
	"github.com/procare-io/srportal/internal/session"
	"github.com/procare-io/srportal/internal/wizard"
)

// DefaultDebounce is the pause after the last keystroke before a lookup is sent.
const DefaultDebounce = 250 * time.Millisecond

const signedOutNotice = "You have been signed out in another terminal. Sign in again before submitting."

type Options struct {
	Context   context.Context
	Wizard    *wizard.Wizard
	Backend   Backend
	Reference *Reference
	// Session delivers sign-in changes made outside this process.
	Session  <-chan session.Event
	Debounce time.Duration
	Keys     *KeyMap
	Theme    *Theme
}

// Model is the bubbletea model of one wizard run.
type Model struct {
	ctx      context.Context
	wiz      *wizard.Wizard
	backend  Backend
	ref      Reference
	events   <-chan session.Event
	debounce time.Duration
	keys     KeyMap
	styles   styles

	focus   int
	input   textinput.Model
	cursor  int
	spinner spinner.Model

	seen       []wizard.FieldSpec
	notice     string
	signedOut  bool
	submitting bool
	uploading  bool
	uploadNote string
	quitting   bool
	width      int
}

type (
	searchTickMsg struct {
		source string
		seq    uint64
		term   string
	}
	itemResultsMsg struct {
		seq   uint64
		items []models.LookupItem
		err   error
	}
	customerResultsMsg struct {
		seq       uint64
		customers []models.CustomerMatch
		err       error
	}
	submittedMsg struct {
		outcome *wizard.Outcome
		err     error
	}
	validatedMsg struct{ err error }
	uploadedMsg  struct {
		result *models.UploadResult
		err    error
	}
	sessionMsg struct {
		event session.Event
		ok    bool
	}
)

func NewModel(opts Options) (Model, error) {
	if opts.Wizard == nil || opts.Backend == nil {
		return Model{}, errors.New("tui: a wizard and a backend are required")
	}
	m := Model{
		ctx:      opts.Context,
		wiz:      opts.Wizard,
		backend:  opts.Backend,
		events:   opts.Session,
		debounce: opts.Debounce,
		keys:     DefaultKeyMap,
		styles:   newStyles(DefaultTheme),
	}
	if m.ctx == nil {
		m.ctx = context.Background()
	}
	if m.debounce <= 0 {
		m.debounce = DefaultDebounce
	}
	if opts.Keys != nil {
		m.keys = *opts.Keys
	}
	if opts.Theme != nil {
		m.styles = newStyles(*opts.Theme)
	}
	if opts.Reference != nil {
		m.ref = *opts.Reference
		if m.ref.Reasons != nil {
			m.wiz.SetReasons(m.ref.Reasons)
		}
	}

	m.input = textinput.New()
	m.input.CharLimit = 2000
	m.input.Width = 48
	m.spinner = spinner.New()
	m.spinner.Spinner = spinner.Dot

	m.enterStep()
	return m, nil
}

func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{textinput.Blink}
	if m.events != nil {
		cmds = append(cmds, waitForSession(m.events))
	}
	return tea.Batch(cmds...)
}

func waitForSession(events <-chan session.Event) tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-events
		return sessionMsg{event: ev, ok: ok}
	}
}

// Outcome returns the submission result once the request was created.
func (m Model) Outcome() *wizard.Outcome {
	return m.wiz.Snapshot().Outcome
}

// Cancelled reports whether the user discarded the draft.
func (m Model) Cancelled() bool {
	return m.wiz.Snapshot().Phase == wizard.PhaseCancelled
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case searchTickMsg:
		return m, m.runSearch(msg)

	case itemResultsMsg:
		if m.wiz.Items.Apply(msg.seq, msg.items, msg.err) {
			m.cursor = 0
		}
		return m, nil

	case customerResultsMsg:
		if m.wiz.Customers.Apply(msg.seq, msg.customers, msg.err) {
			m.cursor = 0
		}
		return m, nil

	case submittedMsg:
		m.submitting = false
		if msg.err != nil {
			m.loadInput()
			return m, nil
		}
		if len(msg.outcome.Attachments) > 0 {
			m.uploading = true
			return m, tea.Batch(m.spinner.Tick, m.upload(msg.outcome))
		}
		return m, nil

	case uploadedMsg:
		m.uploading = false
		switch {
		case msg.err != nil:
			m.uploadNote = "Request submitted, but the attachments could not be uploaded: " + messageOf(msg.err)
		case msg.result != nil && msg.result.Message != "":
			m.uploadNote = msg.result.Message
		default:
			m.uploadNote = "Attachments uploaded"
		}
		return m, nil

	case validatedMsg:
		m.loadInput()
		return m, nil

	case sessionMsg:
		if !msg.ok {
			m.events = nil
			return m, nil
		}
		if msg.event.Err == nil {
			m.signedOut = !msg.event.SignedIn
		}
		return m, waitForSession(m.events)

	case spinner.TickMsg:
		if !m.busy() {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) busy() bool {
	return m.submitting || m.uploading || m.wiz.Snapshot().Validating
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, m.keys.Quit) {
		m.quitting = true
		return m, tea.Quit
	}

	view := m.wiz.Snapshot()
	if view.Phase.Terminal() {
		if !m.uploading && key.Matches(msg, m.keys.Select, m.keys.Cancel) {
			return m, tea.Quit
		}
		return m, nil
	}
	if m.submitting || view.Phase == wizard.PhaseSubmitting {
		return m, nil
	}

	switch {
	case key.Matches(msg, m.keys.Cancel):
		if s := m.openSearch(); s != nil {
			s.clear()
			return m, nil
		}
		if err := m.wiz.Cancel(); err != nil {
			m.notice = messageOf(err)
			return m, nil
		}
		return m, tea.Quit

	case key.Matches(msg, m.keys.Next):
		m.remember(view.Fields)
		if err := m.wiz.Next(); err == nil {
			m.enterStep()
		}
		return m, nil

	case key.Matches(msg, m.keys.Back):
		if err := m.wiz.Back(); err == nil {
			m.enterStep()
		}
		return m, nil

	case key.Matches(msg, m.keys.Submit):
		if !view.Final() {
			m.notice = "Complete the remaining steps before submitting"
			return m, nil
		}
		m.submitting = true
		m.notice = ""
		return m, tea.Batch(m.spinner.Tick, m.submit())

	case key.Matches(msg, m.keys.Validate):
		m.notice = ""
		return m, tea.Batch(m.spinner.Tick, m.validate())

	case key.Matches(msg, m.keys.FieldNext):
		m.moveFocus(1)
		return m, nil

	case key.Matches(msg, m.keys.FieldPrev):
		m.moveFocus(-1)
		return m, nil
	}

	spec, ok := m.current()
	if !ok {
		return m, nil
	}
	switch spec.Kind {
	case wizard.KindChoice:
		return m.editChoice(msg, spec)
	case wizard.KindToggle:
		if key.Matches(msg, m.keys.Toggle, m.keys.Select) {
			v, _ := view.Draft.Get(spec.Name)
			m.setField(spec.Name, fmt.Sprint(v != "true"))
		}
		return m, nil
	case wizard.KindSearch:
		if s := m.openSearch(); s != nil {
			switch {
			case key.Matches(msg, m.keys.Up):
				if m.cursor > 0 {
					m.cursor--
				}
				return m, nil
			case key.Matches(msg, m.keys.Down):
				if m.cursor < s.size()-1 {
					m.cursor++
				}
				return m, nil
			case key.Matches(msg, m.keys.Select):
				if err := s.pick(m.cursor); err != nil {
					m.notice = messageOf(err)
				}
				m.loadInput()
				return m, nil
			}
		}
	}
	return m.editText(msg, spec)
}

func (m Model) editText(msg tea.KeyMsg, spec wizard.FieldSpec) (tea.Model, tea.Cmd) {
	before := m.input.Value()
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	value := m.input.Value()
	if value == before {
		return m, cmd
	}

	if spec.Kind != wizard.KindSearch || spec.Source != wizard.SourceCustomers {
		m.setField(spec.Name, value)
	}
	if spec.Kind != wizard.KindSearch {
		return m, cmd
	}

	s := m.searchFor(spec.Source)
	if s == nil {
		return m, cmd
	}
	seq, query := s.begin(value)
	if !query {
		return m, cmd
	}
	tick := searchTickMsg{source: spec.Source, seq: seq, term: value}
	return m, tea.Batch(cmd, tea.Tick(m.debounce, func(time.Time) tea.Msg { return tick }))
}

func (m Model) editChoice(msg tea.KeyMsg, spec wizard.FieldSpec) (tea.Model, tea.Cmd) {
	step := 0
	switch {
	case key.Matches(msg, m.keys.Right, m.keys.Toggle):
		step = 1
	case key.Matches(msg, m.keys.Left):
		step = -1
	default:
		return m, nil
	}
	opts := m.options(spec)
	if len(opts) == 0 {
		return m, nil
	}
	view := m.wiz.Snapshot()
	current, _ := view.Draft.Get(spec.Name)
	i := indexOf(opts, current)
	if i < 0 {
		i = 0
	} else {
		i = (i + step + len(opts)) % len(opts)
	}
	m.setField(spec.Name, opts[i].value)
	return m, nil
}

func (m *Model) setField(f wizard.Field, value string) {
	if err := m.wiz.SetField(f, value); err != nil {
		m.notice = messageOf(err)
		return
	}
	m.notice = ""
}

// enterStep resets focus to the first field of the current step.
func (m *Model) enterStep() {
	m.focus = 0
	m.cursor = 0
	m.notice = ""
	m.remember(m.wiz.Snapshot().Fields)
	m.loadInput()
}

func (m *Model) moveFocus(delta int) {
	fields := m.wiz.Snapshot().Fields
	if len(fields) == 0 {
		return
	}
	if s := m.openSearch(); s != nil {
		s.clear()
	}
	m.remember(fields)
	m.focus = (m.focus + delta + len(fields)) % len(fields)
	m.cursor = 0
	m.loadInput()
}

// remember records field labels in first-seen order for the review step.
func (m *Model) remember(fields []wizard.FieldSpec) {
	for _, f := range fields {
		known := false
		for _, s := range m.seen {
			if s.Name == f.Name {
				known = true
				break
			}
		}
		if !known {
			m.seen = append(m.seen, f)
		}
	}
}

func (m Model) current() (wizard.FieldSpec, bool) {
	fields := m.wiz.Snapshot().Fields
	if m.focus < 0 || m.focus >= len(fields) {
		return wizard.FieldSpec{}, false
	}
	return fields[m.focus], true
}

// loadInput copies the focused field's draft value into the text input.
func (m *Model) loadInput() {
	spec, ok := m.current()
	if !ok || !textual(spec.Kind) {
		m.input.Blur()
		m.input.SetValue("")
		return
	}
	view := m.wiz.Snapshot()
	value, _ := view.Draft.Get(spec.Name)
	if spec.Source == wizard.SourceCustomers && value == "" {
		value = m.wiz.Customers.Term()
	}
	m.input.SetValue(value)
	m.input.Placeholder = spec.Placeholder
	m.input.CursorEnd()
	m.input.Focus()
}

func textual(k wizard.FieldKind) bool {
	switch k {
	case wizard.KindText, wizard.KindTextArea, wizard.KindDate, wizard.KindSearch, wizard.KindFiles:
		return true
	}
	return false
}

func (m Model) submit() tea.Cmd {
	ctx, wiz := m.ctx, m.wiz
	return func() tea.Msg {
		out, err := wiz.Submit(ctx)
		return submittedMsg{outcome: out, err: err}
	}
}

func (m Model) validate() tea.Cmd {
	ctx, wiz := m.ctx, m.wiz
	return func() tea.Msg {
		return validatedMsg{err: wiz.ValidateItem(ctx)}
	}
}

func (m Model) upload(out *wizard.Outcome) tea.Cmd {
	ctx, b := m.ctx, m.backend
	id, paths := out.RequestID, out.Attachments
	return func() tea.Msg {
		res, err := b.Upload(ctx, id, paths...)
		return uploadedMsg{result: res, err: err}
	}
}

func (m Model) runSearch(msg searchTickMsg) tea.Cmd {
	s := m.searchFor(msg.source)
	if s == nil || !s.latest(msg.seq) {
		return nil
	}
	ctx, b := m.ctx, m.backend
	switch msg.source {
	case wizard.SourceCustomers:
		return func() tea.Msg {
			res, err := b.SearchCustomers(ctx, msg.term)
			return customerResultsMsg{seq: msg.seq, customers: res, err: err}
		}
	case wizard.SourceSerials:
		return func() tea.Msg {
			res, err := b.SearchSerials(ctx, msg.term)
			return itemResultsMsg{seq: msg.seq, items: res, err: err}
		}
	default:
		return func() tea.Msg {
			res, err := b.SearchItems(ctx, msg.term)
			return itemResultsMsg{seq: msg.seq, items: res, err: err}
		}
	}
}

func messageOf(err error) string {
	var um interface{ UserMessage() string }
	if errors.As(err, &um) {
		return um.UserMessage()
	}
	return err.Error()
}
