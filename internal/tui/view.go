package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/lipgloss"

	"github.com/procare-io/srportal/internal/wizard"
)

const maxDropdownRows = 8

func (m Model) View() string {
	if m.quitting {
		return ""
	}
	view := m.wiz.Snapshot()
	switch view.Phase {
	case wizard.PhaseSubmitted:
		return m.successView(view)
	case wizard.PhaseCancelled:
		return m.styles.faint.Render("Request cancelled. Nothing was submitted.") + "\n"
	}

	var b strings.Builder
	b.WriteString(m.styles.title.Render("New Service Request"))
	b.WriteString("  ")
	b.WriteString(m.styles.progress.Render(fmt.Sprintf("Step %d of %d: %s", view.StepIndex+1, view.StepCount, view.Step.Title)))
	b.WriteString("\n")
	if m.signedOut {
		b.WriteString(m.styles.warnMsg.Render(signedOutNotice))
		b.WriteString("\n")
	}
	b.WriteString("\n")

	if len(view.Fields) == 0 {
		b.WriteString(m.reviewView(view))
	}
	for i, spec := range view.Fields {
		b.WriteString(m.fieldView(view, spec, i == m.focus))
		b.WriteString("\n")
		if i == m.focus && spec.Kind == wizard.KindSearch {
			b.WriteString(m.dropdownView(spec))
		}
	}

	b.WriteString("\n")
	switch {
	case m.submitting || view.Phase == wizard.PhaseSubmitting:
		b.WriteString(m.spinner.View() + " Submitting request...")
	case view.Validating:
		b.WriteString(m.spinner.View() + " Validating item...")
	case m.notice != "":
		b.WriteString(m.styles.errMsg.Render(m.notice))
	case view.Message != "":
		b.WriteString(m.messageStyle(view.MessageKind).Render(view.Message))
	}
	b.WriteString("\n\n")
	b.WriteString(m.styles.help.Render(m.helpText(view)))
	return b.String()
}

func (m Model) messageStyle(kind wizard.MessageKind) lipgloss.Style {
	switch kind {
	case wizard.MessageError:
		return m.styles.errMsg
	case wizard.MessageWarning:
		return m.styles.warnMsg
	case wizard.MessageSuccess:
		return m.styles.okMsg
	}
	return m.styles.value
}

func (m Model) fieldView(view wizard.View, spec wizard.FieldSpec, focused bool) string {
	label := m.styles.label.Render(spec.Label)
	if focused {
		label = m.styles.focused.Render("> " + spec.Label)
	}

	value, _ := view.Draft.Get(spec.Name)
	var rendered string
	switch spec.Kind {
	case wizard.KindToggle:
		box := "[ ]"
		if value == "true" {
			box = "[x]"
		}
		rendered = m.styles.value.Render(box)
	case wizard.KindChoice:
		text := value
		for _, o := range m.options(spec) {
			if o.value == value {
				text = o.label
				break
			}
		}
		if text == "" {
			text = "-"
		}
		if focused {
			text = "< " + text + " >"
		}
		rendered = m.styles.value.Render(text)
	default:
		if focused {
			rendered = m.input.View()
		} else {
			rendered = m.styles.value.Render(value)
		}
	}
	return label + " " + rendered
}

func (m Model) dropdownView(spec wizard.FieldSpec) string {
	d := m.searchFor(spec.Source)
	if d == nil {
		return ""
	}
	indent := strings.Repeat(" ", 27)
	if d.loading() {
		return indent + m.styles.faint.Render("Searching...") + "\n"
	}
	if err := d.err(); err != nil {
		return indent + m.styles.warnMsg.Render(messageOf(err)) + "\n"
	}

	var b strings.Builder
	for i, line := range d.lines() {
		if i == maxDropdownRows {
			b.WriteString(indent + m.styles.faint.Render(fmt.Sprintf("... %d more", d.size()-maxDropdownRows)) + "\n")
			break
		}
		if i == m.cursor {
			b.WriteString(indent + m.styles.selected.Render(line) + "\n")
			continue
		}
		b.WriteString(indent + m.styles.value.Render(line) + "\n")
	}
	return b.String()
}

// reviewView lists every filled field seen on the earlier steps.
func (m Model) reviewView(view wizard.View) string {
	var rows []string
	for _, spec := range m.seen {
		if !spec.Visible(view.Draft.RequestType, m.wiz.Actor().Role) {
			continue
		}
		value, err := view.Draft.Get(spec.Name)
		if err != nil || value == "" || value == "false" {
			continue
		}
		if value == "true" {
			value = "Yes"
		}
		rows = append(rows, m.styles.label.Render(spec.Label)+" "+m.styles.value.Render(value))
	}
	if len(rows) == 0 {
		rows = append(rows, m.styles.faint.Render("Nothing entered yet."))
	}
	return m.styles.box.Render(strings.Join(rows, "\n")) + "\n"
}

func (m Model) successView(view wizard.View) string {
	out := view.Outcome
	if out == nil {
		return ""
	}
	rows := []string{
		m.styles.okMsg.Render("Request submitted"),
		"",
		m.styles.label.Render("Request code") + " " + m.styles.title.Render(out.RequestCode),
	}
	if out.Message != "" {
		rows = append(rows, "", m.styles.value.Render(out.Message))
	}
	if out.NextSteps != "" {
		rows = append(rows, "", m.styles.faint.Render("Next steps"), m.styles.value.Render(out.NextSteps))
	}
	switch {
	case m.uploading:
		rows = append(rows, "", m.spinner.View()+fmt.Sprintf(" Uploading %d attachment(s)...", len(out.Attachments)))
	case m.uploadNote != "":
		rows = append(rows, "", m.styles.value.Render(m.uploadNote))
	}
	box := m.styles.box
	if m.width > 4 {
		box = box.MaxWidth(m.width)
	}
	help := "Enter close"
	if m.uploading {
		help = ""
	}
	return box.Render(strings.Join(rows, "\n")) + "\n" + m.styles.help.Render(help) + "\n"
}

func (m Model) helpText(view wizard.View) string {
	bindings := []key.Binding{}
	if !view.Final() {
		bindings = append(bindings, m.keys.Next)
	}
	if !view.First() {
		bindings = append(bindings, m.keys.Back)
	}
	if view.Final() {
		bindings = append(bindings, m.keys.Submit)
	}
	if view.StepIndex == 0 {
		bindings = append(bindings, m.keys.Validate)
	}
	bindings = append(bindings, m.keys.FieldNext, m.keys.Cancel)
	return helpLine(bindings...)
}
