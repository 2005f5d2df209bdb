package tui

import (
	"strings"

	"github.com/procare-io/srportal/internal/models"
	"github.com/procare-io/srportal/internal/wizard"
)

// dropdown hides the result type of a wizard search from the model.
type dropdown interface {
	begin(term string) (uint64, bool)
	latest(seq uint64) bool
	clear()
	size() int
	lines() []string
	loading() bool
	err() error
	pick(i int) error
}

type itemDropdown struct {
	wiz *wizard.Wizard
}

func (d itemDropdown) begin(term string) (uint64, bool) { return d.wiz.Items.Begin(term) }
func (d itemDropdown) latest(seq uint64) bool           { return d.wiz.Items.IsLatest(seq) }
func (d itemDropdown) clear()                           { d.wiz.Items.Clear() }
func (d itemDropdown) size() int                        { return len(d.wiz.Items.Results()) }
func (d itemDropdown) loading() bool                    { return d.wiz.Items.Loading() }
func (d itemDropdown) err() error                       { return d.wiz.Items.Err() }

func (d itemDropdown) lines() []string {
	var out []string
	for _, it := range d.wiz.Items.Results() {
		parts := []string{it.ItemNumber}
		if it.SerialNumber != "" {
			parts = append(parts, "S/N "+it.SerialNumber)
		}
		if it.ItemDescription != "" {
			parts = append(parts, it.ItemDescription)
		}
		out = append(out, strings.Join(parts, "  "))
	}
	return out
}

func (d itemDropdown) pick(i int) error {
	results := d.wiz.Items.Results()
	if i < 0 || i >= len(results) {
		return nil
	}
	return d.wiz.SelectItem(results[i])
}

type customerDropdown struct {
	wiz *wizard.Wizard
}

func (d customerDropdown) begin(term string) (uint64, bool) { return d.wiz.Customers.Begin(term) }
func (d customerDropdown) latest(seq uint64) bool           { return d.wiz.Customers.IsLatest(seq) }
func (d customerDropdown) clear()                           { d.wiz.Customers.Clear() }
func (d customerDropdown) size() int                        { return len(d.wiz.Customers.Results()) }
func (d customerDropdown) loading() bool                    { return d.wiz.Customers.Loading() }
func (d customerDropdown) err() error                       { return d.wiz.Customers.Err() }

func (d customerDropdown) lines() []string {
	var out []string
	for _, c := range d.wiz.Customers.Results() {
		line := c.CustomerNumber + "  " + c.CustomerName
		if c.Territory != "" {
			line += "  (" + c.Territory + ")"
		}
		out = append(out, line)
	}
	return out
}

func (d customerDropdown) pick(i int) error {
	results := d.wiz.Customers.Results()
	if i < 0 || i >= len(results) {
		return nil
	}
	return d.wiz.SelectCustomer(results[i])
}

func (m Model) searchFor(source string) dropdown {
	switch source {
	case wizard.SourceCustomers:
		return customerDropdown{wiz: m.wiz}
	case wizard.SourceItems, wizard.SourceSerials:
		return itemDropdown{wiz: m.wiz}
	}
	return nil
}

// openSearch returns the focused field's dropdown when it has results.
func (m Model) openSearch() dropdown {
	spec, ok := m.current()
	if !ok || spec.Kind != wizard.KindSearch {
		return nil
	}
	d := m.searchFor(spec.Source)
	if d == nil || d.size() == 0 {
		return nil
	}
	return d
}

type option struct {
	value string
	label string
}

func indexOf(opts []option, value string) int {
	for i, o := range opts {
		if o.value == value {
			return i
		}
	}
	return -1
}

// options lists the choices of a choice field.
func (m Model) options(spec wizard.FieldSpec) []option {
	view := m.wiz.Snapshot()
	reasons := view.Reasons
	if reasons == nil {
		reasons = m.ref.Reasons
	}

	var values []string
	switch spec.Source {
	case wizard.SourceRequestTypes:
		values = []string{string(models.RequestTypeSerial), string(models.RequestTypeItem), string(models.RequestTypeGeneral)}
	case wizard.SourceUrgency:
		values = []string{string(models.UrgencyNormal), string(models.UrgencyUrgent), string(models.UrgencyCritical)}
	case wizard.SourceContact:
		values = wizard.ContactMethods
	case wizard.SourceMainReasons:
		values = reasons.MainReasons()
	case wizard.SourceSubReasons:
		subs := reasons.SubReasons(view.Draft.MainReason)
		if len(subs) == 0 {
			return nil
		}
		opts := []option{{value: "", label: "(none)"}}
		for _, s := range subs {
			opts = append(opts, option{value: s, label: s})
		}
		return opts
	case wizard.SourceCountries:
		opts := make([]option, 0, len(m.ref.Countries))
		for _, c := range m.ref.Countries {
			opts = append(opts, option{value: c.CountryCode, label: c.CountryCode + " " + c.CountryName})
		}
		return opts
	}

	opts := make([]option, 0, len(values))
	for _, v := range values {
		opts = append(opts, option{value: v, label: v})
	}
	return opts
}
