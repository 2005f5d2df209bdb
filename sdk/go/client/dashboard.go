package client

import (
	"sort"
	"strings"

	"github.com/procare-io/srportal/internal/models"
	"github.com/procare-io/srportal/sdk/go/types"
)

// SortKey selects the dashboard column to order by.
type SortKey string

const (
	SortByDate    SortKey = "date"
	SortByUrgency SortKey = "urgency"
	SortByStatus  SortKey = "status"
)

var urgencyRank = map[models.Urgency]int{
	models.UrgencyNormal:   1,
	models.UrgencyUrgent:   2,
	models.UrgencyCritical: 3,
}

// DashboardFilter narrows an already fetched request list. Search matches
// the request code, contact name or serial number, case-insensitively.
type DashboardFilter struct {
	Status  types.RequestStatus
	Urgency models.Urgency
	Search  string
}

func (f DashboardFilter) match(r *types.ServiceRequest) bool {
	if f.Status != "" && r.Status != f.Status {
		return false
	}
	if f.Urgency != "" && r.UrgencyLevel != f.Urgency {
		return false
	}
	term := strings.ToLower(strings.TrimSpace(f.Search))
	if term == "" {
		return true
	}
	for _, v := range []string{r.RequestCode, r.ContactName, r.SerialNumber} {
		if strings.Contains(strings.ToLower(v), term) {
			return true
		}
	}
	return false
}

// FilterRequests returns the requests matching f, preserving order.
func FilterRequests(requests []types.ServiceRequest, f DashboardFilter) []types.ServiceRequest {
	out := make([]types.ServiceRequest, 0, len(requests))
	for i := range requests {
		if f.match(&requests[i]) {
			out = append(out, requests[i])
		}
	}
	return out
}

// SortRequests orders requests in place. Ties keep their relative order.
func SortRequests(requests []types.ServiceRequest, key SortKey, ascending bool) {
	sort.SliceStable(requests, func(i, j int) bool {
		a, b := &requests[i], &requests[j]
		var cmp int
		switch key {
		case SortByUrgency:
			cmp = urgencyRank[a.UrgencyLevel] - urgencyRank[b.UrgencyLevel]
		case SortByStatus:
			cmp = strings.Compare(string(a.Status), string(b.Status))
		default:
			cmp = a.SubmittedDate.Compare(b.SubmittedDate)
		}
		if ascending {
			return cmp < 0
		}
		return cmp > 0
	})
}

// StatusCounts tallies requests per status for the dashboard cards.
func StatusCounts(requests []types.ServiceRequest) map[types.RequestStatus]int {
	counts := make(map[types.RequestStatus]int, len(models.RequestStatuses))
	for _, s := range models.RequestStatuses {
		counts[s] = 0
	}
	for _, r := range requests {
		counts[r.Status]++
	}
	return counts
}
