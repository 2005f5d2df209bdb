package client

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/procare-io/srportal/internal/models"
)

func dashboardFixture() []models.ServiceRequest {
	day := func(d int) time.Time { return time.Date(2026, 10, d, 9, 0, 0, 0, time.UTC) }
	return []models.ServiceRequest{
		{RequestCode: "SR-1001", ContactName: "Jane Doe", SerialNumber: "SN-1001", Status: models.StatusSubmitted, UrgencyLevel: models.UrgencyNormal, SubmittedDate: day(1)},
		{RequestCode: "SR-1002", ContactName: "Hans Müller", SerialNumber: "SN-2002", Status: models.StatusInProgress, UrgencyLevel: models.UrgencyCritical, SubmittedDate: day(3)},
		{RequestCode: "SR-1003", ContactName: "Ana Silva", ItemNumber: "ITEM-SUR-001", Status: models.StatusResolved, UrgencyLevel: models.UrgencyUrgent, SubmittedDate: day(2)},
	}
}

func codes(rs []models.ServiceRequest) []string {
	out := make([]string, len(rs))
	for i, r := range rs {
		out[i] = r.RequestCode
	}
	return out
}

func TestFilterRequests(t *testing.T) {
	tests := []struct {
		name   string
		filter DashboardFilter
		want   []string
	}{
		{"no filter", DashboardFilter{}, []string{"SR-1001", "SR-1002", "SR-1003"}},
		{"status", DashboardFilter{Status: models.StatusInProgress}, []string{"SR-1002"}},
		{"urgency", DashboardFilter{Urgency: models.UrgencyUrgent}, []string{"SR-1003"}},
		{"search by name", DashboardFilter{Search: "müller"}, []string{"SR-1002"}},
		{"search by serial", DashboardFilter{Search: "sn-1"}, []string{"SR-1001"}},
		{"search by code", DashboardFilter{Search: " SR-100 "}, []string{"SR-1001", "SR-1002", "SR-1003"}},
		{"combined", DashboardFilter{Status: models.StatusSubmitted, Search: "ana"}, []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, codes(FilterRequests(dashboardFixture(), tt.filter)))
		})
	}
}

func TestSortRequests(t *testing.T) {
	tests := []struct {
		key       SortKey
		ascending bool
		want      []string
	}{
		{SortByDate, false, []string{"SR-1002", "SR-1003", "SR-1001"}},
		{SortByDate, true, []string{"SR-1001", "SR-1003", "SR-1002"}},
		{SortByUrgency, false, []string{"SR-1002", "SR-1003", "SR-1001"}},
		{SortByStatus, true, []string{"SR-1002", "SR-1003", "SR-1001"}},
	}
	for _, tt := range tests {
		t.Run(string(tt.key), func(t *testing.T) {
			rs := dashboardFixture()
			SortRequests(rs, tt.key, tt.ascending)
			assert.Equal(t, tt.want, codes(rs))
		})
	}
}

func TestStatusCounts(t *testing.T) {
	counts := StatusCounts(dashboardFixture())
	assert.Equal(t, 1, counts[models.StatusSubmitted])
	assert.Equal(t, 1, counts[models.StatusInProgress])
	assert.Equal(t, 0, counts[models.StatusCancelled])
	assert.Len(t, counts, len(models.RequestStatuses))
}
