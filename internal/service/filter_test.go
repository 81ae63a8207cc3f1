package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/mmeshcher/suraksha-service/internal/model"
	"github.com/mmeshcher/suraksha-service/internal/store"
)

func ids(customers []model.CustomerRecord) []string {
	res := make([]string, 0, len(customers))
	for _, c := range customers {
		res = append(res, c.ID)
	}
	return res
}

func TestIsPhoneQuery(t *testing.T) {
	tests := map[string]bool{
		"9876543210":      true,
		"+91 98765-43210": true,
		"(080) 4321":      true,
		"priya 9":         false,
		"flat 5":          false,
		"rajesh":          false,
		" - ":             false,
	}
	for q, want := range tests {
		assert.Equal(t, want, isPhoneQuery(q), q)
	}
}

func date(s string) *time.Time {
	t, _ := time.Parse(model.DateLayout, s)
	return &t
}

func TestFilter(t *testing.T) {
	customers := store.SeedCustomers()
	customers = append(customers,
		model.CustomerRecord{ID: "6", Name: "Kiran", Phone: "+911111111111", ServiceDate: "2024-03-01", ServiceType: model.ServiceTypeOther, CustomServiceType: "Borewell"},
		model.CustomerRecord{ID: "7", Name: "Legacy", Phone: "+912222222222", ServiceDate: "2024-03-02", ServiceType: model.ServiceTypeOther},
	)

	tests := []struct {
		name   string
		filter Filter
		want   []string
	}{
		{name: "empty", filter: Filter{}, want: []string{"1", "2", "3", "4", "5", "6", "7"}},
		{name: "name case insensitive", filter: Filter{Search: "PRIYA"}, want: []string{"2"}},
		{name: "phone digits", filter: Filter{Search: "76543 21098"}, want: []string{"3"}},
		{name: "formatted phone", filter: Filter{Search: "+91 (765) 432-1098"}, want: []string{"3"}},
		{name: "name with digit", filter: Filter{Search: "Priya 9"}, want: []string{}},
		{name: "address-like text", filter: Filter{Search: "Flat 5"}, want: []string{}},
		{name: "service type", filter: Filter{ServiceType: model.ServiceTypeSump}, want: []string{"2", "5"}},
		{name: "other requires label", filter: Filter{ServiceType: model.ServiceTypeOther}, want: []string{"6"}},
		{name: "inclusive range", filter: Filter{DateFrom: date("2024-01-20"), DateTo: date("2024-02-12")}, want: []string{"2", "3", "4"}},
		{name: "from only", filter: Filter{DateFrom: date("2024-02-18")}, want: []string{"5", "6", "7"}},
		{name: "combined", filter: Filter{Search: "a", ServiceType: model.ServiceTypeBoth, DateTo: date("2024-01-31")}, want: []string{"1"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got []model.CustomerRecord
			for _, c := range customers {
				if tt.filter.IsZero() || tt.filter.Match(c, time.UTC) {
					got = append(got, c)
				}
			}
			assert.Equal(t, tt.want, ids(got))
		})
	}
}
