package member_test

import (
	"testing"
	"time"

	"arena/internal/domain/batch"
	"arena/internal/domain/calendar"
	"arena/internal/domain/member"
)

func validMember() member.Member {
	return member.Member{
		ID:             "123",
		Name:           "Ravi Kumar",
		Phone:          "9876543210",
		Email:          "ravi@example.com",
		MembershipType: member.TypeRegular,
		Batch:          batch.Morning,
		Status:         member.StatusActive,
	}
}

// TestMemberValidation tests validation of Member.
func TestMemberValidation(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(m *member.Member)
		wantErr bool
	}{
		{"valid member", func(m *member.Member) {}, false},
		{"valid PT inactive member", func(m *member.Member) {
			m.MembershipType = member.TypePT
			m.Status = member.StatusInactive
		}, false},
		{"empty name", func(m *member.Member) { m.Name = "  " }, true},
		{"empty phone", func(m *member.Member) { m.Phone = "" }, true},
		{"long phone", func(m *member.Member) { m.Phone = "123456789012345678901" }, true},
		{"invalid email", func(m *member.Member) { m.Email = "invalid-email" }, true},
		{"invalid type", func(m *member.Member) { m.MembershipType = "Gold" }, true},
		{"invalid batch", func(m *member.Member) { m.Batch = "Night" }, true},
		{"invalid status", func(m *member.Member) { m.Status = "archived" }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := validMember()
			tt.mutate(&m)
			err := m.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Member.Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

// TestMemberIsLapsed tests the date-level inactivity comparison.
func TestMemberIsLapsed(t *testing.T) {
	today := calendar.Date{Year: 2025, Month: time.June, Day: 30}
	cutoff := member.InactivityCutoff(today, 90)

	tests := []struct {
		name string
		last *calendar.Date
		want bool
	}{
		{"never attended", nil, false},
		{"91 days ago", ptr(today.AddDays(-91)), true},
		{"exactly 90 days ago", ptr(today.AddDays(-90)), false},
		{"yesterday", ptr(today.AddDays(-1)), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := validMember()
			m.LastAttendance = tt.last
			if got := m.IsLapsed(cutoff); got != tt.want {
				t.Errorf("IsLapsed() = %v, want %v", got, tt.want)
			}
		})
	}
}

// TestMemberRecordAttendanceKeepsStatus tests that attendance does not reactivate.
func TestMemberRecordAttendanceKeepsStatus(t *testing.T) {
	m := validMember()
	m.Status = member.StatusInactive
	d := calendar.Date{Year: 2025, Month: time.July, Day: 1}
	m.RecordAttendance(d)
	if m.Status != member.StatusInactive {
		t.Errorf("Status = %s, want Inactive", m.Status)
	}
	if m.LastAttendance == nil || *m.LastAttendance != d {
		t.Errorf("LastAttendance = %v, want %v", m.LastAttendance, d)
	}
}

// TestMemberMarkInactive tests the sweep transition.
func TestMemberMarkInactive(t *testing.T) {
	m := validMember()
	if err := m.MarkInactive(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if m.IsActive() {
		t.Error("expected member to be inactive")
	}
	if err := m.MarkInactive(); err != member.ErrAlreadyInactive {
		t.Errorf("second MarkInactive() error = %v, want ErrAlreadyInactive", err)
	}
}

// TestNormalizePhone tests phone trimming.
func TestNormalizePhone(t *testing.T) {
	if got := member.NormalizePhone("  98765 \t"); got != "98765" {
		t.Errorf("NormalizePhone() = %q", got)
	}
}

func ptr(d calendar.Date) *calendar.Date { return &d }
