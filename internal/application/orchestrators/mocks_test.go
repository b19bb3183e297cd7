package orchestrators

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"arena/internal/adapters/storage/enrollment"
	paymentstore "arena/internal/adapters/storage/payment"
	"arena/internal/domain/attendance"
	"arena/internal/domain/calendar"
	"arena/internal/domain/member"
	"arena/internal/domain/notification"
	"arena/internal/domain/outbox"
	"arena/internal/domain/payment"
)

var ist = time.FixedZone("IST", 5*3600+1800)

// clockAt returns a clock frozen at the given civil-zone wall time.
func clockAt(year int, month time.Month, day, hour, min int) calendar.Clock {
	at := time.Date(year, month, day, hour, min, 0, 0, ist)
	return calendar.NewClock(ist, func() time.Time { return at })
}

func seqIDs(prefix string) func() string {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("%s-%d", prefix, n)
	}
}

// mockMemberStore implements every member interface the orchestrators use.
type mockMemberStore struct {
	members map[string]member.Member
	saveErr error
}

func newMockMemberStore(ms ...member.Member) *mockMemberStore {
	s := &mockMemberStore{members: map[string]member.Member{}}
	for _, m := range ms {
		s.members[m.ID] = m
	}
	return s
}

func (s *mockMemberStore) GetByID(_ context.Context, id string) (member.Member, error) {
	m, ok := s.members[id]
	if !ok {
		return member.Member{}, fmt.Errorf("member %s: %w", id, member.ErrNotFound)
	}
	return m, nil
}

func (s *mockMemberStore) Save(_ context.Context, m member.Member) error {
	if s.saveErr != nil {
		return s.saveErr
	}
	s.members[m.ID] = m
	return nil
}

func (s *mockMemberStore) SetLastAttendance(_ context.Context, id string, d calendar.Date) error {
	m, ok := s.members[id]
	if !ok {
		return member.ErrNotFound
	}
	m.RecordAttendance(d)
	s.members[id] = m
	return nil
}

func (s *mockMemberStore) ListLapsed(_ context.Context, cutoff calendar.Date) ([]member.Member, error) {
	var out []member.Member
	for _, m := range s.members {
		if m.IsActive() && m.IsLapsed(cutoff) {
			out = append(out, m)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *mockMemberStore) MarkInactive(_ context.Context, id string) (bool, error) {
	m := s.members[id]
	if err := m.MarkInactive(); err != nil {
		return false, nil
	}
	s.members[id] = m
	return true, nil
}

// mockAttendanceStore keys records by id and enforces one per member/day.
type mockAttendanceStore struct {
	records map[string]attendance.Attendance
	// lookupMisses makes GetByMemberAndDate report not-found, simulating a
	// concurrent request that passed the lookup.
	lookupMisses bool
}

func newMockAttendanceStore() *mockAttendanceStore {
	return &mockAttendanceStore{records: map[string]attendance.Attendance{}}
}

func (s *mockAttendanceStore) GetByID(_ context.Context, id string) (attendance.Attendance, error) {
	a, ok := s.records[id]
	if !ok {
		return attendance.Attendance{}, attendance.ErrNotFound
	}
	return a, nil
}

func (s *mockAttendanceStore) GetByMemberAndDate(_ context.Context, memberID, date string) (attendance.Attendance, error) {
	if !s.lookupMisses {
		for _, a := range s.records {
			if a.MemberID == memberID && a.ClassDate == date {
				return a, nil
			}
		}
	}
	return attendance.Attendance{}, fmt.Errorf("lookup: %w", attendance.ErrNotFound)
}

func (s *mockAttendanceStore) CountByDateAndBatch(_ context.Context, date, b string) (int, error) {
	n := 0
	for _, a := range s.records {
		if a.ClassDate == date && a.Batch == b {
			n++
		}
	}
	return n, nil
}

func (s *mockAttendanceStore) Insert(_ context.Context, a attendance.Attendance) error {
	for _, r := range s.records {
		if r.MemberID == a.MemberID && r.ClassDate == a.ClassDate {
			return fmt.Errorf("insert: %w", attendance.ErrDuplicateDay)
		}
	}
	s.records[a.ID] = a
	return nil
}

func (s *mockAttendanceStore) CheckOut(_ context.Context, id string, at time.Time) error {
	a, ok := s.records[id]
	if !ok {
		return attendance.ErrNotFound
	}
	if err := a.CheckOut(at); err != nil {
		return err
	}
	s.records[id] = a
	return nil
}

func (s *mockAttendanceStore) Delete(_ context.Context, id string) error {
	if _, ok := s.records[id]; !ok {
		return fmt.Errorf("attendance %s: %w", id, attendance.ErrNotFound)
	}
	delete(s.records, id)
	return nil
}

// mockPaymentStore implements the payment interfaces.
type mockPaymentStore struct {
	payments map[string]payment.Payment
}

func newMockPaymentStore(ps ...payment.Payment) *mockPaymentStore {
	s := &mockPaymentStore{payments: map[string]payment.Payment{}}
	for _, p := range ps {
		s.payments[p.ID] = p
	}
	return s
}

func (s *mockPaymentStore) GetByID(_ context.Context, id string) (payment.Payment, error) {
	p, ok := s.payments[id]
	if !ok {
		return payment.Payment{}, payment.ErrNotFound
	}
	return p, nil
}

func (s *mockPaymentStore) Save(_ context.Context, p payment.Payment) error {
	s.payments[p.ID] = p
	return nil
}

func (s *mockPaymentStore) MarkPaid(_ context.Context, id, memberID string, at time.Time) (payment.Payment, error) {
	p, ok := s.payments[id]
	if !ok || p.MemberID != memberID {
		return payment.Payment{}, payment.ErrNotFound
	}
	if err := p.MarkPaid(at); err != nil {
		return payment.Payment{}, err
	}
	s.payments[id] = p
	return p, nil
}

func (s *mockPaymentStore) SweepOverdue(_ context.Context, today calendar.Date) (int, error) {
	n := 0
	for id, p := range s.payments {
		if p.IsOverdueOn(today) {
			p.Status = payment.StatusOverdue
			s.payments[id] = p
			n++
		}
	}
	return n, nil
}

func (s *mockPaymentStore) OutstandingByMember(_ context.Context) ([]paymentstore.MemberBalance, error) {
	totals := map[string]int{}
	for _, p := range s.payments {
		if p.IsOutstanding() {
			totals[p.MemberID] += p.Amount
		}
	}
	var out []paymentstore.MemberBalance
	for id, amt := range totals {
		out = append(out, paymentstore.MemberBalance{MemberID: id, Amount: amt})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].MemberID < out[j].MemberID })
	return out, nil
}

// mockEnrollmentStore records enrollments or fails every write.
type mockEnrollmentStore struct {
	enrolled []enrollment.Enrollment
	err      error
}

func (s *mockEnrollmentStore) Enroll(_ context.Context, e enrollment.Enrollment) error {
	if s.err != nil {
		return s.err
	}
	s.enrolled = append(s.enrolled, e)
	return nil
}

// recordingNotifier captures queued messages.
type recordingNotifier struct {
	mu       sync.Mutex
	messages []notification.Message
}

func (n *recordingNotifier) Notify(msg notification.Message) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.messages = append(n.messages, msg)
}

func (n *recordingNotifier) types() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]string, len(n.messages))
	for i, m := range n.messages {
		out[i] = m.Type
	}
	return out
}

// mockOutboxStore keeps entries in memory.
type mockOutboxStore struct {
	entries map[string]outbox.Entry
}

func newMockOutboxStore(es ...outbox.Entry) *mockOutboxStore {
	s := &mockOutboxStore{entries: map[string]outbox.Entry{}}
	for _, e := range es {
		s.entries[e.ID] = e
	}
	return s
}

func (s *mockOutboxStore) GetByID(_ context.Context, id string) (outbox.Entry, error) {
	e, ok := s.entries[id]
	if !ok {
		return outbox.Entry{}, fmt.Errorf("outbox %s: %w", id, outbox.ErrNotFound)
	}
	return e, nil
}

func (s *mockOutboxStore) Save(_ context.Context, e outbox.Entry) error {
	s.entries[e.ID] = e
	return nil
}

func (s *mockOutboxStore) ListPending(_ context.Context, offset, limit int) ([]outbox.Entry, error) {
	out := s.list(offset+limit, outbox.StatusPending, outbox.StatusRetrying)
	if offset >= len(out) {
		return nil, nil
	}
	return out[offset:], nil
}

func (s *mockOutboxStore) ListFailed(_ context.Context, limit int) ([]outbox.Entry, error) {
	return s.list(limit, outbox.StatusFailed), nil
}

func (s *mockOutboxStore) list(limit int, statuses ...string) []outbox.Entry {
	var out []outbox.Entry
	for _, e := range s.entries {
		for _, st := range statuses {
			if e.Status == st {
				out = append(out, e)
			}
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	if len(out) > limit {
		out = out[:limit]
	}
	return out
}

// stubExecutor returns err, or "msg-<payload>" on success.
type stubExecutor struct {
	err   error
	calls int
}

func (e *stubExecutor) Execute(_ context.Context, payload string) (string, error) {
	e.calls++
	if e.err != nil {
		return "", e.err
	}
	return "msg-" + payload, nil
}

var errStore = errors.New("store unavailable")
