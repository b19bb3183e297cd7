package orchestrators

import (
	"arena/internal/domain/member"
	"arena/internal/domain/notification"

	"github.com/google/uuid"
)

// Notifier hands a message to the fire-and-forget dispatcher. Notify never
// blocks and never reports delivery failures to the caller.
type Notifier interface {
	Notify(msg notification.Message)
}

// notifyMember queues a message addressed to m. A nil notifier is a no-op.
func notifyMember(n Notifier, m member.Member, msg notification.Message) {
	if n == nil {
		return
	}
	msg.MemberID = m.ID
	msg.MemberName = m.Name
	msg.Phone = m.Phone
	msg.Email = m.Email
	n.Notify(msg)
}

func idGenerator(gen func() string) func() string {
	if gen != nil {
		return gen
	}
	return func() string { return uuid.New().String() }
}
