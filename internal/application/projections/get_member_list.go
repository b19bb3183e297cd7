package projections

import (
	"context"
	"errors"

	memberstore "arena/internal/adapters/storage/member"
	"arena/internal/domain/apperr"
	domainMember "arena/internal/domain/member"
)

// Member list paging bounds.
const (
	DefaultMemberListLimit = 100
	MaxMemberListLimit     = 500
)

// GetMemberListQuery carries input for the member list projection.
type GetMemberListQuery struct {
	Skip  int
	Limit int // callers default an absent limit to DefaultMemberListLimit
	Brief bool
}

// GetMemberListDeps holds dependencies for the member projections.
type GetMemberListDeps struct {
	MemberStore MemberStore
}

// QueryGetMemberList returns members newest first.
// POST: Skip is floored at 0 and Limit clamped to [1, MaxMemberListLimit]
func QueryGetMemberList(ctx context.Context, query GetMemberListQuery, deps GetMemberListDeps) ([]domainMember.Member, error) {
	return deps.MemberStore.List(ctx, memberstore.ListFilter{
		Limit:  clamp(query.Limit, 1, MaxMemberListLimit),
		Offset: max(query.Skip, 0),
		Brief:  query.Brief,
	})
}

// QueryGetMember returns one member with attachments.
func QueryGetMember(ctx context.Context, memberID string, deps GetMemberListDeps) (domainMember.Member, error) {
	return getMember(ctx, deps.MemberStore, memberID)
}

// QueryGetMemberByPhone looks a member up by phone, trimmed first and then as given.
// PRE: phone is not blank
// POST: Returns InvalidInput for a blank phone, NotFound when neither lookup matches
func QueryGetMemberByPhone(ctx context.Context, phone string, deps GetMemberListDeps) (domainMember.Member, error) {
	normalized := domainMember.NormalizePhone(phone)
	if normalized == "" {
		return domainMember.Member{}, apperr.InvalidInput("Phone required")
	}
	m, err := deps.MemberStore.GetByPhone(ctx, normalized)
	if errors.Is(err, domainMember.ErrNotFound) && normalized != phone {
		m, err = deps.MemberStore.GetByPhone(ctx, phone)
	}
	if errors.Is(err, domainMember.ErrNotFound) {
		return domainMember.Member{}, apperr.NotFound("Member not found")
	}
	return m, err
}

func getMember(ctx context.Context, store MemberStore, id string) (domainMember.Member, error) {
	m, err := store.GetByID(ctx, id)
	if errors.Is(err, domainMember.ErrNotFound) {
		return domainMember.Member{}, apperr.NotFound("Member not found")
	}
	return m, err
}

func clamp(v, lo, hi int) int {
	return min(max(v, lo), hi)
}
