package orchestrators

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"arena/internal/domain/apperr"
	"arena/internal/domain/member"
)

// MemberEditStore is the member persistence needed for admin edits.
type MemberEditStore interface {
	GetByID(ctx context.Context, id string) (member.Member, error)
	Save(ctx context.Context, m member.Member) error
}

// UpdateMemberInput carries a partial edit. Nil fields are left unchanged.
type UpdateMemberInput struct {
	MemberID        string
	Name            *string
	Phone           *string
	Email           *string
	MembershipType  *string
	Batch           *string
	Status          *string
	WorkoutSchedule *string
	DietChart       *string
}

// UpdateMemberDeps holds dependencies for the member edit orchestrators.
type UpdateMemberDeps struct {
	MemberStore MemberEditStore
}

// ExecuteUpdateMember applies an admin correction to a member.
// PRE: MemberID refers to an existing member
// POST: Only the supplied fields change; an empty edit returns the member as stored
func ExecuteUpdateMember(ctx context.Context, input UpdateMemberInput, deps UpdateMemberDeps) (member.Member, error) {
	m, err := loadMember(ctx, deps.MemberStore, input.MemberID)
	if err != nil {
		return member.Member{}, err
	}

	changed := false
	set := func(dst *string, src *string) {
		if src != nil {
			*dst = *src
			changed = true
		}
	}
	set(&m.Name, input.Name)
	set(&m.Email, input.Email)
	set(&m.MembershipType, input.MembershipType)
	set(&m.Batch, input.Batch)
	set(&m.Status, input.Status)
	set(&m.WorkoutSchedule, input.WorkoutSchedule)
	set(&m.DietChart, input.DietChart)
	if input.Phone != nil {
		m.Phone = member.NormalizePhone(*input.Phone)
		changed = true
	}
	if !changed {
		return m, nil
	}

	if err := m.Validate(); err != nil {
		return member.Member{}, apperr.InvalidInput("%s", err.Error())
	}
	if err := deps.MemberStore.Save(ctx, m); err != nil {
		return member.Member{}, err
	}
	slog.Info("member_event", "event", "member_updated", "member_id", m.ID, "status", m.Status)
	return m, nil
}

// ExecuteSetMemberPhoto sets or clears (photo == nil) the profile photo.
func ExecuteSetMemberPhoto(ctx context.Context, memberID string, photo *string, deps UpdateMemberDeps) (member.Member, error) {
	m, err := loadMember(ctx, deps.MemberStore, memberID)
	if err != nil {
		return member.Member{}, err
	}
	m.Photo = ""
	if photo != nil {
		m.Photo = *photo
	}
	if err := deps.MemberStore.Save(ctx, m); err != nil {
		return member.Member{}, err
	}
	return m, nil
}

// ExecuteSetMemberIDDocument sets or clears (doc == nil) the identity
// document. Clearing the document also clears its type; setting it keeps the
// stored type unless docType is given.
func ExecuteSetMemberIDDocument(ctx context.Context, memberID string, doc, docType *string, deps UpdateMemberDeps) (member.Member, error) {
	m, err := loadMember(ctx, deps.MemberStore, memberID)
	if err != nil {
		return member.Member{}, err
	}
	if doc == nil {
		m.IDDocument = ""
		m.IDDocumentType = ""
	} else {
		m.IDDocument = *doc
		if docType != nil {
			m.IDDocumentType = strings.TrimSpace(*docType)
		}
	}
	if err := deps.MemberStore.Save(ctx, m); err != nil {
		return member.Member{}, err
	}
	return m, nil
}

// MemberGetter resolves a member by id.
type MemberGetter interface {
	GetByID(ctx context.Context, id string) (member.Member, error)
}

func loadMember(ctx context.Context, store MemberGetter, id string) (member.Member, error) {
	m, err := store.GetByID(ctx, id)
	if errors.Is(err, member.ErrNotFound) {
		return member.Member{}, apperr.NotFound("Member not found")
	}
	if err != nil {
		return member.Member{}, err
	}
	return m, nil
}
