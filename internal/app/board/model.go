package board

import (
	"strings"
	"time"

	"gorm.io/datatypes"
)

// OtherMember is an additional named position beyond the three fixed officer
// roles, with a free-form function label.
type OtherMember struct {
	Function string `json:"function"`
	UserID   int64  `json:"user_id"`
}

type Board struct {
	ID           uint64                           `json:"id" gorm:"primaryKey"`
	BodyID       int64                            `json:"body_id" gorm:"not null;index"`
	ElectedDate  Date                             `json:"elected_date" gorm:"not null"`
	StartDate    Date                             `json:"start_date" gorm:"not null;index"`
	EndDate      *Date                            `json:"end_date,omitempty"`
	President    int64                            `json:"president" gorm:"not null"`
	Secretary    int64                            `json:"secretary" gorm:"not null"`
	Treasurer    int64                            `json:"treasurer" gorm:"not null"`
	OtherMembers datatypes.JSONSlice[OtherMember] `json:"other_members,omitempty"`
	ImageID      *int64                           `json:"image_id,omitempty"`
	Message      *string                          `json:"message,omitempty" gorm:"type:text"`
	CreatedAt    time.Time                        `json:"created_at"`
	UpdatedAt    time.Time                        `json:"updated_at"`
}

// ValidationErrors maps field names to human-readable reasons.
type ValidationErrors map[string]string

func (v ValidationErrors) Error() string {
	parts := make([]string, 0, len(v))
	for field, reason := range v {
		parts = append(parts, field+": "+reason)
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// Validate enforces the record-level invariants. today is passed in so the
// submission time is evaluated once per request.
func (b *Board) Validate(today Date) ValidationErrors {
	errs := ValidationErrors{}

	if b.BodyID == 0 {
		errs["body_id"] = "Body ID is required."
	}
	if b.ElectedDate.IsZero() {
		errs["elected_date"] = "Elected date is required."
	} else if b.ElectedDate.After(today.Time) {
		errs["elected_date"] = "Elected date cannot be in the future."
	}
	if b.StartDate.IsZero() {
		errs["start_date"] = "Start date is required."
	}
	if b.EndDate != nil && b.EndDate.Before(today.Time) {
		errs["end_date"] = "End date cannot be in the past."
	}
	if b.President == 0 {
		errs["president"] = "President is required."
	}
	if b.Secretary == 0 {
		errs["secretary"] = "Secretary is required."
	}
	if b.Treasurer == 0 {
		errs["treasurer"] = "Treasurer is required."
	}
	for _, member := range b.OtherMembers {
		if member.UserID == 0 || member.Function == "" {
			errs["other_members"] = "Each member needs a function and a user ID."
			break
		}
	}

	if len(errs) == 0 {
		return nil
	}
	return errs
}

// BoardInput is the mutable field set accepted on create and update.
// Pointers distinguish omitted fields so updates can merge partially.
type BoardInput struct {
	BodyID       *int64        `json:"body_id"`
	ElectedDate  *Date         `json:"elected_date"`
	StartDate    *Date         `json:"start_date"`
	EndDate      *Date         `json:"end_date"`
	President    *int64        `json:"president"`
	Secretary    *int64        `json:"secretary"`
	Treasurer    *int64        `json:"treasurer"`
	OtherMembers []OtherMember `json:"other_members"`
	ImageID      *int64        `json:"image_id"`
	Message      *string       `json:"message"`
}

// Apply merges the provided fields onto the record.
func (in *BoardInput) Apply(b *Board) {
	if in.BodyID != nil {
		b.BodyID = *in.BodyID
	}
	if in.ElectedDate != nil {
		b.ElectedDate = *in.ElectedDate
	}
	if in.StartDate != nil {
		b.StartDate = *in.StartDate
	}
	if in.EndDate != nil {
		b.EndDate = in.EndDate
	}
	if in.President != nil {
		b.President = *in.President
	}
	if in.Secretary != nil {
		b.Secretary = *in.Secretary
	}
	if in.Treasurer != nil {
		b.Treasurer = *in.Treasurer
	}
	if in.OtherMembers != nil {
		b.OtherMembers = datatypes.NewJSONSlice(in.OtherMembers)
	}
	if in.ImageID != nil {
		b.ImageID = in.ImageID
	}
	if in.Message != nil {
		b.Message = in.Message
	}
}

// Position is a resolved office holder in the creation response and the
// notification mail.
type Position struct {
	Function string `json:"function"`
	Name     string `json:"name"`
}

// CreatedBoard is the creation response payload: the persisted record plus
// the resolved body name and office holders.
type CreatedBoard struct {
	*Board
	BodyName  string     `json:"body_name"`
	Positions []Position `json:"positions"`
}
