package models

import (
	"mobileforms-service/internal/pkg/dto/responses"
	"time"
)

// FormEntryError is the error record kept for a form document held in the error area.
// Version is bumped on every write and checked on update/delete.
type FormEntryError struct {
	ID            string     `bson:"_id"`
	FormName      string     `bson:"form_name"`
	Error         string     `bson:"error"`
	ErrorDetails  string     `bson:"error_details,omitempty"`
	Comment       *string    `bson:"comment"`
	CommentedBy   string     `bson:"commented_by,omitempty"`
	DateCommented *time.Time `bson:"date_commented,omitempty"`
	DateCreated   time.Time  `bson:"date_created"`
	Version       int64      `bson:"version"`
}

func (e FormEntryError) ConvertIntoResponse() responses.FormError {
	return responses.FormError{
		ID:            e.ID,
		FormName:      e.FormName,
		Error:         e.Error,
		ErrorDetails:  e.ErrorDetails,
		Comment:       e.Comment,
		CommentedBy:   e.CommentedBy,
		DateCommented: e.DateCommented,
		DateCreated:   e.DateCreated,
	}
}
