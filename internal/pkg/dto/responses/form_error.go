package responses

import "time"

type FormError struct {
	ID            string     `json:"id"`
	FormName      string     `json:"form_name"`
	Error         string     `json:"error"`
	ErrorDetails  string     `json:"error_details,omitempty"`
	Comment       *string    `json:"comment"`
	CommentedBy   string     `json:"commented_by,omitempty"`
	DateCommented *time.Time `json:"date_commented,omitempty"`
	DateCreated   time.Time  `json:"date_created"`
}

type FormErrorDetail struct {
	FormError
	FormPath string `json:"form_path"`
	FormData string `json:"form_data"`
}

type ResolveFormError struct {
	ID      string `json:"id"`
	Action  string `json:"action"`
	Message string `json:"message"`
	// FormLocation is where the document sits after the action.
	FormLocation string `json:"form_location,omitempty"`
}
