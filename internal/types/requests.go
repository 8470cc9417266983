package types

import "github.com/go-playground/validator/v10"

// AssignStoryRequest represents the payload of an assign_story action.
type AssignStoryRequest struct {
	Topic        string   `json:"topic" validate:"required,min=1"`
	Angle        string   `json:"angle,omitempty"`
	TargetLength int      `json:"target_length" validate:"omitempty,gt=0,lte=10000"`
	Priority     Priority `json:"priority,omitempty" validate:"omitempty,oneof=low normal high"`
}

// StatusRequest represents the payload of a get_story_status action.
type StatusRequest struct {
	StoryID string `json:"story_id" validate:"required,uuid4"`
}

// Validate validates the AssignStoryRequest using the validator.
func (r *AssignStoryRequest) Validate() error {
	validate := validator.New()
	return validate.Struct(r)
}

// Validate validates the StatusRequest using the validator.
func (r *StatusRequest) Validate() error {
	validate := validator.New()
	return validate.Struct(r)
}
