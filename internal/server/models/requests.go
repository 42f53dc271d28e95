package models

import "encoding/json"

// SignupRequest is the body of POST /signup. Preference bounds and the
// leader flag are raw so that wrong JSON types surface as validation
// failures rather than decode errors.
type SignupRequest struct {
	FirstName     string          `json:"first_name"`
	LastName      string          `json:"last_name"`
	MiddleInitial string          `json:"middle_initial"`
	Email         string          `json:"email"`
	IsLeader      json.RawMessage `json:"is_leader"`
	MinPace       json.RawMessage `json:"min_pace"`
	MaxPace       json.RawMessage `json:"max_pace"`
	MinDistPref   json.RawMessage `json:"min_dist_pref"`
	MaxDistPref   json.RawMessage `json:"max_dist_pref"`
	Password      string          `json:"password"`
}

// ProfilePatch is the body of PUT /api/edit-profile. Every field is
// optional; presence is tracked per field.
type ProfilePatch struct {
	FirstName     Optional[string]          `json:"first_name"`
	LastName      Optional[string]          `json:"last_name"`
	MiddleInitial Optional[string]          `json:"middle_initial"`
	Email         Optional[string]          `json:"email"`
	MinPace       Optional[json.RawMessage] `json:"min_pace"`
	MaxPace       Optional[json.RawMessage] `json:"max_pace"`
	MinDistPref   Optional[json.RawMessage] `json:"min_dist_pref"`
	MaxDistPref   Optional[json.RawMessage] `json:"max_dist_pref"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type EmailCheckRequest struct {
	Email string `json:"email"`
}

type ChangePasswordRequest struct {
	OldPassword string `json:"old_password"`
	NewPassword string `json:"new_password"`
}
