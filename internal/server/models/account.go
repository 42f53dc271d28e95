package models

import "time"

// Account is a registered runner as stored.
type Account struct {
	ID            string
	FirstName     string
	LastName      string
	MiddleInitial string
	Email         string
	PasswordHash  string
	IsLeader      bool
	IsAdmin       bool
	MinPace       *int64
	MaxPace       *int64
	MinDistPref   *int64
	MaxDistPref   *int64
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// Profile is the public view of an Account: everything except the hash.
type Profile struct {
	ID            string `json:"id"`
	FirstName     string `json:"first_name"`
	LastName      string `json:"last_name"`
	MiddleInitial string `json:"middle_initial"`
	Email         string `json:"email"`
	IsLeader      bool   `json:"is_leader"`
	IsAdmin       bool   `json:"is_admin"`
	MinPace       *int64 `json:"min_pace"`
	MaxPace       *int64 `json:"max_pace"`
	MinDistPref   *int64 `json:"min_dist_pref"`
	MaxDistPref   *int64 `json:"max_dist_pref"`
}

// Profile strips the credential from a.
func (a *Account) Profile() *Profile {
	return &Profile{
		ID:            a.ID,
		FirstName:     a.FirstName,
		LastName:      a.LastName,
		MiddleInitial: a.MiddleInitial,
		Email:         a.Email,
		IsLeader:      a.IsLeader,
		IsAdmin:       a.IsAdmin,
		MinPace:       a.MinPace,
		MaxPace:       a.MaxPace,
		MinDistPref:   a.MinDistPref,
		MaxDistPref:   a.MaxDistPref,
	}
}

// AccountUpdate lists the columns a profile edit writes. Nil means the
// column is left alone; for the preference bounds a non-nil Optional whose
// Value is nil clears the column.
type AccountUpdate struct {
	FirstName     *string
	LastName      *string
	MiddleInitial *string
	Email         *string
	MinPace       *Optional[int64]
	MaxPace       *Optional[int64]
	MinDistPref   *Optional[int64]
	MaxDistPref   *Optional[int64]
}

// Empty reports whether the update touches no column.
func (u *AccountUpdate) Empty() bool {
	return u.FirstName == nil && u.LastName == nil && u.MiddleInitial == nil && u.Email == nil &&
		u.MinPace == nil && u.MaxPace == nil && u.MinDistPref == nil && u.MaxDistPref == nil
}

// Int64 returns a pointer to v.
func Int64(v int64) *int64 { return &v }
