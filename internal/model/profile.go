package model

// Profile is a user's public identity. ID is the identity provider's user id.
type Profile struct {
	ID       string `json:"id" db:"id"`
	Username string `json:"username" db:"username"`
	ImageURL string `json:"image_url" db:"image_url"`
	Rating   int    `json:"rating" db:"rating"`
	Base
}

// ProfileSummary is the slice of a profile shown in reaction lists.
type ProfileSummary struct {
	ID       string `json:"id" db:"id"`
	Username string `json:"username" db:"username"`
	ImageURL string `json:"image_url" db:"image_url"`
}

// ProfilePage is a profile together with its notes.
type ProfilePage struct {
	Profile Profile `json:"profile"`
	Notes   []Note  `json:"notes"`
}

// UpdateProfile holds the editable fields of a profile. Nil leaves the
// field unchanged.
type UpdateProfile struct {
	Username *string
	ImageURL *string
}
