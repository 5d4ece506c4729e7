package models

// DefaultAvatarColor is shown for users that never picked a color.
const DefaultAvatarColor = "#4CAF50"

// UnknownUsername stands in for users without a readable username.
const UnknownUsername = "Unknown"

// User is the profile stored under users/{id}. Friends holds the outgoing
// friendship edges; reviews live under the same node but are read separately.
type User struct {
	ID          string          `json:"id"`
	Username    string          `json:"username"`
	Email       string          `json:"email,omitempty"`
	Bio         string          `json:"bio,omitempty"`
	AvatarColor string          `json:"avatarColor,omitempty"`
	CreatedAt   string          `json:"createdAt,omitempty"`
	LastActive  string          `json:"lastActive,omitempty"`
	Friends     map[string]bool `json:"friends,omitempty"`
}

// ApplyDefaults fills in display defaults for absent fields.
func (u *User) ApplyDefaults() {
	if u.Username == "" {
		u.Username = UnknownUsername
	}
	if u.AvatarColor == "" {
		u.AvatarColor = DefaultAvatarColor
	}
}

// PublicUser is what other users may see.
type PublicUser struct {
	ID          string `json:"id"`
	Username    string `json:"username"`
	AvatarColor string `json:"avatarColor"`
	Bio         string `json:"bio,omitempty"`
}

// Public strips private fields.
func (u *User) Public() PublicUser {
	return PublicUser{ID: u.ID, Username: u.Username, AvatarColor: u.AvatarColor, Bio: u.Bio}
}

// DirectoryEntry is one row of the add-friend directory.
type DirectoryEntry struct {
	PublicUser
	Relation RelationStatus `json:"relation"`
}

// PublicProfile is another user's profile as seen by the caller.
type PublicProfile struct {
	PublicUser
	LastActive string         `json:"lastActive,omitempty"`
	Relation   RelationStatus `json:"relation"`
	Mutual     MutualFriends  `json:"mutualFriends"`
}

// ProfileUpdate carries the editable profile fields. Nil fields are left
// unchanged.
type ProfileUpdate struct {
	Username    *string `json:"username" validate:"omitempty,min=1,max=40"`
	Bio         *string `json:"bio" validate:"omitempty,max=280"`
	AvatarColor *string `json:"avatarColor" validate:"omitempty,hexcolor"`
}

// Empty reports whether the update changes nothing.
func (p ProfileUpdate) Empty() bool {
	return p.Username == nil && p.Bio == nil && p.AvatarColor == nil
}

// Registration is the sign-up payload.
type Registration struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
	Username string `json:"username" validate:"required,max=40"`
}

// Account holds local sign-in credentials under accounts/{id}.
type Account struct {
	UserID       string `json:"-"`
	Email        string `json:"email"`
	PasswordHash string `json:"passwordHash"`
	Role         string `json:"role,omitempty"`
}
