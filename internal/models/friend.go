package models

// Friend request statuses.
const (
	StatusPending  = "pending"
	StatusAccepted = "accepted"
	StatusRejected = "rejected"
)

// FriendRequest is stored under friendRequests/{id}. ID is the record key
// and is not part of the stored value.
type FriendRequest struct {
	ID         string `json:"id,omitempty"`
	SenderID   string `json:"senderId" validate:"required"`
	ReceiverID string `json:"receiverId" validate:"required"`
	Status     string `json:"status" validate:"oneof=pending accepted rejected"`
}

// IsPending reports whether the request still awaits an answer.
func (r FriendRequest) IsPending() bool {
	return r.Status == StatusPending
}

// Between reports whether the request goes from sender to receiver.
func (r FriendRequest) Between(senderID, receiverID string) bool {
	return r.SenderID == senderID && r.ReceiverID == receiverID
}

// PendingRequest is an incoming request enriched for display.
type PendingRequest struct {
	ID                string `json:"id"`
	SenderID          string `json:"senderId"`
	SenderUsername    string `json:"senderUsername"`
	SenderAvatarColor string `json:"senderAvatarColor"`
}

// RelationStatus describes how two users relate in the friendship graph.
type RelationStatus string

const (
	RelationNone            RelationStatus = "none"
	RelationPendingOutgoing RelationStatus = "pending_outgoing"
	RelationPendingIncoming RelationStatus = "pending_incoming"
	RelationFriends         RelationStatus = "friends"
	RelationSelf            RelationStatus = "self"
)

// MutualFriends lists the friends two users share.
type MutualFriends struct {
	Count   int          `json:"count"`
	Friends []PublicUser `json:"friends"`
}
