package repository

import (
	"context"
	"fmt"

	"github.com/Dias221467/Beer_Rating/internal/models"
	"github.com/Dias221467/Beer_Rating/internal/store"
	"github.com/sirupsen/logrus"
)

const friendRequestsPath = "friendRequests"

func requestPath(id string) string {
	return store.Join(friendRequestsPath, id)
}

func friendEdgePath(userID, friendID string) string {
	return store.Join(usersPath, userID, "friends", friendID)
}

// FriendRepository stores friend requests and friendship edges.
type FriendRepository struct {
	store *store.Client
}

func NewFriendRepository(s *store.Client) *FriendRepository {
	return &FriendRepository{store: s}
}

// CreateRequest pushes a new request and sets its ID.
func (r *FriendRepository) CreateRequest(ctx context.Context, req *models.FriendRequest) (*models.FriendRequest, error) {
	record := *req
	record.ID = ""

	id, err := r.store.Push(ctx, friendRequestsPath, record)
	if err != nil {
		return nil, fmt.Errorf("failed to create friend request: %w", err)
	}
	req.ID = id
	return req, nil
}

// GetRequestByID returns ErrNotFound when the request does not exist.
func (r *FriendRepository) GetRequestByID(ctx context.Context, id string) (*models.FriendRequest, error) {
	if err := validKeys(id); err != nil {
		return nil, err
	}
	snap, err := r.store.Get(ctx, requestPath(id))
	if err != nil {
		return nil, fmt.Errorf("failed to read friend request: %w", err)
	}
	if !snap.Exists() {
		return nil, fmt.Errorf("friend request %s: %w", id, ErrNotFound)
	}
	req, ok := decodeRequest(snap)
	if !ok {
		return nil, fmt.Errorf("friend request %s is malformed: %w", id, ErrNotFound)
	}
	return req, nil
}

// GetAllRequests reads the whole request collection. Malformed records
// are skipped.
func (r *FriendRepository) GetAllRequests(ctx context.Context) ([]models.FriendRequest, error) {
	requests, _, err := r.ScanRequests(ctx)
	return requests, err
}

// ScanRequests reads the whole request collection and also returns the ids
// of records that are not valid requests.
func (r *FriendRepository) ScanRequests(ctx context.Context) ([]models.FriendRequest, []string, error) {
	snap, err := r.store.Get(ctx, friendRequestsPath)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read friend requests: %w", err)
	}
	requests, malformed := DecodeRequests(snap)
	return requests, malformed, nil
}

// DecodeRequests splits a snapshot of the request collection into valid
// requests and the ids of records that are not.
func DecodeRequests(snap store.Snapshot) ([]models.FriendRequest, []string) {
	var (
		requests  []models.FriendRequest
		malformed []string
	)
	for _, child := range snap.Children() {
		req, ok := decodeRequest(child)
		if !ok {
			malformed = append(malformed, child.Key())
			continue
		}
		requests = append(requests, *req)
	}
	return requests, malformed
}

func decodeRequest(snap store.Snapshot) (*models.FriendRequest, bool) {
	var req models.FriendRequest
	if err := snap.Decode(&req); err != nil {
		logrus.WithFields(logrus.Fields{
			"requestID": snap.Key(),
			"error":     err,
		}).Warn("Skipping undecodable friend request")
		return nil, false
	}
	req.ID = snap.Key()
	if err := req.Validate(); err != nil {
		logrus.WithFields(logrus.Fields{
			"requestID": req.ID,
			"error":     err,
		}).Warn("Skipping invalid friend request")
		return nil, false
	}
	return &req, true
}

// SubscribeRequests watches the request collection.
func (r *FriendRepository) SubscribeRequests(ctx context.Context) (*store.Subscription, error) {
	return r.store.Subscribe(ctx, friendRequestsPath)
}

// DeleteRequest removes a request. Removing an absent request succeeds.
func (r *FriendRepository) DeleteRequest(ctx context.Context, id string) error {
	if err := validKeys(id); err != nil {
		return err
	}
	if err := r.store.Delete(ctx, requestPath(id)); err != nil {
		return fmt.Errorf("failed to delete friend request: %w", err)
	}
	return nil
}

// DeleteRequests removes several requests in one atomic update.
func (r *FriendRepository) DeleteRequests(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	if err := validKeys(ids...); err != nil {
		return err
	}
	updates := make(map[string]any, len(ids))
	for _, id := range ids {
		updates[requestPath(id)] = nil
	}
	if err := r.store.Update(ctx, updates); err != nil {
		return fmt.Errorf("failed to delete friend requests: %w", err)
	}
	return nil
}

// AcceptRequest removes the request and writes both friendship edges in
// one atomic update.
func (r *FriendRepository) AcceptRequest(ctx context.Context, requestID, senderID, receiverID string) error {
	if err := validKeys(requestID, senderID, receiverID); err != nil {
		return err
	}
	err := r.store.Update(ctx, map[string]any{
		requestPath(requestID):               nil,
		friendEdgePath(senderID, receiverID): true,
		friendEdgePath(receiverID, senderID): true,
	})
	if err != nil {
		return fmt.Errorf("failed to accept friend request: %w", err)
	}
	return nil
}

// RemoveFriendship deletes both edges between a and b in one atomic update.
func (r *FriendRepository) RemoveFriendship(ctx context.Context, a, b string) error {
	if err := validKeys(a, b); err != nil {
		return err
	}
	err := r.store.Update(ctx, map[string]any{
		friendEdgePath(a, b): nil,
		friendEdgePath(b, a): nil,
	})
	if err != nil {
		return fmt.Errorf("failed to remove friendship: %w", err)
	}
	return nil
}

// AreFriends reports whether userID has an edge to otherID.
func (r *FriendRepository) AreFriends(ctx context.Context, userID, otherID string) (bool, error) {
	if err := validKeys(userID, otherID); err != nil {
		return false, err
	}
	snap, err := r.store.Get(ctx, friendEdgePath(userID, otherID))
	if err != nil {
		return false, fmt.Errorf("failed to read friendship: %w", err)
	}
	return snap.Exists(), nil
}

// GetFriendIDs returns the ids userID has an edge to.
func (r *FriendRepository) GetFriendIDs(ctx context.Context, userID string) ([]string, error) {
	if err := validKeys(userID); err != nil {
		return nil, err
	}
	snap, err := r.store.Get(ctx, store.Join(usersPath, userID, "friends"))
	if err != nil {
		return nil, fmt.Errorf("failed to read friends: %w", err)
	}
	return snap.Keys(), nil
}
