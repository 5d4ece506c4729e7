package services

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"sort"

	"github.com/Dias221467/Beer_Rating/internal/metrics"
	"github.com/Dias221467/Beer_Rating/internal/models"
	"github.com/Dias221467/Beer_Rating/internal/repository"
	"github.com/Dias221467/Beer_Rating/internal/store"
	"github.com/sirupsen/logrus"
)

// FriendService manages the friend request and friendship lifecycle.
//
// For any pair of users the state moves from no relation to a pending
// request, then to friends on accept or back to no relation on reject;
// removing a friend returns the pair to no relation. A request record only
// exists while pending: accepting deletes it in the same atomic update that
// writes both friendship edges.
type FriendService struct {
	friendRepo *repository.FriendRepository
	userRepo   *repository.UserRepository
}

// NewFriendService creates a new FriendService.
func NewFriendService(friendRepo *repository.FriendRepository, userRepo *repository.UserRepository) *FriendService {
	return &FriendService{
		friendRepo: friendRepo,
		userRepo:   userRepo,
	}
}

func observe(operation string, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	metrics.FriendTransitions.WithLabelValues(operation, result).Inc()
}

// signedIn reports whether userID can act as the current user. An id that
// is not a valid path segment is treated like no id at all.
func signedIn(userID string) bool {
	return userID != "" && store.ValidateKey(userID) == nil
}

// SendFriendRequest asks receiverID to become currentUserID's friend.
//
// A pending request already sent to the same receiver yields
// ErrDuplicateRequest. When receiverID already has a pending request to the
// caller, that request is accepted instead and returned with status
// accepted.
func (s *FriendService) SendFriendRequest(ctx context.Context, receiverID, currentUserID string) (req *models.FriendRequest, err error) {
	defer func() { observe("send", err) }()

	if !signedIn(currentUserID) {
		return nil, ErrNotAuthenticated
	}
	if err := store.ValidateKey(receiverID); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidUser, err)
	}
	if receiverID == currentUserID {
		return nil, ErrSelfRequest
	}

	log := logrus.WithFields(logrus.Fields{
		"senderID":   currentUserID,
		"receiverID": receiverID,
	})

	friends, err := s.friendRepo.AreFriends(ctx, currentUserID, receiverID)
	if err != nil {
		log.WithError(err).Error("Failed to check friendship")
		return nil, fmt.Errorf("%w: %v", ErrSendFailed, err)
	}
	if friends {
		return nil, ErrAlreadyFriends
	}

	requests, err := s.friendRepo.GetAllRequests(ctx)
	if err != nil {
		log.WithError(err).Error("Failed to read friend requests")
		return nil, fmt.Errorf("%w: %v", ErrSendFailed, err)
	}

	var reverse *models.FriendRequest
	for i := range requests {
		r := &requests[i]
		if !r.IsPending() {
			continue
		}
		if r.Between(currentUserID, receiverID) {
			log.Info("Friend request already pending")
			return nil, ErrDuplicateRequest
		}
		if r.Between(receiverID, currentUserID) && reverse == nil {
			reverse = r
		}
	}

	if reverse != nil {
		if err := s.friendRepo.AcceptRequest(ctx, reverse.ID, receiverID, currentUserID); err != nil {
			log.WithError(err).Error("Failed to accept reverse friend request")
			return nil, fmt.Errorf("%w: %v", ErrSendFailed, err)
		}
		reverse.Status = models.StatusAccepted
		log.WithField("requestID", reverse.ID).Info("Reverse friend request accepted")
		return reverse, nil
	}

	created, err := s.friendRepo.CreateRequest(ctx, &models.FriendRequest{
		SenderID:   currentUserID,
		ReceiverID: receiverID,
		Status:     models.StatusPending,
	})
	if err != nil {
		log.WithError(err).Error("Failed to create friend request")
		return nil, fmt.Errorf("%w: %v", ErrSendFailed, err)
	}
	log.WithField("requestID", created.ID).Info("Friend request sent")
	return created, nil
}

// AcceptRequest turns the pending request from senderID to currentUserID
// into a friendship. The request removal and both edges land together or
// not at all.
func (s *FriendService) AcceptRequest(ctx context.Context, requestID, senderID, currentUserID string) (err error) {
	defer func() { observe("accept", err) }()

	if !signedIn(currentUserID) {
		return ErrNotAuthenticated
	}
	if store.ValidateKey(requestID) != nil || store.ValidateKey(senderID) != nil {
		return ErrRequestNotFound
	}

	log := logrus.WithFields(logrus.Fields{
		"requestID":  requestID,
		"senderID":   senderID,
		"receiverID": currentUserID,
	})

	req, err := s.friendRepo.GetRequestByID(ctx, requestID)
	if errors.Is(err, repository.ErrNotFound) {
		log.Warn("Friend request to accept not found")
		return ErrRequestNotFound
	}
	if err != nil {
		log.WithError(err).Error("Failed to read friend request")
		return fmt.Errorf("%w: %v", ErrUpdateFailed, err)
	}
	if !req.IsPending() {
		return ErrRequestNotFound
	}
	if !req.Between(senderID, currentUserID) {
		log.Warn("Friend request does not match accepting users")
		return ErrRequestMismatch
	}

	if err := s.friendRepo.AcceptRequest(ctx, requestID, senderID, currentUserID); err != nil {
		log.WithError(err).Error("Failed to accept friend request")
		return fmt.Errorf("%w: %v", ErrUpdateFailed, err)
	}
	log.Info("Friend request accepted")
	return nil
}

// RejectRequest deletes a request. Deleting one that is already gone
// succeeds, and so does an id that cannot name a request.
func (s *FriendService) RejectRequest(ctx context.Context, requestID string) (err error) {
	defer func() { observe("reject", err) }()

	if store.ValidateKey(requestID) != nil {
		logrus.WithField("requestID", requestID).Debug("Ignoring reject of invalid request id")
		return nil
	}
	if err := s.friendRepo.DeleteRequest(ctx, requestID); err != nil {
		logrus.WithFields(logrus.Fields{
			"requestID": requestID,
			"error":     err,
		}).Error("Failed to reject friend request")
		return fmt.Errorf("%w: %v", ErrDeleteFailed, err)
	}
	return nil
}

// DeclineRequest rejects a request on behalf of currentUserID, who must be
// its receiver (reject) or its sender (cancel).
func (s *FriendService) DeclineRequest(ctx context.Context, requestID, currentUserID string) error {
	if !signedIn(currentUserID) {
		return ErrNotAuthenticated
	}
	if err := store.ValidateKey(requestID); err != nil {
		return nil
	}

	req, err := s.friendRepo.GetRequestByID(ctx, requestID)
	if errors.Is(err, repository.ErrNotFound) {
		return s.RejectRequest(ctx, requestID)
	}
	if err != nil {
		return fmt.Errorf("%w: %v", ErrDeleteFailed, err)
	}
	if req.ReceiverID != currentUserID && req.SenderID != currentUserID {
		return ErrRequestMismatch
	}
	return s.RejectRequest(ctx, requestID)
}

// RemoveFriend deletes the friendship between currentUserID and friendID
// from both sides at once. Without a current user it does nothing.
func (s *FriendService) RemoveFriend(ctx context.Context, friendID, currentUserID string) (err error) {
	if currentUserID == "" {
		logrus.Debug("RemoveFriend called without a current user")
		return nil
	}
	defer func() { observe("remove", err) }()

	if store.ValidateKey(currentUserID) != nil {
		return ErrNotAuthenticated
	}
	if err := store.ValidateKey(friendID); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidUser, err)
	}
	if err := s.friendRepo.RemoveFriendship(ctx, currentUserID, friendID); err != nil {
		logrus.WithFields(logrus.Fields{
			"userID":   currentUserID,
			"friendID": friendID,
			"error":    err,
		}).Error("Failed to remove friend")
		return fmt.Errorf("%w: %v", ErrRemoveFailed, err)
	}
	logrus.WithFields(logrus.Fields{
		"userID":   currentUserID,
		"friendID": friendID,
	}).Info("Friend removed")
	return nil
}

// FetchUsername returns the username of userID, or models.UnknownUsername
// when it cannot be read. It never fails.
func (s *FriendService) FetchUsername(ctx context.Context, userID string) string {
	return s.fetchField(ctx, userID, "username", models.UnknownUsername)
}

// FetchAvatarColor returns the avatar color of userID, or the default color.
func (s *FriendService) FetchAvatarColor(ctx context.Context, userID string) string {
	return s.fetchField(ctx, userID, "avatarColor", models.DefaultAvatarColor)
}

func (s *FriendService) fetchField(ctx context.Context, userID, field, fallback string) string {
	if store.ValidateKey(userID) != nil {
		return fallback
	}
	value, err := s.userRepo.GetField(ctx, userID, field)
	if err != nil {
		logrus.WithFields(logrus.Fields{
			"userID": userID,
			"field":  field,
			"error":  err,
		}).Warn("Failed to read user field, using default")
		return fallback
	}
	if value == "" {
		return fallback
	}
	return value
}

func (s *FriendService) publicUser(ctx context.Context, userID string) models.PublicUser {
	return models.PublicUser{
		ID:          userID,
		Username:    s.FetchUsername(ctx, userID),
		AvatarColor: s.FetchAvatarColor(ctx, userID),
	}
}

// incoming keeps the pending requests addressed to userID.
func incoming(requests []models.FriendRequest, userID string) []models.FriendRequest {
	var out []models.FriendRequest
	for _, r := range requests {
		if r.ReceiverID == userID && r.IsPending() {
			out = append(out, r)
		}
	}
	return out
}

func (s *FriendService) enrich(ctx context.Context, requests []models.FriendRequest) []models.PendingRequest {
	out := make([]models.PendingRequest, 0, len(requests))
	for _, r := range requests {
		sender := s.publicUser(ctx, r.SenderID)
		out = append(out, models.PendingRequest{
			ID:                r.ID,
			SenderID:          r.SenderID,
			SenderUsername:    sender.Username,
			SenderAvatarColor: sender.AvatarColor,
		})
	}
	return out
}

// ListPendingRequests returns the pending requests addressed to
// currentUserID with sender details. It filters the whole request
// collection.
func (s *FriendService) ListPendingRequests(ctx context.Context, currentUserID string) ([]models.PendingRequest, error) {
	if !signedIn(currentUserID) {
		return nil, ErrNotAuthenticated
	}
	requests, err := s.friendRepo.GetAllRequests(ctx)
	if err != nil {
		logrus.WithError(err).Error("Failed to read friend requests")
		return nil, fmt.Errorf("%w: %v", ErrReadFailed, err)
	}
	return s.enrich(ctx, incoming(requests, currentUserID)), nil
}

// PendingSubscription streams the pending requests of one user. It must be
// closed by the consumer.
type PendingSubscription struct {
	sub     *store.Subscription
	updates chan []models.PendingRequest
	done    chan struct{}
}

// Updates delivers the full pending list after every change to it. Only
// the latest list is kept for a slow reader. The channel is closed when
// the subscription ends.
func (p *PendingSubscription) Updates() <-chan []models.PendingRequest { return p.updates }

// Close releases the subscription. It is safe to call more than once.
func (p *PendingSubscription) Close() {
	p.sub.Close()
	<-p.done
}

// SubscribePendingRequests opens a standing subscription to the pending
// requests addressed to currentUserID. The first update is the current list.
func (s *FriendService) SubscribePendingRequests(ctx context.Context, currentUserID string) (*PendingSubscription, error) {
	if !signedIn(currentUserID) {
		return nil, ErrNotAuthenticated
	}
	sub, err := s.friendRepo.SubscribeRequests(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrReadFailed, err)
	}

	p := &PendingSubscription{
		sub:     sub,
		updates: make(chan []models.PendingRequest, 1),
		done:    make(chan struct{}),
	}
	metrics.PendingSubscriptions.Inc()
	go s.streamPending(ctx, p, currentUserID)
	return p, nil
}

func (s *FriendService) streamPending(ctx context.Context, p *PendingSubscription, userID string) {
	defer metrics.PendingSubscriptions.Dec()
	defer close(p.done)
	defer close(p.updates)

	var last []models.FriendRequest
	first := true
	for snap := range p.sub.Updates() {
		requests, _ := repository.DecodeRequests(snap)
		mine := incoming(requests, userID)
		if !first && reflect.DeepEqual(mine, last) {
			continue
		}
		first, last = false, mine

		list := s.enrich(ctx, mine)
		select {
		case p.updates <- list:
			continue
		default:
		}
		select {
		case <-p.updates:
		default:
		}
		p.updates <- list
	}
}

// GetFriends lists the friends of userID with display details.
func (s *FriendService) GetFriends(ctx context.Context, userID string) ([]models.PublicUser, error) {
	if !signedIn(userID) {
		return nil, ErrNotAuthenticated
	}
	ids, err := s.friendRepo.GetFriendIDs(ctx, userID)
	if err != nil {
		logrus.WithError(err).Error("Failed to read friends")
		return nil, fmt.Errorf("%w: %v", ErrReadFailed, err)
	}

	friends := make([]models.PublicUser, 0, len(ids))
	for _, id := range ids {
		friends = append(friends, s.publicUser(ctx, id))
	}
	return friends, nil
}

// intersect returns the ids present in both lists, sorted.
func intersect(a, b []string) []string {
	set := make(map[string]bool, len(a))
	for _, id := range a {
		set[id] = true
	}
	var out []string
	for _, id := range b {
		if set[id] {
			out = append(out, id)
			delete(set, id)
		}
	}
	sort.Strings(out)
	return out
}

func (s *FriendService) mutualIDs(ctx context.Context, userID, otherID string) ([]string, error) {
	if !signedIn(userID) {
		return nil, ErrNotAuthenticated
	}
	if err := store.ValidateKey(otherID); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidUser, err)
	}
	mine, err := s.friendRepo.GetFriendIDs(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrReadFailed, err)
	}
	theirs, err := s.friendRepo.GetFriendIDs(ctx, otherID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrReadFailed, err)
	}
	return intersect(mine, theirs), nil
}

// MutualFriendsCount returns how many friends userID and otherID share.
func (s *FriendService) MutualFriendsCount(ctx context.Context, userID, otherID string) (int, error) {
	ids, err := s.mutualIDs(ctx, userID, otherID)
	if err != nil {
		return 0, err
	}
	return len(ids), nil
}

// MutualFriends lists the friends userID and otherID share.
func (s *FriendService) MutualFriends(ctx context.Context, userID, otherID string) (*models.MutualFriends, error) {
	ids, err := s.mutualIDs(ctx, userID, otherID)
	if err != nil {
		return nil, err
	}
	out := &models.MutualFriends{Count: len(ids), Friends: make([]models.PublicUser, 0, len(ids))}
	for _, id := range ids {
		out.Friends = append(out.Friends, s.publicUser(ctx, id))
	}
	return out, nil
}

// relations derives how currentUserID relates to everyone it has an edge or
// a pending request with. Users missing from the map have no relation.
func relations(currentUserID string, friendIDs []string, requests []models.FriendRequest) map[string]models.RelationStatus {
	out := make(map[string]models.RelationStatus)
	for _, r := range requests {
		if !r.IsPending() {
			continue
		}
		switch currentUserID {
		case r.SenderID:
			out[r.ReceiverID] = models.RelationPendingOutgoing
		case r.ReceiverID:
			if _, ok := out[r.SenderID]; !ok {
				out[r.SenderID] = models.RelationPendingIncoming
			}
		}
	}
	for _, id := range friendIDs {
		out[id] = models.RelationFriends
	}
	out[currentUserID] = models.RelationSelf
	return out
}

// Relations returns the relation of currentUserID to every user it is
// connected to.
func (s *FriendService) Relations(ctx context.Context, currentUserID string) (map[string]models.RelationStatus, error) {
	if !signedIn(currentUserID) {
		return nil, ErrNotAuthenticated
	}
	friendIDs, err := s.friendRepo.GetFriendIDs(ctx, currentUserID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrReadFailed, err)
	}
	requests, err := s.friendRepo.GetAllRequests(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrReadFailed, err)
	}
	return relations(currentUserID, friendIDs, requests), nil
}

// RelationStatus returns how currentUserID relates to otherID.
func (s *FriendService) RelationStatus(ctx context.Context, currentUserID, otherID string) (models.RelationStatus, error) {
	rel, err := s.Relations(ctx, currentUserID)
	if err != nil {
		return "", err
	}
	if status, ok := rel[otherID]; ok {
		return status, nil
	}
	return models.RelationNone, nil
}

// SweepStaleRequests deletes request records that are no longer pending or
// are malformed, in one atomic update. It returns how many it removed.
func (s *FriendService) SweepStaleRequests(ctx context.Context) (int, error) {
	requests, malformed, err := s.friendRepo.ScanRequests(ctx)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrReadFailed, err)
	}

	stale := append([]string(nil), malformed...)
	var resolved int
	for _, r := range requests {
		if !r.IsPending() {
			stale = append(stale, r.ID)
			resolved++
		}
	}
	if len(stale) == 0 {
		return 0, nil
	}
	if err := s.friendRepo.DeleteRequests(ctx, stale); err != nil {
		return 0, fmt.Errorf("%w: %v", ErrDeleteFailed, err)
	}

	metrics.SweptRequests.WithLabelValues("resolved").Add(float64(resolved))
	metrics.SweptRequests.WithLabelValues("malformed").Add(float64(len(malformed)))
	logrus.WithFields(logrus.Fields{
		"resolved":  resolved,
		"malformed": len(malformed),
	}).Info("Stale friend requests swept")
	return len(stale), nil
}
