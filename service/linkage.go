package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/kevinaaaquil/novels/apperr"
	"github.com/kevinaaaquil/novels/models"
	"github.com/kevinaaaquil/novels/store"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Linkage maintains the weak references from users to novels: the novels a
// user created and the novels a user has read.
type Linkage struct {
	users  UserStore
	novels NovelStore
}

func NewLinkage(users UserStore, novels NovelStore) *Linkage {
	return &Linkage{users: users, novels: novels}
}

// Attach appends novelID to the user's novels. The append is a single atomic
// push in the store. A missing user yields a NotFound AppError.
func (l *Linkage) Attach(ctx context.Context, userID, novelID primitive.ObjectID) error {
	err := l.users.PushNovelRef(ctx, userID, models.NovelRef{ID: novelID.Hex()})
	return pushError("attach novel", err)
}

// RecordView appends novelID to the user's reading history.
func (l *Linkage) RecordView(ctx context.Context, userID, novelID primitive.ObjectID) error {
	err := l.users.PushHistoryRef(ctx, userID, models.NovelRef{ID: novelID.Hex()})
	return pushError("record view", err)
}

func pushError(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, store.ErrNotFound) {
		return apperr.NotFound("User")
	}
	return apperr.Internal(fmt.Errorf("%s: %w", op, err))
}

// Resolve returns the novel each ref points to, in ref order; a repeated ref
// yields the novel again. Refs whose novel no longer exists, or whose id is
// malformed, are skipped. The store is queried once per distinct id.
func (l *Linkage) Resolve(ctx context.Context, refs []models.NovelRef) ([]models.Novel, error) {
	ids := make([]primitive.ObjectID, 0, len(refs))
	seen := make(map[primitive.ObjectID]bool, len(refs))
	for _, ref := range refs {
		id, err := primitive.ObjectIDFromHex(ref.ID)
		if err != nil || seen[id] {
			continue
		}
		seen[id] = true
		ids = append(ids, id)
	}

	out := make([]models.Novel, 0, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	found, err := l.novels.NovelsByIDs(ctx, ids)
	if err != nil {
		return nil, apperr.Internal(fmt.Errorf("resolve novels: %w", err))
	}
	byID := make(map[primitive.ObjectID]models.Novel, len(found))
	for _, n := range found {
		byID[n.ID] = n
	}
	for _, ref := range refs {
		id, err := primitive.ObjectIDFromHex(ref.ID)
		if err != nil {
			continue
		}
		if n, ok := byID[id]; ok {
			out = append(out, n)
		}
	}
	return out, nil
}

// OwnedNovels resolves the novels the user created.
func (l *Linkage) OwnedNovels(ctx context.Context, userID primitive.ObjectID) ([]models.Novel, error) {
	user, err := l.user(ctx, userID)
	if err != nil {
		return nil, err
	}
	return l.Resolve(ctx, user.Novels)
}

// History resolves the novels the user has viewed, oldest first.
func (l *Linkage) History(ctx context.Context, userID primitive.ObjectID) ([]models.Novel, error) {
	user, err := l.user(ctx, userID)
	if err != nil {
		return nil, err
	}
	return l.Resolve(ctx, user.History)
}

func (l *Linkage) user(ctx context.Context, userID primitive.ObjectID) (*models.User, error) {
	user, err := l.users.UserByID(ctx, userID)
	if err != nil {
		return nil, apperr.Internal(fmt.Errorf("load user: %w", err))
	}
	if user == nil {
		return nil, apperr.NotFound("User")
	}
	return user, nil
}
