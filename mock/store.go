// Package mock provides in-memory stand-ins for the record store, the cover
// store and the catalog cache. They follow the Mongo store's semantics closely
// enough to test services and handlers without a database.
package mock

import (
	"bytes"
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/kevinaaaquil/novels/models"
	"github.com/kevinaaaquil/novels/store"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Store holds users, novels and contact messages. Setting Err makes every
// call fail with it.
type Store struct {
	mu       sync.Mutex
	users    map[primitive.ObjectID]models.User
	novels   map[primitive.ObjectID]models.Novel
	contacts map[primitive.ObjectID]models.ContactMessage

	Err error
}

func NewStore() *Store {
	return &Store{
		users:    make(map[primitive.ObjectID]models.User),
		novels:   make(map[primitive.ObjectID]models.Novel),
		contacts: make(map[primitive.ObjectID]models.ContactMessage),
	}
}

func (s *Store) SetErr(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Err = err
}

// Users

func (s *Store) UserByEmail(ctx context.Context, email string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return nil, s.Err
	}
	for _, u := range s.users {
		if u.Email == email {
			return cloneUser(u), nil
		}
	}
	return nil, nil
}

func (s *Store) UserByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return nil, s.Err
	}
	u, ok := s.users[id]
	if !ok {
		return nil, nil
	}
	return cloneUser(u), nil
}

func (s *Store) CreateUser(ctx context.Context, user *models.User) (primitive.ObjectID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return primitive.NilObjectID, s.Err
	}
	for _, u := range s.users {
		if u.Email == user.Email {
			return primitive.NilObjectID, store.ErrDuplicate
		}
	}
	u := *cloneUser(*user)
	u.ID = primitive.NewObjectID()
	s.users[u.ID] = u
	return u.ID, nil
}

func (s *Store) PushNovelRef(ctx context.Context, userID primitive.ObjectID, ref models.NovelRef) error {
	return s.push(userID, func(u *models.User) { u.Novels = append(u.Novels, ref) })
}

func (s *Store) PushHistoryRef(ctx context.Context, userID primitive.ObjectID, ref models.NovelRef) error {
	return s.push(userID, func(u *models.User) { u.History = append(u.History, ref) })
}

func (s *Store) push(userID primitive.ObjectID, apply func(*models.User)) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return s.Err
	}
	u, ok := s.users[userID]
	if !ok {
		return store.ErrNotFound
	}
	apply(&u)
	s.users[userID] = u
	return nil
}

// DeleteUser removes a user, leaving any references to it dangling.
func (s *Store) DeleteUser(id primitive.ObjectID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.users, id)
}

// Novels

func (s *Store) InsertNovel(ctx context.Context, novel *models.Novel) (primitive.ObjectID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return primitive.NilObjectID, s.Err
	}
	n := *novel
	n.ID = primitive.NewObjectID()
	s.novels[n.ID] = n
	return n.ID, nil
}

func (s *Store) NovelByID(ctx context.Context, id primitive.ObjectID) (*models.Novel, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return nil, s.Err
	}
	n, ok := s.novels[id]
	if !ok {
		return nil, nil
	}
	return &n, nil
}

func (s *Store) NovelsByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.Novel, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return nil, s.Err
	}
	var out []models.Novel
	for _, id := range ids {
		if n, ok := s.novels[id]; ok {
			out = append(out, n)
		}
	}
	return out, nil
}

func (s *Store) CountNovels(ctx context.Context, f models.CatalogFilter) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return 0, s.Err
	}
	return int64(len(s.matching(f))), nil
}

func (s *Store) FindNovels(ctx context.Context, f models.CatalogFilter, skip, limit int64) ([]models.Novel, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return nil, s.Err
	}
	all := s.matching(f)
	if skip >= int64(len(all)) {
		return nil, nil
	}
	end := skip + limit
	if end > int64(len(all)) {
		end = int64(len(all))
	}
	return all[skip:end], nil
}

func (s *Store) IncrementViews(ctx context.Context, id primitive.ObjectID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return s.Err
	}
	n, ok := s.novels[id]
	if !ok {
		return store.ErrNotFound
	}
	n.Views++
	s.novels[id] = n
	return nil
}

// DeleteNovel removes a novel, leaving user references to it dangling.
func (s *Store) DeleteNovel(id primitive.ObjectID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.novels, id)
}

// matching returns the novels f selects, newest first with _id breaking ties.
func (s *Store) matching(f models.CatalogFilter) []models.Novel {
	search := strings.ToLower(f.Search)
	var out []models.Novel
	for _, n := range s.novels {
		if search != "" && !strings.Contains(strings.ToLower(n.Title), search) {
			continue
		}
		if f.FiltersGenre() && n.Genre != f.Genre {
			continue
		}
		out = append(out, n)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return bytes.Compare(out[i].ID[:], out[j].ID[:]) > 0
	})
	return out
}

// Contact messages

func (s *Store) InsertContactMessage(ctx context.Context, msg *models.ContactMessage) (primitive.ObjectID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return primitive.NilObjectID, s.Err
	}
	m := *msg
	m.ID = primitive.NewObjectID()
	s.contacts[m.ID] = m
	return m.ID, nil
}

func (s *Store) MarkContactMessageMailed(ctx context.Context, id primitive.ObjectID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return s.Err
	}
	m, ok := s.contacts[id]
	if !ok {
		return store.ErrNotFound
	}
	m.Mailed = true
	s.contacts[id] = m
	return nil
}

// ContactMessages returns the stored messages in no particular order.
func (s *Store) ContactMessages() []models.ContactMessage {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.ContactMessage, 0, len(s.contacts))
	for _, m := range s.contacts {
		out = append(out, m)
	}
	return out
}

func cloneUser(u models.User) *models.User {
	u.Novels = append([]models.NovelRef(nil), u.Novels...)
	u.History = append([]models.NovelRef(nil), u.History...)
	return &u
}
