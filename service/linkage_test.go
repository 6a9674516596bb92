package service_test

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/kevinaaaquil/novels/apperr"
	"github.com/kevinaaaquil/novels/mock"
	"github.com/kevinaaaquil/novels/models"
	"github.com/kevinaaaquil/novels/service"
)

func seedUser(t *testing.T, s *mock.Store, email string) primitive.ObjectID {
	t.Helper()
	id, err := s.CreateUser(context.Background(), &models.User{
		Name:     "Reader",
		Email:    email,
		Provider: models.ProviderCredentials,
	})
	require.NoError(t, err)
	return id
}

func TestLinkageAttach(t *testing.T) {
	s := mock.NewStore()
	userID := seedUser(t, s, "a@x.io")
	novels := seedNovels(t, s, models.Novel{Title: "One"}, models.Novel{Title: "Two"})
	l := service.NewLinkage(s, s)
	ctx := context.Background()

	require.NoError(t, l.Attach(ctx, userID, novels[0].ID))
	require.NoError(t, l.Attach(ctx, userID, novels[1].ID))

	user, err := s.UserByID(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, []models.NovelRef{{ID: novels[0].ID.Hex()}, {ID: novels[1].ID.Hex()}}, user.Novels)
	assert.Empty(t, user.History)
}

func TestLinkageAttach_Concurrent(t *testing.T) {
	s := mock.NewStore()
	userID := seedUser(t, s, "a@x.io")
	l := service.NewLinkage(s, s)

	const n = 50
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, l.Attach(context.Background(), userID, primitive.NewObjectID()))
		}()
	}
	wg.Wait()

	user, err := s.UserByID(context.Background(), userID)
	require.NoError(t, err)
	assert.Len(t, user.Novels, n)
}

func TestLinkageAttach_MissingUser(t *testing.T) {
	s := mock.NewStore()
	l := service.NewLinkage(s, s)

	err := l.Attach(context.Background(), primitive.NewObjectID(), primitive.NewObjectID())
	require.Error(t, err)
	assert.True(t, apperr.Is(err, "NOT_FOUND"))
	assert.Equal(t, "User not found", apperr.As(err).Message)
}

func TestLinkageRecordView_AllowsRepeats(t *testing.T) {
	s := mock.NewStore()
	userID := seedUser(t, s, "a@x.io")
	novels := seedNovels(t, s, models.Novel{Title: "Dune"})
	l := service.NewLinkage(s, s)
	ctx := context.Background()

	require.NoError(t, l.RecordView(ctx, userID, novels[0].ID))
	require.NoError(t, l.RecordView(ctx, userID, novels[0].ID))

	history, err := l.History(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, []string{"Dune", "Dune"}, titles(history))

	user, err := s.UserByID(ctx, userID)
	require.NoError(t, err)
	assert.Len(t, user.History, 2)
}

func TestLinkageResolve(t *testing.T) {
	s := mock.NewStore()
	novels := seedNovels(t, s,
		models.Novel{Title: "A"},
		models.Novel{Title: "B"},
		models.Novel{Title: "C"},
	)
	s.DeleteNovel(novels[1].ID)
	l := service.NewLinkage(s, s)

	refs := []models.NovelRef{
		{ID: novels[2].ID.Hex()},
		{ID: "not-an-id"},
		{ID: novels[1].ID.Hex()},
		{ID: novels[0].ID.Hex()},
	}
	got, err := l.Resolve(context.Background(), refs)
	require.NoError(t, err)
	assert.Equal(t, []string{"C", "A"}, titles(got))
}

func TestLinkageResolve_KeepsRepeatsInOrder(t *testing.T) {
	s := mock.NewStore()
	novels := seedNovels(t, s, models.Novel{Title: "A"}, models.Novel{Title: "B"})
	l := service.NewLinkage(s, s)

	refs := []models.NovelRef{
		{ID: novels[0].ID.Hex()},
		{ID: novels[1].ID.Hex()},
		{ID: novels[0].ID.Hex()},
	}
	got, err := l.Resolve(context.Background(), refs)
	require.NoError(t, err)
	assert.Equal(t, []string{"A", "B", "A"}, titles(got))
}

func TestLinkageResolve_Empty(t *testing.T) {
	l := service.NewLinkage(mock.NewStore(), mock.NewStore())

	got, err := l.Resolve(context.Background(), nil)
	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestLinkageOwnedNovels_MissingUser(t *testing.T) {
	s := mock.NewStore()
	l := service.NewLinkage(s, s)

	_, err := l.OwnedNovels(context.Background(), primitive.NewObjectID())
	assert.True(t, apperr.Is(err, "NOT_FOUND"))
}
