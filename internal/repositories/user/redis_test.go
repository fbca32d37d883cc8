package user

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/suite"

	"sessionbot/internal/models"
)

type RedisRepositoryTestSuite struct {
	suite.Suite
	mr     *miniredis.Miniredis
	client *redis.Client
	repo   Repository
}

func (s *RedisRepositoryTestSuite) SetupTest() {
	mr, err := miniredis.Run()
	s.Require().NoError(err)
	s.mr = mr

	s.client = redis.NewClient(&redis.Options{
		Addr: s.mr.Addr(),
	})

	repo, err := NewRedis(&Config{
		RedisClient: s.client,
	})
	s.Require().NoError(err)
	s.repo = repo
}

func (s *RedisRepositoryTestSuite) TearDownTest() {
	s.client.Close()
	s.mr.Close()
}

func TestRedisRepositoryTestSuite(t *testing.T) {
	suite.Run(t, new(RedisRepositoryTestSuite))
}

func (s *RedisRepositoryTestSuite) TestSaveAndGetUser() {
	u := &models.User{
		ID:       100,
		Name:     "Alice",
		Age:      30,
		Username: "alice",
	}

	err := s.repo.SaveUser(context.Background(), &SaveUserInput{User: u})
	s.Require().NoError(err)

	retrieved, err := s.repo.GetUser(context.Background(), &GetUserInput{UserID: 100})
	s.Require().NoError(err)
	s.Equal(u, retrieved)
}

func (s *RedisRepositoryTestSuite) TestGetUserNotFound() {
	_, err := s.repo.GetUser(context.Background(), &GetUserInput{UserID: 404})
	s.Require().ErrorIs(err, ErrUserNotFound)
}

func (s *RedisRepositoryTestSuite) TestGetUsersSkipsUnknown() {
	ctx := context.Background()
	s.Require().NoError(s.repo.SaveUser(ctx, &SaveUserInput{User: &models.User{ID: 100, Name: "Alice"}}))
	s.Require().NoError(s.repo.SaveUser(ctx, &SaveUserInput{User: &models.User{ID: 200, Name: "Bob"}}))

	users, err := s.repo.GetUsers(ctx, &GetUsersInput{UserIDs: []int64{100, 200, 999}})
	s.Require().NoError(err)
	s.Require().Len(users, 2)
	s.Equal("Alice", users[100].Name)
	s.Equal("Bob", users[200].Name)
}

func (s *RedisRepositoryTestSuite) TestBlockAndUnblock() {
	ctx := context.Background()
	s.Require().NoError(s.repo.SaveUser(ctx, &SaveUserInput{User: &models.User{ID: 100, Name: "Alice"}}))

	s.Require().NoError(s.repo.BlockUser(ctx, &BlockUserInput{UserID: 100, Reason: "spam"}))

	u, err := s.repo.GetUser(ctx, &GetUserInput{UserID: 100})
	s.Require().NoError(err)
	s.True(u.Blocked)
	s.Equal("spam", u.BlockReason)

	blocked, err := s.repo.ListBlockedUsers(ctx, &ListBlockedUsersInput{})
	s.Require().NoError(err)
	s.Require().Len(blocked, 1)
	s.Equal(int64(100), blocked[0].ID)

	s.Require().NoError(s.repo.UnblockUser(ctx, &UnblockUserInput{UserID: 100}))

	u, err = s.repo.GetUser(ctx, &GetUserInput{UserID: 100})
	s.Require().NoError(err)
	s.False(u.Blocked)
	s.Empty(u.BlockReason)

	blocked, err = s.repo.ListBlockedUsers(ctx, &ListBlockedUsersInput{})
	s.Require().NoError(err)
	s.Empty(blocked)
}

func (s *RedisRepositoryTestSuite) TestBlockUnknownUser() {
	err := s.repo.BlockUser(context.Background(), &BlockUserInput{UserID: 404, Reason: "spam"})
	s.Require().ErrorIs(err, ErrUserNotFound)
}
