package mocks

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"room-chat-service/internal/models"
)

type RoomRepositoryMock struct {
	mock.Mock
}

func (m *RoomRepositoryMock) CreateRoom(ctx context.Context, room models.Room) (models.Room, error) {
	args := m.Called(ctx, room)
	var result models.Room
	if val := args.Get(0); val != nil {
		result = val.(models.Room)
	}
	return result, args.Error(1)
}

func (m *RoomRepositoryMock) GetRoom(ctx context.Context, code string) (models.Room, error) {
	args := m.Called(ctx, code)
	var result models.Room
	if val := args.Get(0); val != nil {
		result = val.(models.Room)
	}
	return result, args.Error(1)
}

func (m *RoomRepositoryMock) FetchHistory(ctx context.Context, code string) ([]models.Message, error) {
	args := m.Called(ctx, code)
	var msgs []models.Message
	if val := args.Get(0); val != nil {
		msgs = val.([]models.Message)
	}
	return msgs, args.Error(1)
}

func (m *RoomRepositoryMock) AppendMessage(ctx context.Context, code string, msg models.Message) error {
	args := m.Called(ctx, code, msg)
	return args.Error(0)
}

func (m *RoomRepositoryMock) UpdateMessageContent(ctx context.Context, code string, messageID primitive.ObjectID, newContent string, now time.Time) (bool, error) {
	args := m.Called(ctx, code, messageID, newContent, now)
	return args.Bool(0), args.Error(1)
}

func (m *RoomRepositoryMock) AddReaction(ctx context.Context, code string, messageID primitive.ObjectID, reaction models.Reaction) (bool, error) {
	args := m.Called(ctx, code, messageID, reaction)
	return args.Bool(0), args.Error(1)
}

func (m *RoomRepositoryMock) RemoveReaction(ctx context.Context, code string, messageID primitive.ObjectID, emoji, senderUsername string) (bool, error) {
	args := m.Called(ctx, code, messageID, emoji, senderUsername)
	return args.Bool(0), args.Error(1)
}

func (m *RoomRepositoryMock) DeleteMessage(ctx context.Context, code string, messageID primitive.ObjectID) (bool, error) {
	args := m.Called(ctx, code, messageID)
	return args.Bool(0), args.Error(1)
}

type UserRepositoryMock struct {
	mock.Mock
}

func (m *UserRepositoryMock) CreateUser(ctx context.Context, username, email, passwordHash, profilePic string) (models.User, error) {
	args := m.Called(ctx, username, email, passwordHash, profilePic)
	var user models.User
	if val := args.Get(0); val != nil {
		user = val.(models.User)
	}
	return user, args.Error(1)
}

func (m *UserRepositoryMock) GetUserByEmail(ctx context.Context, email string) (models.User, error) {
	args := m.Called(ctx, email)
	var user models.User
	if val := args.Get(0); val != nil {
		user = val.(models.User)
	}
	return user, args.Error(1)
}

func (m *UserRepositoryMock) GetUserByID(ctx context.Context, id int64) (models.User, error) {
	args := m.Called(ctx, id)
	var user models.User
	if val := args.Get(0); val != nil {
		user = val.(models.User)
	}
	return user, args.Error(1)
}

func (m *UserRepositoryMock) SaveRefreshToken(ctx context.Context, userID int64, token string, expiresAt time.Time) error {
	args := m.Called(ctx, userID, token, expiresAt)
	return args.Error(0)
}

func (m *UserRepositoryMock) HasRefreshToken(ctx context.Context, userID int64, token string) (bool, error) {
	args := m.Called(ctx, userID, token)
	return args.Bool(0), args.Error(1)
}

func (m *UserRepositoryMock) DeleteRefreshToken(ctx context.Context, token string) error {
	args := m.Called(ctx, token)
	return args.Error(0)
}
