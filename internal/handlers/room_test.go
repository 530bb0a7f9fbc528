package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"room-chat-service/internal/mocks"
	"room-chat-service/internal/models"
	"room-chat-service/internal/repositories"
	"room-chat-service/internal/telemetry"
	"room-chat-service/internal/ws"
)

func setupRoomRouter(handler *RoomHandler) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/room/chat-history/:roomCode", handler.ChatHistory)
	r.GET("/room/:code", handler.GetRoom)
	r.POST("/room/:code", handler.CreateRoom)
	r.PATCH("/room/:code/editMsg/:msgId", handler.EditMessage)
	r.DELETE("/room/:code/deleteMsg/:msgId", handler.DeleteMessage)
	return r
}

func newRoomHandler(repo *mocks.RoomRepositoryMock) *RoomHandler {
	return NewRoomHandler(repo, ws.NewHub(), telemetry.NewAuditEmitter("room_activity", "test", "test"))
}

func TestGetRoomSuccess(t *testing.T) {
	repo := new(mocks.RoomRepositoryMock)
	router := setupRoomRouter(newRoomHandler(repo))

	repo.On("GetRoom", mock.Anything, "ABC123").Return(models.Room{Code: "ABC123", Name: "general"}, nil).Once()

	req := httptest.NewRequest(http.MethodGet, "/room/ABC123", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var room models.Room
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&room))
	assert.Equal(t, "ABC123", room.Code)
	repo.AssertExpectations(t)
}

func TestGetRoomNotFound(t *testing.T) {
	repo := new(mocks.RoomRepositoryMock)
	router := setupRoomRouter(newRoomHandler(repo))

	repo.On("GetRoom", mock.Anything, "NOPE").Return(models.Room{}, repositories.ErrRoomNotFound).Once()

	req := httptest.NewRequest(http.MethodGet, "/room/NOPE", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusNotFound, rec.Code)
	repo.AssertExpectations(t)
}

func TestCreateRoomSuccess(t *testing.T) {
	repo := new(mocks.RoomRepositoryMock)
	router := setupRoomRouter(newRoomHandler(repo))

	repo.On("CreateRoom", mock.Anything, mock.MatchedBy(func(room models.Room) bool {
		return room.Code == "ABC123" && room.Name == "general"
	})).Return(models.Room{Code: "ABC123", Name: "general"}, nil).Once()

	body := bytes.NewBufferString(`{"name":"general","description":"main room"}`)
	req := httptest.NewRequest(http.MethodPost, "/room/ABC123", body)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code)
	repo.AssertExpectations(t)
}

func TestCreateRoomWithoutBody(t *testing.T) {
	repo := new(mocks.RoomRepositoryMock)
	router := setupRoomRouter(newRoomHandler(repo))

	repo.On("CreateRoom", mock.Anything, mock.MatchedBy(func(room models.Room) bool {
		return room.Code == "ABC123"
	})).Return(models.Room{Code: "ABC123"}, nil).Once()

	req := httptest.NewRequest(http.MethodPost, "/room/ABC123", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code)
	repo.AssertExpectations(t)
}

func TestChatHistoryRoundTrip(t *testing.T) {
	repo := new(mocks.RoomRepositoryMock)
	router := setupRoomRouter(newRoomHandler(repo))

	msg := models.Message{
		ID:        primitive.NewObjectID(),
		SenderID:  "conn-a",
		Username:  "alice",
		Content:   "hi",
		Type:      "text",
		Reactions: []models.Reaction{},
		CreatedAt: time.Now().UTC().Truncate(time.Millisecond),
		UpdatedAt: time.Now().UTC().Truncate(time.Millisecond),
	}
	repo.On("FetchHistory", mock.Anything, "ABC123").Return([]models.Message{msg}, nil).Once()

	req := httptest.NewRequest(http.MethodGet, "/room/chat-history/ABC123", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var history []models.Message
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&history))
	require.Len(t, history, 1)
	assert.Equal(t, msg.ID, history[0].ID)
	assert.Equal(t, "hi", history[0].Content)
	assert.Equal(t, "text", history[0].Type)
	repo.AssertExpectations(t)
}

func TestEditMessageSuccess(t *testing.T) {
	repo := new(mocks.RoomRepositoryMock)
	router := setupRoomRouter(newRoomHandler(repo))

	msgID := primitive.NewObjectID()
	repo.On("UpdateMessageContent", mock.Anything, "ABC123", msgID, "edited", mock.AnythingOfType("time.Time")).
		Return(true, nil).Once()

	body := bytes.NewBufferString(`{"content":"edited"}`)
	req := httptest.NewRequest(http.MethodPatch, "/room/ABC123/editMsg/"+msgID.Hex(), body)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	repo.AssertExpectations(t)
}

func TestEditMessageNotFound(t *testing.T) {
	repo := new(mocks.RoomRepositoryMock)
	router := setupRoomRouter(newRoomHandler(repo))

	msgID := primitive.NewObjectID()
	repo.On("UpdateMessageContent", mock.Anything, "ABC123", msgID, "edited", mock.AnythingOfType("time.Time")).
		Return(false, nil).Once()

	body := bytes.NewBufferString(`{"content":"edited"}`)
	req := httptest.NewRequest(http.MethodPatch, "/room/ABC123/editMsg/"+msgID.Hex(), body)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusNotFound, rec.Code)
	repo.AssertExpectations(t)
}

func TestEditMessageMissingContent(t *testing.T) {
	repo := new(mocks.RoomRepositoryMock)
	router := setupRoomRouter(newRoomHandler(repo))

	req := httptest.NewRequest(http.MethodPatch, "/room/ABC123/editMsg/"+primitive.NewObjectID().Hex(), bytes.NewBufferString(`{}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	repo.AssertNotCalled(t, "UpdateMessageContent", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestEditMessageInvalidID(t *testing.T) {
	repo := new(mocks.RoomRepositoryMock)
	router := setupRoomRouter(newRoomHandler(repo))

	req := httptest.NewRequest(http.MethodPatch, "/room/ABC123/editMsg/not-an-id", bytes.NewBufferString(`{"content":"x"}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestDeleteMessageSuccess(t *testing.T) {
	repo := new(mocks.RoomRepositoryMock)
	router := setupRoomRouter(newRoomHandler(repo))

	msgID := primitive.NewObjectID()
	repo.On("DeleteMessage", mock.Anything, "ABC123", msgID).Return(true, nil).Once()

	req := httptest.NewRequest(http.MethodDelete, "/room/ABC123/deleteMsg/"+msgID.Hex(), nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	repo.AssertExpectations(t)
}

func TestDeleteMessageNotFound(t *testing.T) {
	repo := new(mocks.RoomRepositoryMock)
	router := setupRoomRouter(newRoomHandler(repo))

	msgID := primitive.NewObjectID()
	repo.On("DeleteMessage", mock.Anything, "ABC123", msgID).Return(false, nil).Once()

	req := httptest.NewRequest(http.MethodDelete, "/room/ABC123/deleteMsg/"+msgID.Hex(), nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusNotFound, rec.Code)
	repo.AssertExpectations(t)
}
