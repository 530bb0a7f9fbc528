package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"room-chat-service/internal/models"
	"room-chat-service/internal/observability"
	"room-chat-service/internal/repositories"
	"room-chat-service/internal/telemetry"
	"room-chat-service/internal/ws"
)

// RoomHandler serves the room REST surface.
type RoomHandler struct {
	rooms repositories.RoomRepository
	hub   *ws.Hub
	audit *telemetry.AuditEmitter
}

// NewRoomHandler builds a RoomHandler.
func NewRoomHandler(rooms repositories.RoomRepository, hub *ws.Hub, audit *telemetry.AuditEmitter) *RoomHandler {
	return &RoomHandler{rooms: rooms, hub: hub, audit: audit}
}

// GetRoom returns a room by code.
func (h *RoomHandler) GetRoom(c *gin.Context) {
	room, err := h.rooms.GetRoom(c.Request.Context(), c.Param("code"))
	if err != nil {
		if errors.Is(err, repositories.ErrRoomNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "room not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load room"})
		return
	}
	c.JSON(http.StatusOK, room)
}

// CreateRoom creates a room addressed by code. Creating an existing code
// returns the existing room unchanged.
func (h *RoomHandler) CreateRoom(c *gin.Context) {
	var req struct {
		Name        string `json:"name"`
		Description string `json:"description"`
	}
	// Metadata body is optional.
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
	}

	room, err := h.rooms.CreateRoom(c.Request.Context(), models.Room{
		Code:        c.Param("code"),
		Name:        req.Name,
		Description: req.Description,
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not create room"})
		return
	}
	c.JSON(http.StatusCreated, room)
}

// ChatHistory returns the room's message log, creating the room when absent.
func (h *RoomHandler) ChatHistory(c *gin.Context) {
	msgs, err := h.rooms.FetchHistory(c.Request.Context(), c.Param("roomCode"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load chat history"})
		return
	}
	c.JSON(http.StatusOK, msgs)
}

// EditMessage updates a message's content and notifies the live room.
func (h *RoomHandler) EditMessage(c *gin.Context) {
	code := c.Param("code")
	msgID, err := primitive.ObjectIDFromHex(c.Param("msgId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid message id"})
		return
	}

	var req struct {
		Content string `json:"content" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	now := time.Now().UTC()
	matched, err := h.rooms.UpdateMessageContent(c.Request.Context(), code, msgID, req.Content, now)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not edit message"})
		return
	}
	if !matched {
		c.JSON(http.StatusNotFound, gin.H{"error": "message not found"})
		return
	}

	h.hub.Broadcast(code, models.EventMessageUpdate, models.MessageUpdateEvent{
		MessageID:  msgID.Hex(),
		NewContent: req.Content,
		UpdatedAt:  now,
	})
	h.audit.Emit(c.Request.Context(), telemetry.AuditPayload{
		Event:     telemetry.EventMessageEdited,
		RoomCode:  code,
		MessageID: msgID.Hex(),
	}, observability.RequestIDFromRequest(c.Request), "")

	c.JSON(http.StatusOK, gin.H{"message": "Message edited successfully"})
}

// DeleteMessage removes a message from the room's log and notifies the live
// room.
func (h *RoomHandler) DeleteMessage(c *gin.Context) {
	code := c.Param("code")
	msgID, err := primitive.ObjectIDFromHex(c.Param("msgId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid message id"})
		return
	}

	deleted, err := h.rooms.DeleteMessage(c.Request.Context(), code, msgID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not delete message"})
		return
	}
	if !deleted {
		c.JSON(http.StatusNotFound, gin.H{"error": "message or room not found"})
		return
	}

	h.hub.Broadcast(code, models.EventMessageDelete, models.MessageDeleteEvent{MessageID: msgID.Hex()})
	h.audit.Emit(c.Request.Context(), telemetry.AuditPayload{
		Event:     telemetry.EventMessageDeleted,
		RoomCode:  code,
		MessageID: msgID.Hex(),
	}, observability.RequestIDFromRequest(c.Request), "")

	c.JSON(http.StatusOK, gin.H{"message": "Message deleted successfully"})
}
