// Package dm exposes the direct-messaging operations over HTTP.
package dm

import (
	"errors"
	"net/http"
	"strconv"

	"DProject/middleware/security"
	"DProject/module/message"
	"DProject/module/reaction"
	"DProject/module/read"
	"DProject/module/thread"
	"DProject/service/storage"
	"DProject/service/stream"
	"DProject/tools/errs"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	registry *thread.Registry
	msgs     *message.Service
	ledger   *reaction.Ledger
	tracker  *read.Tracker
	stream   *stream.Server
	presence *storage.Presence // nil when redis is disabled
}

func NewHandler(registry *thread.Registry, msgs *message.Service, ledger *reaction.Ledger, tracker *read.Tracker, streamSrv *stream.Server, presence *storage.Presence) *Handler {
	return &Handler{
		registry: registry,
		msgs:     msgs,
		ledger:   ledger,
		tracker:  tracker,
		stream:   streamSrv,
		presence: presence,
	}
}

// statusOf maps the error taxonomy onto HTTP statuses.
func statusOf(err error) int {
	var ce *errs.CodeError
	if !errors.As(err, &ce) {
		return http.StatusInternalServerError
	}
	switch ce.Code {
	case errs.CodeUnauthorized:
		return http.StatusUnauthorized
	case errs.CodeForbidden:
		return http.StatusForbidden
	case errs.CodeNotFound:
		return http.StatusNotFound
	case errs.CodeInvalidPeer, errs.CodeNotActive, errs.CodeEmptyBody:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func abortErr(c *gin.Context, err error) {
	var ce *errs.CodeError
	if errors.As(err, &ce) {
		c.JSON(statusOf(err), ce)
		return
	}
	c.JSON(http.StatusInternalServerError, errs.ErrInternal)
}

func pathID(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil {
		c.JSON(http.StatusNotFound, errs.ErrNotFound.WithDetail("bad id"))
		return 0, false
	}
	return id, true
}

// OpenThread resolves (or creates) the canonical thread with the peer.
func (h *Handler) OpenThread(c *gin.Context) {
	var req openThreadReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errs.ErrInvalidPeer.WithDetail("peer_id required"))
		return
	}
	t, err := h.registry.OpenOrGet(c.Request.Context(), security.ActingUser(c), req.PeerID)
	if err != nil {
		abortErr(c, err)
		return
	}
	c.JSON(http.StatusOK, threadResp{t})
}

// RespondThread applies ACCEPT/DECLINE.
func (h *Handler) RespondThread(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req respondReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errs.ErrForbidden.WithDetail("decision required"))
		return
	}
	t, err := h.registry.Respond(c.Request.Context(), security.ActingUser(c), id, thread.Decision(req.Decision))
	if err != nil {
		abortErr(c, err)
		return
	}
	c.JSON(http.StatusOK, threadResp{t})
}

// ListThreads returns the caller's inbox, annotated with unread counts.
func (h *Handler) ListThreads(c *gin.Context) {
	actor := security.ActingUser(c)
	views, err := h.registry.ListFor(c.Request.Context(), actor)
	if err != nil {
		abortErr(c, err)
		return
	}
	out := make([]threadListItem, 0, len(views))
	for _, v := range views {
		unread, err := h.tracker.UnreadForThread(c.Request.Context(), actor, v.Thread.ID)
		if err != nil {
			abortErr(c, err)
			return
		}
		out = append(out, threadListItem{View: v, Unread: unread})
	}
	c.JSON(http.StatusOK, out)
}

// AppendMessage writes to an ACTIVE thread.
func (h *Handler) AppendMessage(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req appendReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errs.ErrEmptyBody)
		return
	}
	m, err := h.msgs.Append(c.Request.Context(), security.ActingUser(c), id, req.Body)
	if err != nil {
		abortErr(c, err)
		return
	}
	c.JSON(http.StatusOK, m)
}

// ListMessages pages backwards from the cursor (newest page when absent).
func (h *Handler) ListMessages(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	page, next, err := h.msgs.ListBefore(c.Request.Context(), security.ActingUser(c), id, c.Query("cursor"), limit)
	if err != nil {
		abortErr(c, err)
		return
	}
	c.JSON(http.StatusOK, pageResp{Messages: page, NextCursor: next})
}

// EditMessage replaces the body, author only.
func (h *Handler) EditMessage(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req editReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errs.ErrEmptyBody)
		return
	}
	m, err := h.msgs.Edit(c.Request.Context(), security.ActingUser(c), id, req.Body)
	if err != nil {
		abortErr(c, err)
		return
	}
	c.JSON(http.StatusOK, m)
}

// DeleteMessage removes the message, author only.
func (h *Handler) DeleteMessage(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := h.msgs.Delete(c.Request.Context(), security.ActingUser(c), id); err != nil {
		abortErr(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// ToggleReaction flips the caller's emoji on a message.
func (h *Handler) ToggleReaction(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req toggleReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errs.ErrForbidden.WithDetail("emoji required"))
		return
	}
	sum, err := h.ledger.Toggle(c.Request.Context(), security.ActingUser(c), id, req.Emoji)
	if err != nil {
		abortErr(c, err)
		return
	}
	c.JSON(http.StatusOK, sum)
}

// MarkRead stamps the caller's read watermark on the thread.
func (h *Handler) MarkRead(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := h.tracker.MarkRead(c.Request.Context(), security.ActingUser(c), id); err != nil {
		abortErr(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Unread returns per-thread unread counts plus the grand total.
func (h *Handler) Unread(c *gin.Context) {
	counts, err := h.tracker.UnreadFor(c.Request.Context(), security.ActingUser(c))
	if err != nil {
		abortErr(c, err)
		return
	}
	c.JSON(http.StatusOK, counts)
}

// Presence reports whether a user currently holds a live stream connection.
func (h *Handler) Presence(c *gin.Context) {
	userID := c.Param("user")
	if h.presence == nil {
		c.JSON(http.StatusOK, presenceResp{UserID: userID})
		return
	}
	node, online, err := h.presence.Lookup(c.Request.Context(), userID)
	if err != nil {
		abortErr(c, err)
		return
	}
	c.JSON(http.StatusOK, presenceResp{UserID: userID, Online: online, NodeID: node})
}

// Stream upgrades to a websocket push channel for one thread.
func (h *Handler) Stream(c *gin.Context) {
	h.stream.HandleWS(c)
}
