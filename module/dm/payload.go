package dm

import (
	"DProject/module/message"
	"DProject/module/thread"
)

type openThreadReq struct {
	PeerID string `json:"peer_id" binding:"required"`
}

type respondReq struct {
	Decision string `json:"decision" binding:"required"` // ACCEPT | DECLINE
}

type appendReq struct {
	Body string `json:"body"`
}

type editReq struct {
	Body string `json:"body"`
}

type toggleReq struct {
	Emoji string `json:"emoji" binding:"required"`
}

type threadResp struct {
	*thread.Thread
}

type threadListItem struct {
	*thread.View
	Unread int64 `json:"unread"`
}

type pageResp struct {
	Messages   []*message.Message `json:"messages"`
	NextCursor string             `json:"next_cursor,omitempty"`
}

type presenceResp struct {
	UserID string `json:"user_id"`
	Online bool   `json:"online"`
	NodeID string `json:"node_id,omitempty"`
}
