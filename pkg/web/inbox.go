package web

import (
	"sync"

	"gitlab.connectwisedev.com/storefront-client/pkg/storefront"
)

const inboxSize = 50

// Notice is a notification waiting to be shown by the browser
type Notice struct {
	Kind    storefront.NoticeKind `json:"kind"`
	Message string                `json:"message"`
}

// Inbox buffers notifications and render requests until the browser polls for them
type Inbox struct {
	mu      sync.Mutex
	limit   int
	notices []Notice
	views   map[storefront.View]struct{}
}

func NewInbox(limit int) *Inbox {
	return &Inbox{limit: limit, views: make(map[storefront.View]struct{})}
}

func (i *Inbox) Notify(kind storefront.NoticeKind, message string) {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.notices = append(i.notices, Notice{Kind: kind, Message: message})
	if len(i.notices) > i.limit {
		i.notices = i.notices[len(i.notices)-i.limit:]
	}
}

func (i *Inbox) Render(view storefront.View) {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.views[view] = struct{}{}
}

// Drain returns and forgets everything buffered so far
func (i *Inbox) Drain() ([]Notice, []storefront.View) {
	i.mu.Lock()
	defer i.mu.Unlock()

	notices := i.notices
	if notices == nil {
		notices = []Notice{}
	}
	views := make([]storefront.View, 0, len(i.views))
	for v := range i.views {
		views = append(views, v)
	}
	i.notices = nil
	i.views = make(map[storefront.View]struct{})
	return notices, views
}
