package storefront

// NoticeKind classifies a transient notification
type NoticeKind string

const (
	NoticeSuccess NoticeKind = "success"
	NoticeError   NoticeKind = "error"
	NoticeInfo    NoticeKind = "info"
)

// View names a part of the UI the presentation layer should re-render
type View string

const (
	ViewCatalog View = "catalog"
	ViewCart    View = "cart"
	ViewSession View = "session"
	ViewLogin   View = "login"
	ViewAdmin   View = "admin"
)

// Notifier is implemented by the presentation layer. Calls are made after
// state has changed and never while the controller holds its lock.
type Notifier interface {
	Notify(kind NoticeKind, message string)
	Render(view View)
}

type nopNotifier struct{}

func (nopNotifier) Notify(NoticeKind, string) {}
func (nopNotifier) Render(View)               {}
