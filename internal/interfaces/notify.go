package interfaces

// NoticeLevel mirrors the transient message kinds of the console.
type NoticeLevel string

const (
	NoticeInfo    NoticeLevel = "info"
	NoticeSuccess NoticeLevel = "success"
	NoticeWarning NoticeLevel = "warning"
	NoticeError   NoticeLevel = "error"
)

// Notifier surfaces transient operator messages.
type Notifier interface {
	Notify(level NoticeLevel, message string)
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(level NoticeLevel, message string)

func (f NotifierFunc) Notify(level NoticeLevel, message string) { f(level, message) }

// DetailStore persists the client-local show_detail toggle.
type DetailStore interface {
	ShowDetail() bool
	SetShowDetail(show bool) error
}
