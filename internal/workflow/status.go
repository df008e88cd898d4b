package workflow

import "time"

// DefaultBannerTTL is how long a banner stays visible.
const DefaultBannerTTL = 3 * time.Second

// StatusKind is the banner color.
type StatusKind int

const (
	// StatusNone means no banner.
	StatusNone StatusKind = iota
	// StatusInfo is neutral.
	StatusInfo
	// StatusSuccess follows a completed save.
	StatusSuccess
	// StatusError follows a surfaced failure.
	StatusError
)

func (k StatusKind) String() string {
	switch k {
	case StatusInfo:
		return "info"
	case StatusSuccess:
		return "success"
	case StatusError:
		return "error"
	}
	return "none"
}

// Status is a transient message for the UI.
type Status struct {
	Expires time.Time
	Message string
	Kind    StatusKind
}

// Active reports whether the banner should still be shown at now.
func (s Status) Active(now time.Time) bool {
	return s.Kind != StatusNone && now.Before(s.Expires)
}

// Status returns the current banner, or the zero Status once it expired.
func (w *Workflow) Status() Status {
	w.mu.Lock()
	defer w.mu.Unlock()
	if !w.status.Active(w.opts.Now()) {
		return Status{}
	}
	return w.status
}

// Notify shows an info banner.
func (w *Workflow) Notify(message string) {
	w.setStatus(StatusInfo, message)
}

func (w *Workflow) setStatus(kind StatusKind, message string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.status = Status{
		Kind:    kind,
		Message: message,
		Expires: w.opts.Now().Add(w.opts.BannerTTL),
	}
}
