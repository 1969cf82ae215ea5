package app

import (
	"errors"
	"fmt"
	"log/slog"
	"runtime/debug"

	"herbar/client/internal/notify"
)

// ErrorHandler turns errors into notifications. It satisfies the Reporter
// interfaces of the feature thunks.
type ErrorHandler struct {
	notifier *notify.Service
	logger   *slog.Logger
}

func NewErrorHandler(notifier *notify.Service, logger *slog.Logger) *ErrorHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &ErrorHandler{notifier: notifier, logger: logger}
}

// Classify returns the class carried by an *AppError in err's chain, and
// ClassOperational for anything else.
func Classify(err error) string {
	var appErr *AppError
	if errors.As(err, &appErr) && appErr.Class != "" {
		return appErr.Class
	}
	return ClassOperational
}

// Handle logs err and shows it. Critical notifications stay until
// dismissed; operational ones expire.
func (h *ErrorHandler) Handle(err error) {
	if err == nil {
		return
	}
	class := Classify(err)
	if class == ClassCritical {
		h.logger.Error("critical error", "err", err)
	} else {
		h.logger.Warn("operational error", "err", err)
	}
	if h.notifier != nil {
		h.notifier.Notify(class, userMessage(err), class == ClassCritical)
	}
}

// Report is Handle; it lets the handler serve as a thunk Reporter.
func (h *ErrorHandler) Report(err error) {
	h.Handle(err)
}

// Recover must be deferred directly. A recovered panic is logged with its
// stack and reported as operational.
func (h *ErrorHandler) Recover() {
	r := recover()
	if r == nil {
		return
	}
	h.logger.Error("recovered panic", "panic", r, "stack", string(debug.Stack()))
	h.Handle(&AppError{
		Class:   ClassOperational,
		Code:    "panic",
		Message: "A apărut o eroare neașteptată.",
		Err:     fmt.Errorf("panic: %v", r),
	})
}
