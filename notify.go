package resilient

// NotificationSink receives user-facing failure summaries for terminal
// classified errors. The message is one of the fixed, non-technical texts
// below; raw causes and stack detail never reach the sink.
type NotificationSink interface {
	Notify(err *ClassifiedError, message string)
}

// NotificationFunc adapts an ordinary function into a [NotificationSink].
type NotificationFunc func(err *ClassifiedError, message string)

// Notify calls the underlying function.
func (f NotificationFunc) Notify(err *ClassifiedError, message string) {
	f(err, message)
}

// userMessages holds exactly one fixed, human-readable message per kind,
// suitable for direct display.
var userMessages = map[Kind]string{
	KindNetwork:    "We couldn't reach the server. Please check your connection and try again.",
	KindTimeout:    "The request took too long to complete. Please try again.",
	KindOffline:    "You appear to be offline. Your changes will sync once you're back online.",
	KindAuth:       "Your session has expired. Please sign in again.",
	KindRateLimit:  "You're doing that a little too quickly. Please wait a moment and try again.",
	KindServer:     "Something went wrong on our side. Please try again in a moment.",
	KindValidation: "Some of the information provided isn't valid. Please review it and try again.",
	KindClient:     "That request couldn't be completed. Please refresh and try again.",
	KindUnknown:    "An unexpected error occurred. Please try again.",
}

// UserMessage returns the fixed user-facing message for a kind.
func UserMessage(k Kind) string {
	if msg, ok := userMessages[k]; ok {
		return msg
	}

	return userMessages[KindUnknown]
}
