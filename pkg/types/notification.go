package types

// NotificationResult is the outcome of a webhook delivery
type NotificationResult struct {
	Delivered  bool
	StatusCode int
	Reason     string
}
