package types

// Issue is the subset of a reported issue used for notifications
type Issue struct {
	Key     string
	Message string
}
