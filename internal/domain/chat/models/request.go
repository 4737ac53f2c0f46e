package models

// ConversationRequest is a single assistant exchange. An empty RequesterID means the
// request is anonymous and answered in platform-wide mode.
type ConversationRequest struct {
	Turns         []ChatTurn
	RequesterID   string
	RequesterRole string
	// ContextData is caller-supplied augmentation. When set the gateway is not queried.
	ContextData *QueryResult
	Augment     bool
}

// ModelRequest is the provider neutral prompt handed to the streaming client
type ModelRequest struct {
	System string
	Turns  []ChatTurn
}
