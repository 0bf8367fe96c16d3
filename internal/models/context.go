package models

// Context holds the interview material used to personalize generated
// answers. All four fields are always defined; an absent value is an
// empty string, never a nil. Updates replace the whole value; there is
// no partial patch operation.
type Context struct {
	CV                 string `json:"cv"`
	Company            string `json:"company"`
	Position           string `json:"position"`
	CustomSystemPrompt string `json:"custom_system_prompt"`
}
