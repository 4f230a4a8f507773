package tools

import "github.com/cloudwego/eino/schema"

// Classification is expressed as a forced choice between two argument-less
// tools; the name of the tool the model calls is the intent.
var (
	databaseQueryInfo = &schema.ToolInfo{
		Name: ToolDatabaseQuery,
		Desc: "The user is asking a question that requires a database query, or can be solved by an sql query.",
	}
	conversationInfo = &schema.ToolInfo{
		Name: ToolConversation,
		Desc: "The user is greeting, making a small talk or asking a general knowledge question not related to database or cannot be handled with sql.",
	}
)

// IntentToolInfos returns the classifier's tool set.
func IntentToolInfos() []*schema.ToolInfo {
	return []*schema.ToolInfo{databaseQueryInfo, conversationInfo}
}
