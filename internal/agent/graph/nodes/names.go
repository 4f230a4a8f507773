package nodes

// Graph node keys.
const (
	NodeInputConverter        = "input_converter"
	NodeClassifyIntent        = "classify_intent"
	NodeGenerateQuery         = "generate"
	NodeExecuteQuery          = "execute"
	NodeSummarizeResult       = "summarize"
	NodeExplainFailure        = "explain_failure"
	NodeConversationAssembler = "conversation_assembler"
	NodeConversationChatModel = "conversation_chat_model"
	NodeToolExecutor          = "tool_executor"
	NodeConversationFinalizer = "conversation_finalizer"
)
