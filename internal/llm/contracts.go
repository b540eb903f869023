package llm

import "context"

// DiagramDescription is the normalized shape we want from the LLM.
type DiagramDescription struct {
	BriefDescription    string `json:"brief_description"`
	DetailedDescription string `json:"detailed_description"`
}

// DescribeRequest carries one document and the instruction to run against it.
type DescribeRequest struct {
	FilePath    string
	MIMEType    string
	DisplayName string
	Prompt      string

	// Schema constrains the model's structured output; nil requests free text.
	Schema map[string]any
}

// DiagramDescriber is the interface the processor depends on.
type DiagramDescriber interface {
	DescribeDiagrams(ctx context.Context, req DescribeRequest) ([]byte /*raw model text*/, error)
}
