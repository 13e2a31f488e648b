package flow

// NewSingleAgentFlow assembles the standard pipeline for one model-backed
// agent: instruction resolution, content assembly and output key staging.
func NewSingleAgentFlow(agent FlowAgent) *BaseFlow {
	f := NewBaseFlow(agent)

	f.AddRequestProcessor(NewInstructionsProcessor())
	f.AddRequestProcessor(NewContentsProcessor())

	f.AddResponseProcessor(NewOutputKeyProcessor())

	return f
}
