package prompts

const analyzeSpec = `Respond with a JSON object with these fields:

- summary: a clear synthesis of the situation and the contract, three sentences at most.
- keyPoints: the essential legal points found in the document (mobility clause, probation period, non-compete and so on).
- risks: the risks or points of attention. Each has a severity of Low, Medium or High and a description.
- actions: concrete recommendations for the lawyer or the client.
- draftResponse: a complete email, ready to send, with blank lines between paragraphs. Never a single compact block.

The draft follows this outline:

Subject: <clear subject>

<salutation>

<acknowledgement of the client's message>

<legal analysis, detailed but accessible, over several short paragraphs>

<practical recommendations>

<conclusion and an invitation to book a meeting>

<closing formula>

<signature of the lawyer and the firm>`

const chatSpec = `Answer in plain text, not JSON.
If a previous analysis is provided, stay consistent with it unless the document contradicts it.
If the document does not answer the question, say so.`

var specs = map[Stage]string{
	StageAnalyze: analyzeSpec,
	StageChat:    chatSpec,
}

// Spec returns the output contract for a stage. Specs are not overridable.
func Spec(stage Stage) (string, error) {
	text, ok := specs[stage]
	if !ok {
		return "", ErrInvalidStage
	}
	return text, nil
}
