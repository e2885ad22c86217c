package knowledge

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mitchellh/mapstructure"

	"github.com/muneeb-ds/ai-travel-advisor/internal/types"
)

// ToolName is the registry name of the retrieval tool.
const ToolName = "knowledge_retrieval"

// RetrievalTool exposes a Retriever through the tool interface so the
// orchestrator dispatches knowledge lookups the same way it dispatches
// flights or weather.
type RetrievalTool struct {
	retriever Retriever
	topK      int
}

// NewRetrievalTool wraps retriever as a tool. topK bounds results per query;
// values <= 0 fall back to the retriever default.
func NewRetrievalTool(retriever Retriever, topK int) *RetrievalTool {
	return &RetrievalTool{retriever: retriever, topK: topK}
}

// Name implements tool.Tool.
func (t *RetrievalTool) Name() string { return ToolName }

// Description implements tool.Tool.
func (t *RetrievalTool) Description() string {
	return "Searches the traveler's personal knowledge base for notes and tips relevant to a query"
}

// Tags implements tool.Tool.
func (t *RetrievalTool) Tags() []string { return []string{"knowledge"} }

type retrievalInput struct {
	Query            string `json:"query"`
	DestinationScope string `json:"destination_scope"`
	TopK             int    `json:"top_k"`
}

// Invoke implements tool.Tool. The result carries each passage alongside its
// score so the caller can apply its own similarity threshold before citing.
func (t *RetrievalTool) Invoke(ctx context.Context, args map[string]any) (map[string]any, error) {
	var input retrievalInput
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           &input,
		TagName:          "json",
		WeaklyTypedInput: true,
	})
	if err != nil {
		return nil, types.WrapError(types.TOOL_EXECUTION_ERROR, "failed to build argument decoder", err)
	}
	if err := decoder.Decode(args); err != nil {
		return nil, types.WrapError(types.TOOL_INVALID_INPUT, "invalid knowledge retrieval arguments", err)
	}
	if input.Query == "" {
		return nil, types.NewError(types.TOOL_INVALID_INPUT, "query is required")
	}

	topK := input.TopK
	if topK <= 0 {
		topK = t.topK
	}

	results, err := t.retriever.Search(ctx, input.Query, SearchOptions{
		DestinationScope: input.DestinationScope,
		TopK:             topK,
	})
	if err != nil {
		return nil, types.WrapError(types.TOOL_EXECUTION_ERROR, fmt.Sprintf("knowledge search for %q failed", input.Query), err)
	}

	// Round-trip through JSON so the result map matches what any other tool
	// would return over the wire.
	payload := map[string]any{"results": results, "query": input.Query}
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, types.WrapError(types.TOOL_EXECUTION_ERROR, "failed to encode knowledge results", err)
	}
	var out map[string]any
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, types.WrapError(types.TOOL_EXECUTION_ERROR, "failed to decode knowledge results", err)
	}
	return out, nil
}

// DecodeResults recovers typed results from a retrieval tool result map.
func DecodeResults(result map[string]any) ([]Result, error) {
	data, err := json.Marshal(result["results"])
	if err != nil {
		return nil, types.WrapError(types.KNOWLEDGE_QUERY_FAILED, "failed to encode retrieval results", err)
	}
	var results []Result
	if err := json.Unmarshal(data, &results); err != nil {
		return nil, types.WrapError(types.KNOWLEDGE_QUERY_FAILED, "failed to decode retrieval results", err)
	}
	return results, nil
}

// CitationFor builds the citation for a retrieved passage.
func CitationFor(p Passage) Citation {
	return Citation{
		Title:    p.Title,
		Source:   p.Source,
		Ref:      p.ID,
		ChunkIdx: p.ChunkIdx,
	}
}

// ToolCitation builds the citation for a claim backed by a tool call rather
// than a stored passage. Ref is "tool_name#call_id".
func ToolCitation(toolName string, callID types.ID) Citation {
	return Citation{
		Title:  toolName,
		Source: "tool",
		Ref:    fmt.Sprintf("%s#%s", toolName, callID),
	}
}
