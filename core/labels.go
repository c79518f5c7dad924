package core

// RouteLabel is the router's classification of a question. It drives exactly
// one branch decision and is never persisted.
type RouteLabel string

const (
	// RouteVectorStore sends the question through retrieval + grading.
	RouteVectorStore RouteLabel = "vector_store"
	// RouteWebSearch sends the question straight to the web search fallback.
	RouteWebSearch RouteLabel = "web_search"
	// RouteDirectAnswer answers from the model's own knowledge.
	RouteDirectAnswer RouteLabel = "direct_answer"
)

// ValidRouteLabel reports whether l is one of the three known routes.
func ValidRouteLabel(l RouteLabel) bool {
	switch l {
	case RouteVectorStore, RouteWebSearch, RouteDirectAnswer:
		return true
	}
	return false
}
