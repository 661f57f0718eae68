package requests

import "github.com/gin-gonic/gin"

// QueryRequest carries one question. It binds from query parameters on GET
// and from the form or JSON body on POST.
type QueryRequest struct {
	OwnerID        string `form:"ownerId" json:"ownerId"`
	ConversationID string `form:"conversationId" json:"conversationId"`
	Title          string `form:"title" json:"title"`
	QueryText      string `form:"queryText" json:"queryText"`
	Stream         *bool  `form:"stream" json:"stream"`
}

// Bind populates the request from the incoming HTTP request.
func (r *QueryRequest) Bind(c *gin.Context) error {
	if c.Request.Method == "GET" {
		return c.ShouldBindQuery(r)
	}
	return c.ShouldBind(r)
}

// WantsStream reports whether the client asked for SSE delivery. Streaming is
// the default.
func (r *QueryRequest) WantsStream() bool {
	return r.Stream == nil || *r.Stream
}
