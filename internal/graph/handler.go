package graph

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	graphql "github.com/graph-gophers/graphql-go"
	"github.com/joshua-takyi/realtorhub/internal/httperr"
	"github.com/joshua-takyi/realtorhub/internal/models"
)

type request struct {
	Query         string                 `json:"query"`
	OperationName string                 `json:"operationName"`
	Variables     map[string]interface{} `json:"variables"`
}

// Handler executes GraphQL requests. Resolver errors carry their kind in
// extensions.code and unclassified failures are reported without detail.
type Handler struct {
	schema *graphql.Schema
	logger *slog.Logger
}

func NewHandler(schema *graphql.Schema, logger *slog.Logger) *Handler {
	return &Handler{schema: schema, logger: logger}
}

func (h *Handler) Serve(c *gin.Context) {
	var req request
	if err := json.NewDecoder(c.Request.Body).Decode(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse(string(httperr.InvalidInput), "request body must be a GraphQL JSON document"))
		return
	}

	resp := h.schema.Exec(c.Request.Context(), req.Query, req.OperationName, req.Variables)
	for _, e := range resp.Errors {
		if e.ResolverError == nil {
			continue
		}
		kind := httperr.KindOf(e.ResolverError)
		if kind == httperr.Internal {
			h.logger.Error("graphql resolver failed",
				"path", e.Path,
				"request_id", c.GetString("request_id"),
				"error", e.ResolverError,
			)
		}
		e.Message = httperr.Public(e.ResolverError)
		e.Extensions = map[string]interface{}{"code": string(kind)}
	}
	c.JSON(http.StatusOK, resp)
}
