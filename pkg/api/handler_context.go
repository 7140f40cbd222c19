package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// userContextHandler handles GET /session/context/:user_id. It always
// returns 200 with an empty payload when the user has no session; only an
// infra failure (DB unreachable) produces a 500.
func (s *Server) userContextHandler(c *gin.Context) {
	distinctID := c.Param("user_id")
	if distinctID == "" {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "user_id is required"})
		return
	}

	userContext, err := s.context.GetUserContext(c.Request.Context(), distinctID)
	if err != nil {
		writeServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, userContext)
}
