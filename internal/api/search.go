package api

import (
	"net/http" // HTTP status codes
	"strings"  // Query trimming

	"music_library/internal/service" // Search aggregator
	"music_library/internal/utils"   // Response envelope

	"github.com/gin-gonic/gin" // Gin web framework
)

// SearchHandler looks the query up in every category at once
func SearchHandler(search *service.SearchService) gin.HandlerFunc {
	return func(c *gin.Context) {
		res := search.Search(c.Request.Context(), strings.TrimSpace(c.Query("q")))
		utils.Success(c, http.StatusOK, res)
	}
}
