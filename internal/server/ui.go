package server

import (
	"embed"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

//go:embed web/index.html
var webFS embed.FS

func (s *Server) Index(c *gin.Context) {
	page, err := webFS.ReadFile("web/index.html")
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.Data(http.StatusOK, "text/html; charset=utf-8", page)
}

// NoRoute keeps unknown API paths as JSON 404s and sends everything else to the client page.
func (s *Server) NoRoute(c *gin.Context) {
	if strings.HasPrefix(c.Request.URL.Path, "/api/") || c.Request.Method != http.MethodGet {
		AbortWithError(c, ErrNotFound)
		return
	}
	s.Index(c)
}
