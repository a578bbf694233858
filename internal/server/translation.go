package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	translationdomain "github.com/smallbiznis/anubad/internal/translation/domain"
)

type translateRequest struct {
	Text *string `json:"text"`
}

func (s *Server) Translate(c *gin.Context) {
	var req translateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) && typeErr.Field == "text" {
			AbortWithError(c, textRequiredError())
			return
		}
		AbortWithError(c, invalidRequestError())
		return
	}
	if req.Text == nil {
		AbortWithError(c, textRequiredError())
		return
	}

	resp, err := s.translationSvc.Translate(c.Request.Context(), translationdomain.TranslateRequest{
		Text: *req.Text,
	})
	if err != nil {
		if errors.Is(err, translationdomain.ErrInvalidText) {
			AbortWithError(c, err)
			return
		}
		AbortWithError(c, withPublicMessage(err, msgTranslateFailed))
		return
	}

	c.JSON(http.StatusOK, resp)
}

func (s *Server) ListTranslations(c *gin.Context) {
	items, err := s.translationSvc.List(c.Request.Context())
	if err != nil {
		AbortWithError(c, withPublicMessage(err, msgListFailed))
		return
	}
	if items == nil {
		items = []translationdomain.Translation{}
	}

	c.JSON(http.StatusOK, items)
}
