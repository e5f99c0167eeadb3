package handlers

import (
	"codequest/internal/common"
	"net/http"

	"github.com/gin-gonic/gin"
)

type HackathonHandler struct {
	catalog CatalogReader
}

func NewHackathonHandler(catalog CatalogReader) *HackathonHandler {
	return &HackathonHandler{catalog: catalog}
}

func (h *HackathonHandler) GetHackathons(c *gin.Context) {
	hackathons, err := h.catalog.GetHackathons(c.Request.Context())
	if err != nil {
		common.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, hackathons)
}

func (h *HackathonHandler) RegisterRoutes(router *gin.RouterGroup) {
	router.GET("/hackathons", h.GetHackathons)
}
