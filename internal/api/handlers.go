package api

import (
	"errors"
	"net/http"

	"github.com/annel0/voxel-sandbox/internal/interaction"
	"github.com/annel0/voxel-sandbox/internal/world/block"
	"github.com/gin-gonic/gin"
)

func (rs *RestServer) handleVariants(c *gin.Context) {
	c.JSON(http.StatusOK, GenericResponse{
		Success: true,
		Message: "Каталог вариантов",
		Data:    rs.session.Variants(),
	})
}

func (rs *RestServer) handleSelectVariant(c *gin.Context) {
	var req SelectVariantRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	if err := rs.session.SelectVariant(block.VariantID(req.ID)); err != nil {
		variantError(c, err)
		return
	}
	c.JSON(http.StatusOK, GenericResponse{Success: true, Message: "Вариант выбран", Data: req})
}

// handleVariantReady рендер сообщает, что модель варианта загружена
func (rs *RestServer) handleVariantReady(c *gin.Context) {
	id := block.VariantID(c.Param("id"))
	if err := rs.session.MarkVariantReady(id); err != nil {
		variantError(c, err)
		return
	}
	c.JSON(http.StatusOK, GenericResponse{Success: true, Message: "Модель варианта загружена"})
}

func (rs *RestServer) handleBlocks(c *gin.Context) {
	blocks := rs.session.Blocks()
	c.JSON(http.StatusOK, GenericResponse{
		Success: true,
		Message: "Карта занятости",
		Data:    BlocksResponse{Blocks: blocks, Total: len(blocks)},
	})
}

func (rs *RestServer) handlePreview(c *gin.Context) {
	c.JSON(http.StatusOK, rs.session.Preview())
}

func (rs *RestServer) handlePointerMove(c *gin.Context) {
	var ev interaction.PointerEvent
	if err := c.ShouldBindJSON(&ev); err != nil {
		badRequest(c, err)
		return
	}
	c.JSON(http.StatusOK, rs.session.Move(ev))
}

func (rs *RestServer) handlePointerDown(c *gin.Context) {
	var ev interaction.PointerEvent
	if err := c.ShouldBindJSON(&ev); err != nil {
		badRequest(c, err)
		return
	}
	c.JSON(http.StatusOK, NewResultResponse(rs.session.Down(ev), rs.session.Preview()))
}

func (rs *RestServer) handlePointerUp(c *gin.Context) {
	var ev interaction.PointerEvent
	if err := c.ShouldBindJSON(&ev); err != nil {
		badRequest(c, err)
		return
	}
	c.JSON(http.StatusOK, NewResultResponse(rs.session.Up(ev), rs.session.Preview()))
}

// handlePointerClick нажатие и отпускание одним запросом
func (rs *RestServer) handlePointerClick(c *gin.Context) {
	var req ClickRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	down, up := req.Events()
	c.JSON(http.StatusOK, NewResultResponse(rs.session.Click(down, up), rs.session.Preview()))
}

func (rs *RestServer) handleReset(c *gin.Context) {
	c.JSON(http.StatusOK, NewResultResponse(rs.session.Reset(), rs.session.Preview()))
}

func badRequest(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, GenericResponse{
		Success: false,
		Message: "Неверный формат запроса: " + err.Error(),
	})
}

func variantError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	if errors.Is(err, block.ErrUnknownVariant) {
		status = http.StatusNotFound
	}
	c.JSON(status, GenericResponse{Success: false, Message: err.Error()})
}
