package handlers

import (
	"accessnav/internal/services"
	"accessnav/pkg/pagination"
	"accessnav/pkg/response"

	"github.com/gin-gonic/gin"
	"gorm.io/datatypes"
)

type RouteRequest struct {
	Name          string         `json:"name" binding:"required"`
	Description   string         `json:"description"`
	City          string         `json:"city"`
	Difficulty    string         `json:"difficulty"`
	Wheelchair    bool           `json:"wheelchair"`
	DistanceM     int            `json:"distance_m"`
	Waypoints     datatypes.JSON `json:"waypoints"`
	Accessibility datatypes.JSON `json:"accessibility"`
}

type RouteHandler struct {
	service *services.RouteService
}

func NewRouteHandler(service *services.RouteService) *RouteHandler {
	return &RouteHandler{service: service}
}

// Create 创建线路
func (h *RouteHandler) Create(c *gin.Context) {
	var req RouteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "参数错误")
		return
	}

	route, err := h.service.Create(services.CreateRouteParams{
		Name:          req.Name,
		Description:   req.Description,
		City:          req.City,
		Difficulty:    req.Difficulty,
		Wheelchair:    req.Wheelchair,
		DistanceM:     req.DistanceM,
		Waypoints:     req.Waypoints,
		Accessibility: req.Accessibility,
	}, c.GetUint("user_id"))
	if err != nil {
		response.HandleError(c, err)
		return
	}

	response.Success(c, route)
}

// GetAll 分页获取线路列表
func (h *RouteHandler) GetAll(c *gin.Context) {
	pageParams := pagination.ParsePageParams(c)
	city := c.Query("city")
	difficulty := c.Query("difficulty")

	var wheelchair *bool
	if s := c.Query("wheelchair"); s != "" {
		w := s == "true"
		wheelchair = &w
	}

	routes, total, err := h.service.GetWithPage(city, difficulty, wheelchair, pageParams.Page, pageParams.PageSize)
	if err != nil {
		response.ServerError(c, "查询失败")
		return
	}

	pageInfo := pagination.NewPageInfo(pageParams.Page, pageParams.PageSize, total)
	response.SuccessWithPage(c, routes, pageInfo)
}

// GetByID 获取线路详情
func (h *RouteHandler) GetByID(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	route, err := h.service.GetByID(id)
	if err != nil {
		response.HandleError(c, err)
		return
	}

	response.Success(c, route)
}

// Update 更新线路
func (h *RouteHandler) Update(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	var req RouteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "参数错误")
		return
	}

	route, err := h.service.Update(id, services.CreateRouteParams{
		Name:          req.Name,
		Description:   req.Description,
		City:          req.City,
		Difficulty:    req.Difficulty,
		Wheelchair:    req.Wheelchair,
		DistanceM:     req.DistanceM,
		Waypoints:     req.Waypoints,
		Accessibility: req.Accessibility,
	})
	if err != nil {
		response.HandleError(c, err)
		return
	}

	response.Success(c, route)
}

// Publish 发布线路
func (h *RouteHandler) Publish(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	route, err := h.service.Publish(id)
	if err != nil {
		response.HandleError(c, err)
		return
	}

	response.Success(c, route)
}

// Delete 删除线路
func (h *RouteHandler) Delete(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	if err := h.service.Delete(id); err != nil {
		response.HandleError(c, err)
		return
	}

	response.SuccessWithMessage(c, "删除成功", nil)
}
