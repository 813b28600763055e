package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/LanceHuang1/course-web-app/internal/dto"
	"github.com/LanceHuang1/course-web-app/internal/service"
	"github.com/LanceHuang1/course-web-app/pkg/response"
)

// CourseHandler 课程模块 HTTP 处理器
type CourseHandler struct {
	courseSvc service.CourseService
}

// NewCourseHandler 创建 CourseHandler
func NewCourseHandler(courseSvc service.CourseService) *CourseHandler {
	return &CourseHandler{courseSvc: courseSvc}
}

// ListCourses 获取课程列表
// GET /api/v1/courses?from=&to=&course=
func (h *CourseHandler) ListCourses(c *gin.Context) {
	var req dto.CourseListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, response.CodeInvalidParams, "参数校验失败")
		return
	}

	courses, err := h.courseSvc.List(c.Request.Context(), &req)
	if err != nil {
		handleDomainError(c, err)
		return
	}

	response.OKList(c, courses, len(courses))
}

// GetCourse 获取课程详情
// GET /api/v1/courses/:id
func (h *CourseHandler) GetCourse(c *gin.Context) {
	id, ok := MustGetCourseID(c)
	if !ok {
		return
	}

	course, err := h.courseSvc.GetByID(c.Request.Context(), id)
	if err != nil {
		handleDomainError(c, err)
		return
	}

	response.OK(c, course)
}

// CreateCourse 新增课程
// POST /api/v1/courses
func (h *CourseHandler) CreateCourse(c *gin.Context) {
	var req dto.CreateCourseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, response.CodeInvalidParams, "参数校验失败")
		return
	}

	course, err := h.courseSvc.Create(c.Request.Context(), &req)
	if err != nil {
		handleDomainError(c, err)
		return
	}

	response.Created(c, course)
}

// UpdateCourse 编辑课程（整体替换）
// PUT /api/v1/courses/:id
func (h *CourseHandler) UpdateCourse(c *gin.Context) {
	id, ok := MustGetCourseID(c)
	if !ok {
		return
	}

	var req dto.UpdateCourseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, response.CodeInvalidParams, "参数校验失败")
		return
	}

	course, err := h.courseSvc.Update(c.Request.Context(), id, &req)
	if err != nil {
		handleDomainError(c, err)
		return
	}

	response.OK(c, course)
}

// RescheduleCourse 日历拖拽/缩放后更新起止时间
// PATCH /api/v1/courses/:id/time
func (h *CourseHandler) RescheduleCourse(c *gin.Context) {
	id, ok := MustGetCourseID(c)
	if !ok {
		return
	}

	var req dto.RescheduleCourseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, response.CodeInvalidParams, "参数校验失败")
		return
	}

	course, err := h.courseSvc.Reschedule(c.Request.Context(), id, &req)
	if err != nil {
		handleDomainError(c, err)
		return
	}

	response.OK(c, course)
}

// DeleteCourse 删除课程；ID 不存在时同样返回成功
// DELETE /api/v1/courses/:id
func (h *CourseHandler) DeleteCourse(c *gin.Context) {
	id, ok := MustGetCourseID(c)
	if !ok {
		return
	}

	if err := h.courseSvc.Delete(c.Request.Context(), id); err != nil {
		handleDomainError(c, err)
		return
	}

	response.OK(c, nil)
}

// CopyCourse 返回预填的复制表单，不修改数据
// GET /api/v1/courses/:id/copy
func (h *CourseHandler) CopyCourse(c *gin.Context) {
	id, ok := MustGetCourseID(c)
	if !ok {
		return
	}

	pending, err := h.courseSvc.PrepareCopy(c.Request.Context(), id)
	if err != nil {
		handleDomainError(c, err)
		return
	}

	response.OK(c, pending)
}

// RepeatCourse 按 RRULE 复制课程
// POST /api/v1/courses/:id/repeat
func (h *CourseHandler) RepeatCourse(c *gin.Context) {
	id, ok := MustGetCourseID(c)
	if !ok {
		return
	}

	var req dto.RepeatCourseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, response.CodeInvalidParams, "参数校验失败")
		return
	}

	result, err := h.courseSvc.Repeat(c.Request.Context(), id, &req)
	if err != nil {
		handleDomainError(c, err)
		return
	}

	response.Created(c, result)
}
