// Package ginx gin 统一响应：{"meta":{code,message,details},"data":...}
package ginx

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"rbx/logicore/pkg/errorutil"
)

// CodeProcessing Smart Wait 超时，结果需轮询
const CodeProcessing = 3001

// Response 统一响应结构
type Response struct {
	Meta Meta        `json:"meta"`
	Data interface{} `json:"data,omitempty"`
}

// Meta 元数据；Code 为 HTTP 状态码或业务码（3001）
type Meta struct {
	Code    int           `json:"code" example:"200"`
	Message string        `json:"message" example:"OK"`
	Details []ErrorDetail `json:"details,omitempty"`
}

// ErrorDetail 字段级错误
type ErrorDetail struct {
	Path string `json:"path" example:"weight_kg"`
	Info string `json:"info" example:"weight_kg is required"`
}

// ProcessingData Smart Wait 超时返回的数据
type ProcessingData struct {
	QuoteID string `json:"quote_id" example:"4243530001000"`
	PollURL string `json:"poll_url" example:"/api/v1/quotes/4243530001000"`
}

// kindStatus 错误分类到 HTTP 状态码；未列出的按 500
var kindStatus = map[errorutil.Kind]int{
	errorutil.KindInvalidInput: http.StatusBadRequest,
	errorutil.KindUpstream:     http.StatusBadGateway,
}

func write(c *gin.Context, status int, meta Meta, data interface{}) {
	c.JSON(status, Response{Meta: meta, Data: data})
}

// Success 200
func Success(c *gin.Context, data interface{}) {
	write(c, http.StatusOK, Meta{Code: http.StatusOK, Message: "OK"}, data)
}

// Processing Smart Wait 超时：HTTP 200，meta.code 3001，附轮询地址
func Processing(c *gin.Context, quoteID string, pollURL string) {
	write(c, http.StatusOK,
		Meta{Code: CodeProcessing, Message: "Quote is being computed, please poll for results"},
		ProcessingData{QuoteID: quoteID, PollURL: pollURL})
}

// Error 错误响应
func Error(c *gin.Context, status int, message string, details ...ErrorDetail) {
	write(c, status, Meta{Code: status, Message: message, Details: details}, nil)
}

// BadRequest 400
func BadRequest(c *gin.Context, message string) {
	Error(c, http.StatusBadRequest, message)
}

// NotFound 404
func NotFound(c *gin.Context, message string) {
	Error(c, http.StatusNotFound, message)
}

// InternalError 500
func InternalError(c *gin.Context, message string) {
	Error(c, http.StatusInternalServerError, message)
}

// FromError 按 errorutil 分类输出，binding 校验错误输出字段详情
func FromError(c *gin.Context, err error) {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		BadRequestWithValidation(c, verrs)
		return
	}

	e := errorutil.Wrap(err)
	status, ok := kindStatus[e.Kind]
	if !ok {
		status = http.StatusInternalServerError
	}

	switch {
	case e.Kind == errorutil.KindInvalidInput && e.Field != "":
		Error(c, status, e.Error(), ErrorDetail{Path: e.Field, Info: e.Message})
	case e.Kind == errorutil.KindInvalidInput:
		Error(c, status, e.Error())
	default:
		Error(c, status, e.Message)
	}
}

// BadRequestWithValidation 400，每个校验失败的字段一条详情
func BadRequestWithValidation(c *gin.Context, err error) {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		BadRequest(c, err.Error())
		return
	}

	details := make([]ErrorDetail, 0, len(verrs))
	for _, fe := range verrs {
		details = append(details, ErrorDetail{Path: fe.Field(), Info: validationMessage(fe)})
	}
	Error(c, http.StatusBadRequest, "Validation failed", details...)
}

func validationMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fe.Field() + " is required"
	case "len":
		return fe.Field() + " must have length " + fe.Param()
	case "gt":
		return fe.Field() + " must be greater than " + fe.Param()
	case "min", "gte":
		return fe.Field() + " must be at least " + fe.Param()
	case "max", "lte":
		return fe.Field() + " must be at most " + fe.Param()
	default:
		return fe.Field() + " is invalid"
	}
}
