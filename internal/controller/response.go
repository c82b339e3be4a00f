package controller

import (
	"encoding/json"
	"errors"
	"io"
	"math"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"go.uber.org/zap"

	"food_order_api/internal/middleware"
	"food_order_api/internal/policy"
	"food_order_api/internal/service"
	"food_order_api/internal/validation"
)

// ==================== 错误响应 ====================

// respondError 按错误类型输出统一的错误结构
// {"code": 400, "message": "...", "errors": {"field": ["..."]}}
func respondError(ctx *gin.Context, err error) {
	var verr *service.ValidationError
	var retry *service.RetryAfterError

	switch {
	case errors.As(err, &verr):
		ctx.JSON(http.StatusBadRequest, gin.H{
			"code":    http.StatusBadRequest,
			"message": "invalid input",
			"errors":  verr.Fields,
		})

	case errors.Is(err, policy.ErrAuthenticationRequired), errors.Is(err, policy.ErrForbidden):
		middleware.AbortWithPolicyError(ctx, err)

	case errors.Is(err, service.ErrNotFound):
		respondMessage(ctx, http.StatusNotFound, err.Error())

	case errors.Is(err, service.ErrInvalidCredentials), errors.Is(err, service.ErrInvalidToken):
		ctx.Header("WWW-Authenticate", `Bearer realm="api"`)
		respondMessage(ctx, http.StatusUnauthorized, err.Error())

	case errors.Is(err, service.ErrUserDisabled):
		respondMessage(ctx, http.StatusForbidden, err.Error())

	case errors.As(err, &retry):
		ctx.Header("Retry-After", strconv.Itoa(int(math.Ceil(retry.RetryAfter.Seconds()))))
		respondMessage(ctx, http.StatusTooManyRequests, service.ErrTooManyAttempts.Error())

	default:
		zap.L().Error("request failed",
			zap.String("request_id", middleware.GetRequestID(ctx)),
			zap.String("path", ctx.FullPath()),
			zap.Error(err),
		)
		respondMessage(ctx, http.StatusInternalServerError, "internal server error")
	}
}

func respondMessage(ctx *gin.Context, status int, message string) {
	ctx.JSON(status, gin.H{
		"code":    status,
		"message": message,
	})
}

// ==================== 请求解析 ====================

// bindJSON 解析请求体，失败时已写出 400
// 空请求体按空对象处理，交给校验规则判断必填字段
func bindJSON(ctx *gin.Context, obj interface{}) bool {
	err := ctx.ShouldBindJSON(obj)
	if errors.Is(err, io.EOF) {
		err = binding.Validator.ValidateStruct(obj)
	}
	if err == nil {
		return true
	}
	respondError(ctx, bindingError(err))
	return false
}

func bindingError(err error) error {
	if fields, ok := validation.Translate(err); ok {
		return service.NewValidationError(fields)
	}

	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) && typeErr.Field != "" {
		return service.FieldError(typeErr.Field, "Incorrect type. Expected "+typeErr.Type.String()+".")
	}

	return service.FieldError("non_field_errors", "JSON parse error.")
}

// parseID 解析路径中的 id，非法 id 按不存在处理
func parseID(ctx *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(ctx.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		respondMessage(ctx, http.StatusNotFound, "not found")
		return 0, false
	}
	return id, true
}
