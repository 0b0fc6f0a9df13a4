package response

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Resp 统一信封：成功 code=0；失败 code 与 HTTP 状态码一致
type Resp struct {
	Code int    `json:"code"`
	Msg  string `json:"msg"`
	Data any    `json:"data"`
}

// New data 为 nil 时输出 {}，不输出 null
func New(code int, msg string, data any) Resp {
	if data == nil {
		data = gin.H{}
	}
	return Resp{Code: code, Msg: msg, Data: data}
}

func OK(data any) Resp { return New(CodeOK, CodeMsgMap[CodeOK], data) }

// Error msg 为空时取默认文案；未登记的码退回标准状态文本
func Error(code int, msg string) Resp {
	if msg == "" {
		msg = CodeMsgMap[code]
	}
	if msg == "" {
		msg = http.StatusText(code)
	}
	return New(code, msg, nil)
}

// Status 失败码即 HTTP 状态码；0 视为 200
func Status(code int) int {
	if code == CodeOK {
		return http.StatusOK
	}
	return code
}

// Send 成功响应；status 为 0 时按 200
func Send(c *gin.Context, status int, data any) {
	if status == 0 {
		status = http.StatusOK
	}
	c.JSON(status, OK(data))
}

// Fail 写错误信封，不中断后续 handler
func Fail(c *gin.Context, code int, msg string) {
	c.JSON(Status(code), Error(code, msg))
}

// Abort 中间件里中断请求并写错误信封
func Abort(c *gin.Context, code int, msg string) {
	c.AbortWithStatusJSON(Status(code), Error(code, msg))
}
