package basic

import (
	"context"
	"encoding/json"
	"io"
	"net"
	"net/http"

	"conference/errors"
	"conference/httpx"
)

// maxBodyBytes 请求体上限
const maxBodyBytes = 1 << 20

// HttpContext 基于 net/http 的 httpx.IHttpContext
type HttpContext struct {
	request *http.Request
	writer  http.ResponseWriter
	params  map[string]string
	values  map[string]any
	status  int
	aborted bool
}

// NewHttpContext 创建请求上下文
func NewHttpContext(w http.ResponseWriter, r *http.Request) *HttpContext {
	return &HttpContext{
		request: r,
		writer:  w,
		params:  make(map[string]string),
		values:  make(map[string]any),
	}
}

func (c *HttpContext) GetMethod() string           { return c.request.Method }
func (c *HttpContext) GetPath() string             { return c.request.URL.Path }
func (c *HttpContext) GetQuery(key string) string  { return c.request.URL.Query().Get(key) }
func (c *HttpContext) GetParam(key string) string  { return c.params[key] }
func (c *HttpContext) GetHeader(key string) string { return c.request.Header.Get(key) }
func (c *HttpContext) GetRequest() *http.Request   { return c.request }
func (c *HttpContext) SetParam(key, value string)  { c.params[key] = value }

// ClientIP 取 RemoteAddr 的主机部分
func (c *HttpContext) ClientIP() string {
	host, _, err := net.SplitHostPort(c.request.RemoteAddr)
	if err != nil {
		return c.request.RemoteAddr
	}
	return host
}

// BindJSON 空请求体视为 {}
func (c *HttpContext) BindJSON(obj any) error {
	body, err := io.ReadAll(io.LimitReader(c.request.Body, maxBodyBytes))
	if err != nil {
		return errors.WrapError(err, errors.ErrCodeInvalidInput, "failed to read request body")
	}
	if len(body) == 0 {
		return nil
	}
	if err := json.Unmarshal(body, obj); err != nil {
		return errors.WrapError(err, errors.ErrCodeInvalidInput, "failed to parse JSON")
	}
	return nil
}

func (c *HttpContext) SetHeader(key, value string) { c.writer.Header().Set(key, value) }
func (c *HttpContext) Status() int                 { return c.status }

func (c *HttpContext) JSON(code int, obj any) error {
	data, err := json.Marshal(obj)
	if err != nil {
		return errors.WrapError(err, errors.ErrCodeInternal, "failed to serialize JSON")
	}
	return c.write(code, "application/json", data)
}

func (c *HttpContext) String(code int, text string) error {
	return c.write(code, "text/plain; charset=utf-8", []byte(text))
}

func (c *HttpContext) write(code int, contentType string, data []byte) error {
	c.SetHeader("Content-Type", contentType)
	c.status = code
	c.writer.WriteHeader(code)
	_, err := c.writer.Write(data)
	httpx.MarkWritten(c)
	return err
}

func (c *HttpContext) Set(key string, value any) { c.values[key] = value }
func (c *HttpContext) Get(key string) (any, bool) {
	v, ok := c.values[key]
	return v, ok
}

func (c *HttpContext) Abort()          { c.aborted = true }
func (c *HttpContext) IsAborted() bool { return c.aborted }

func (c *HttpContext) Context() context.Context { return c.request.Context() }
func (c *HttpContext) SetContext(ctx context.Context) {
	c.request = c.request.WithContext(ctx)
}
