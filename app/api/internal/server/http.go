package server

import (
	"context"
	stderrors "errors"
	"io"
	nethttp "net/http"
	"strings"
	"time"

	"github.com/go-kratos/kratos/v2/errors"
	"github.com/go-kratos/kratos/v2/log"
	"github.com/go-kratos/kratos/v2/middleware/recovery"
	"github.com/go-kratos/kratos/v2/transport/http"

	"github.com/iWorld-y/truth_radar/app/api/internal/biz"
	"github.com/iWorld-y/truth_radar/app/api/internal/conf"
	"github.com/iWorld-y/truth_radar/app/api/internal/service"
	"github.com/iWorld-y/truth_radar/app/truth_radar/pkg/engine"
)

func NewHTTPServer(c *conf.Server, s *service.RadarService, logger log.Logger) *http.Server {
	var opts = []http.ServerOption{
		http.Middleware(
			recovery.Recovery(),
		),
		http.Filter(AuthFilter(s.VerifyToken)),
	}
	// kratos 默认 1s 超时，不够跑完一次深度分析
	timeout := 60 * time.Second
	if c != nil && c.Http != nil {
		if c.Http.Addr != "" {
			opts = append(opts, http.Address(c.Http.Addr))
		}
		if c.Http.Timeout != "" {
			if d, err := time.ParseDuration(c.Http.Timeout); err == nil {
				timeout = d
			}
		}
	}
	opts = append(opts, http.Timeout(timeout))

	srv := http.NewServer(opts...)
	registerRoutes(srv, s)
	return srv
}

func registerRoutes(srv *http.Server, s *service.RadarService) {
	r := srv.Route("/api/v1")

	r.GET("/health", handle("Health", noBind, s.Health))
	r.POST("/auth/login", handle("Login", bindBody, s.Login))

	r.POST("/fact-check", handle("Analyze", bindBody, s.Analyze))
	r.POST("/fact-check/batch", handle("AnalyzeBatch", bindBody, s.AnalyzeBatch))
	r.GET("/fact-check/quick-test", handle("QuickTest", noBind, s.QuickTest))
	r.GET("/fact-check/stats", handle("Stats", noBind, s.Stats))

	r.POST("/upload", uploadHandler(s))
	r.GET("/upload/formats", handle("UploadFormats", noBind, s.UploadFormats))

	r.POST("/report", handle("SubmitReport", bindBody, s.SubmitReport))
	r.GET("/report/categories", handle("ReportCategories", noBind, s.ReportCategories))
	r.GET("/report/{id}/status", handle("ReportStatus", bindVars, s.ReportStatus))

	// stats 必须先于 {id} 注册
	r.GET("/archive", handle("ListArchive", bindQuery, s.ListArchive))
	r.GET("/archive/stats", handle("Stats", noBind, s.Stats))
	r.GET("/archive/{id}", handle("GetArchive", bindVars, s.GetArchive))
}

type binder func(ctx http.Context, v any) error

func noBind(http.Context, any) error { return nil }
func bindBody(ctx http.Context, v any) error { return ctx.Bind(v) }
func bindQuery(ctx http.Context, v any) error { return ctx.BindQuery(v) }
func bindVars(ctx http.Context, v any) error { return ctx.BindVars(v) }

// handle 把 service 方法包装成经过中间件链的路由处理函数
func handle[Req, Reply any](op string, bind binder, fn func(context.Context, *Req) (Reply, error)) http.HandlerFunc {
	return func(ctx http.Context) error {
		var in Req
		if err := bind(ctx, &in); err != nil {
			return errors.BadRequest("INVALID_REQUEST", err.Error())
		}
		http.SetOperation(ctx, op)
		h := ctx.Middleware(func(ctx context.Context, req any) (any, error) {
			return fn(ctx, req.(*Req))
		})
		out, err := h(ctx, &in)
		if err != nil {
			return err
		}
		return ctx.Result(200, out)
	}
}

// uploadHandler 处理 multipart 图片上传，字段名为 file
func uploadHandler(s *service.RadarService) http.HandlerFunc {
	return func(ctx http.Context) error {
		req := ctx.Request()
		req.Body = nethttp.MaxBytesReader(ctx.Response(), req.Body, engine.MaxImageSize+1<<20)
		file, header, err := req.FormFile("file")
		if err != nil {
			var tooLarge *nethttp.MaxBytesError
			if stderrors.As(err, &tooLarge) {
				return errors.New(413, "FILE_TOO_LARGE", "File too large. Maximum size is 10MB")
			}
			return errors.BadRequest("MISSING_FILE", `multipart field "file" is required`)
		}
		defer file.Close()

		// 多读一个字节，交给引擎判断是否超限
		data, err := io.ReadAll(io.LimitReader(file, engine.MaxImageSize+1))
		if err != nil {
			return errors.BadRequest("READ_FAILED", err.Error())
		}

		http.SetOperation(ctx, "UploadImage")
		h := ctx.Middleware(func(ctx context.Context, _ any) (any, error) {
			return s.UploadImage(ctx, data, header.Filename)
		})
		out, err := h(ctx, nil)
		if err != nil {
			return err
		}
		return ctx.Result(200, out)
	}
}

// AuthFilter 校验 Bearer 令牌，合法时把身份写入请求 context，无令牌的请求按公众用户放行
func AuthFilter(verify func(string) (*biz.Claims, error)) http.FilterFunc {
	return func(next nethttp.Handler) nethttp.Handler {
		return nethttp.HandlerFunc(func(w nethttp.ResponseWriter, r *nethttp.Request) {
			raw := r.Header.Get("Authorization")
			if raw == "" {
				next.ServeHTTP(w, r)
				return
			}
			token, ok := strings.CutPrefix(raw, "Bearer ")
			if !ok {
				http.DefaultErrorEncoder(w, r, errors.Unauthorized("INVALID_TOKEN", "authorization must be a Bearer token"))
				return
			}
			claims, err := verify(strings.TrimSpace(token))
			if err != nil {
				http.DefaultErrorEncoder(w, r, err)
				return
			}
			next.ServeHTTP(w, r.WithContext(biz.NewAuthContext(r.Context(), claims)))
		})
	}
}
