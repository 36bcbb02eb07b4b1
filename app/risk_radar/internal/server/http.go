package server

import (
	"context"
	"encoding/json"
	nethttp "net/http"

	"github.com/go-kratos/kratos/v2/errors"
	"github.com/go-kratos/kratos/v2/log"
	"github.com/go-kratos/kratos/v2/middleware"
	"github.com/go-kratos/kratos/v2/middleware/logging"
	"github.com/go-kratos/kratos/v2/middleware/recovery"
	"github.com/go-kratos/kratos/v2/transport/http"
	"golang.org/x/time/rate"

	"github.com/iWorld-y/risk_radar/app/risk_radar/internal/conf"
	"github.com/iWorld-y/risk_radar/app/risk_radar/internal/service"
)

// OperationScan 扫描接口的 operation 名
const OperationScan = "/risk_radar.v1.Scan/Scan"

func NewHTTPServer(c *conf.Server, s *service.ScanService, logger log.Logger) *http.Server {
	mws := []middleware.Middleware{
		recovery.Recovery(),
		logging.Server(logger),
	}
	if c.Http.RateLimit > 0 {
		burst := c.Http.Burst
		if burst < 1 {
			burst = 1
		}
		mws = append(mws, RateLimit(rate.NewLimiter(rate.Limit(c.Http.RateLimit), burst)))
	}

	var opts = []http.ServerOption{
		http.Middleware(mws...),
		http.ErrorEncoder(encodeError),
		http.Timeout(c.Http.TimeoutDuration()),
	}
	if c.Http.Addr != "" {
		opts = append(opts, http.Address(c.Http.Addr))
	}

	srv := http.NewServer(opts...)
	registerRoutes(srv, s)
	return srv
}

func registerRoutes(srv *http.Server, s *service.ScanService) {
	r := srv.Route("/")
	r.GET("/health", func(ctx http.Context) error {
		return ctx.JSON(nethttp.StatusOK, map[string]string{"status": "ok"})
	})
	r.GET("/api/v1/scan", func(ctx http.Context) error {
		in := &service.ScanRequest{
			Query:   ctx.Query().Get("query"),
			Company: ctx.Query().Get("company"),
		}
		http.SetOperation(ctx, OperationScan)
		h := ctx.Middleware(func(ctx context.Context, req interface{}) (interface{}, error) {
			return s.Scan(ctx, req.(*service.ScanRequest))
		})
		out, err := h(ctx, in)
		if err != nil {
			return err
		}
		return ctx.Blob(nethttp.StatusOK, "application/json", out.([]byte))
	})
}

// encodeError 错误响应统一为 {"error": message}
func encodeError(w nethttp.ResponseWriter, _ *nethttp.Request, err error) {
	se := errors.FromError(err)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(int(se.Code))
	_ = json.NewEncoder(w).Encode(map[string]string{"error": se.Message})
}
