package server

import (
	"context"

	"github.com/go-kratos/kratos/v2/errors"
	"github.com/go-kratos/kratos/v2/middleware"
	"golang.org/x/time/rate"
)

// ErrRateLimited 请求超出限流
var ErrRateLimited = errors.New(429, "RATE_LIMITED", "too many requests")

// RateLimit 令牌桶限流中间件，超出时直接拒绝
func RateLimit(limiter *rate.Limiter) middleware.Middleware {
	return func(handler middleware.Handler) middleware.Handler {
		return func(ctx context.Context, req interface{}) (interface{}, error) {
			if !limiter.Allow() {
				return nil, ErrRateLimited
			}
			return handler(ctx, req)
		}
	}
}
