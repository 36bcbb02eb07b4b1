package main

import (
	"io"

	"github.com/go-kratos/kratos/v2"
	"github.com/go-kratos/kratos/v2/log"
	"github.com/go-kratos/kratos/v2/transport/http"

	"github.com/iWorld-y/risk_radar/app/risk_radar/internal/biz"
	"github.com/iWorld-y/risk_radar/app/risk_radar/internal/conf"
	"github.com/iWorld-y/risk_radar/app/risk_radar/internal/data"
	"github.com/iWorld-y/risk_radar/app/risk_radar/internal/server"
	"github.com/iWorld-y/risk_radar/app/risk_radar/internal/service"
	"github.com/iWorld-y/risk_radar/app/risk_radar/pkg/gdelt"
	"github.com/iWorld-y/risk_radar/app/risk_radar/pkg/logger"
	"github.com/iWorld-y/risk_radar/app/risk_radar/pkg/scoring"
)

// components 组装好的各层实例
type components struct {
	logger  log.Logger
	service *service.ScanService
}

// newComponents 按配置组装 数据源 -> 评分 -> 业务 -> 缓存 -> 服务
func newComponents(bc *conf.Bootstrap, console io.Writer) (*components, func(), error) {
	if err := logger.InitLogger(bc.Log.Level, bc.Log.File, console); err != nil {
		return nil, nil, err
	}
	l := log.With(logger.NewKratosLogger(logger.Log),
		logger.CallerKey, log.DefaultCaller,
		"service.id", id,
		"service.name", Name,
		"service.version", Version,
	)
	helper := log.NewHelper(l)

	var (
		tables *scoring.Tables
		err    error
	)
	if bc.Scoring.TablesFile != "" {
		tables, err = scoring.LoadTables(bc.Scoring.TablesFile)
		helper.Infof("loading scoring tables from %s", bc.Scoring.TablesFile)
	} else {
		tables, err = scoring.DefaultTables()
	}
	if err != nil {
		return nil, nil, err
	}
	engine := scoring.NewEngine(tables, scoring.NewVaderSentiment())

	var opts []gdelt.Option
	if bc.Gdelt.AugmentQuery {
		opts = append(opts, gdelt.WithRiskTerms(tables.Terms()))
	}
	source := gdelt.NewClient(bc.Gdelt.BaseUrl, bc.Gdelt.TimeoutDuration(), opts...)

	uc := biz.NewScanUseCase(source, engine, bc.Gdelt, l)

	cache, cleanup, err := data.NewCache(bc.Cache, l)
	if err != nil {
		return nil, nil, err
	}

	return &components{
		logger:  l,
		service: service.NewScanService(uc, cache, bc.Cache, l),
	}, cleanup, nil
}

func initApp(bc *conf.Bootstrap, console io.Writer) (*kratos.App, func(), error) {
	c, cleanup, err := newComponents(bc, console)
	if err != nil {
		return nil, nil, err
	}
	hs := server.NewHTTPServer(bc.Server, c.service, c.logger)
	return newApp(c.logger, hs), cleanup, nil
}

func newApp(logger log.Logger, hs *http.Server) *kratos.App {
	return kratos.New(
		kratos.ID(id),
		kratos.Name(Name),
		kratos.Version(Version),
		kratos.Metadata(map[string]string{}),
		kratos.Logger(logger),
		kratos.Server(hs),
	)
}
