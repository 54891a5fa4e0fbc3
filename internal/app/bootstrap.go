package app

import (
	"errors"
	"fmt"

	"github.com/threadhouse/internal/config"
	"github.com/threadhouse/internal/logger"
	"github.com/threadhouse/internal/provider"
	"github.com/threadhouse/internal/router"
	"github.com/threadhouse/internal/worker"
)

// BuildRunner 按启动模式组装服务
func BuildRunner(cfg *config.Config, mode string) (*Runner, error) {
	if cfg == nil {
		return nil, errors.New("config is nil")
	}
	if !ValidMode(mode) {
		return nil, fmt.Errorf("unknown mode: %s", mode)
	}
	container, err := provider.NewContainer(cfg)
	if err != nil {
		return nil, err
	}
	return buildRunner(cfg, mode, container)
}

func buildRunner(cfg *config.Config, mode string, container *provider.Container) (*Runner, error) {
	var services []Service

	if mode == ModeAll || mode == ModeAPI {
		engine := router.SetupRouter(cfg, container)
		services = append(services, NewHTTPService(cfg.Server, engine))
	}

	// all 模式下队列未启用时仅启动 API，通知与超时取消随之停用
	if mode == ModeAll || mode == ModeWorker {
		consumer := worker.NewConsumer(container)
		workerService, err := worker.NewService(&cfg.Queue, consumer)
		switch {
		case err == nil:
			services = append(services, workerService)
		case mode == ModeWorker:
			return nil, err
		default:
			logger.Warnw("app_worker_skipped", "error", err)
		}
	}

	if len(services) == 0 {
		return nil, errors.New("no services initialized (check mode and config)")
	}

	runner := NewRunner(services...)
	runner.OnClose(container.Close)
	return runner, nil
}

// Run 应用启动入口
func Run(opts Options) error {
	opts = normalizeOptions(opts)
	if opts.Config == nil {
		return errors.New("config is nil")
	}

	runner, err := BuildRunner(opts.Config, opts.Mode)
	if err != nil {
		return err
	}

	addr := opts.Config.Server.Host + ":" + opts.Config.Server.Port
	opts.Logger.Infow("app_start", "addr", addr, "mode", opts.Mode, "payment_provider", opts.Config.Payment.Provider)
	return RunWithOptions(runner, opts)
}
