// Copyright © 2018 One Concern

package cmd

import (
	"context"
	"os"
	"os/signal"

	"github.com/oneconcern/gitfat/pkg/config"
	"github.com/oneconcern/gitfat/pkg/core"
	"github.com/oneconcern/gitfat/pkg/dlogger"
	"github.com/oneconcern/gitfat/pkg/errors"
	"github.com/oneconcern/gitfat/pkg/remote"
	"github.com/oneconcern/gitfat/pkg/vcs/gogit"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

type remoteMode uint8

const (
	withoutRemote remoteMode = iota
	withRemote
	withOptionalRemote
)

// cliEnv gathers what a command needs to run
type cliEnv struct {
	logger *zap.Logger
	repo   *gogit.Repository
	engine *core.Engine
}

func newLogger() (*zap.Logger, error) {
	return dlogger.GetLogger(viper.GetString(logLevelFlag))
}

// newCliEnv opens the repository and, as requested, the fat stores described by its configuration
func newCliEnv(mode remoteMode) (*cliEnv, error) {
	logger, err := newLogger()
	if err != nil {
		return nil, err
	}
	repo, err := gogit.Open(viper.GetString(repoFlag), gogit.Logger(logger))
	if err != nil {
		return nil, err
	}

	opts := []core.Option{
		core.Logger(logger),
		core.DryRun(viper.GetBool(dryRunFlag)),
		core.Concurrency(viper.GetInt(concurrencyFlag)),
	}
	if mode != withoutRemote {
		primary, publish, err := openStores(repo.Root(), logger)
		switch {
		case err == nil:
			opts = append(opts, core.Remote(primary), core.PublishStore(publish))
		case mode == withOptionalRemote && errors.Is(err, config.ErrConfigMissing):
			logger.Debug("no fat store configured", zap.Error(err))
		default:
			return nil, err
		}
	}

	return &cliEnv{
		logger: logger,
		repo:   repo,
		engine: core.New(repo, opts...),
	}, nil
}

func openStores(root string, logger *zap.Logger) (*remote.Store, *remote.Store, error) {
	var (
		cfg config.Config
		err error
	)
	if path := viper.GetString(configFlag); path != "" {
		cfg, err = config.Load(path)
	} else {
		cfg, err = config.LoadFromRoot(root)
	}
	if err != nil {
		return nil, nil, err
	}
	if len(cfg.Undecoded) > 0 {
		logger.Warn("ignoring unknown fat config keys", zap.Strings("keys", cfg.Undecoded))
	}
	logger.Debug("fat store configured", zap.String("backend", cfg.Backend), zap.Bool("publish", cfg.Publish != nil))
	return remote.Open(cfg, root, remote.WithLogger(logger))
}

// commandContext is cancelled on interrupt
func commandContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt)
}
