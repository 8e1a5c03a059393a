package main

import (
	"catalog-service/app/server/apidocs"
	"catalog-service/app/server/auth"
	"catalog-service/app/server/config"
	"catalog-service/app/server/handlers"
	"catalog-service/app/server/hasher"
	"catalog-service/app/server/inits"
	"catalog-service/app/server/jwt"
	"catalog-service/app/server/store"
	"context"
	"errors"
	"fmt"
	"github.com/urfave/cli/v2"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
)

func main() {
	app := &cli.App{
		Name:  "catalog",
		Usage: "Catalog web API for users, items, brands and types",
		Commands: []*cli.Command{
			serveCmd(),
			migrateCmd(),
		},
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := app.RunContext(ctx, os.Args); err != nil {
		log.Fatal(err)
	}
}

// bootstrap 初始化配置、日志和数据库连接
func bootstrap() (*config.Config, *zap.Logger, *gorm.DB, error) {
	// 初始化配置
	cfg, err := inits.Config()
	if err != nil {
		return nil, nil, nil, fmt.Errorf("error loading config: %w", err)
	}

	// 初始化日志
	l, err := inits.Logger(!cfg.IsProd())
	if err != nil {
		return nil, nil, nil, fmt.Errorf("error initializing logger: %w", err)
	}
	l.Debug("logger initialized")

	if cfg.DevSecretInUse {
		l.Warn("JWT_SECRET is not set, using the development signing key")
	}

	// 初始化数据库连接
	db, err := inits.DB(cfg.DBDriver, cfg.DBConnectionString, !cfg.IsProd())
	if err != nil {
		return nil, nil, nil, fmt.Errorf("error initializing DB connection: %w", err)
	}

	return cfg, l, db, nil
}

func migrateCmd() *cli.Command {
	return &cli.Command{
		Name:  "migrate",
		Usage: "Create or update the database schema and exit",
		Action: func(ctx *cli.Context) error {
			_, l, db, err := bootstrap()
			if err != nil {
				return err
			}
			defer l.Sync()

			if err := inits.Migrate(db); err != nil {
				l.Error("error migrating database", zap.Error(err))
				return err
			}
			l.Info("database migrated")
			return nil
		},
	}
}

func serveCmd() *cli.Command {
	var listen string
	return &cli.Command{
		Name:  "serve",
		Usage: "Migrate the database and start the web API",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "listen",
				Usage:       "Address to listen on, overrides LISTEN",
				Destination: &listen,
			},
		},
		Action: func(ctx *cli.Context) error {
			cfg, l, db, err := bootstrap()
			if err != nil {
				return err
			}
			defer l.Sync()

			if err := inits.Migrate(db); err != nil {
				l.Error("error migrating database", zap.Error(err))
				return err
			}

			// 初始化密码哈希
			h, err := hasher.New(l, hasher.OptionsFromConfig(cfg))
			if err != nil {
				l.Error("error initializing hasher", zap.Error(err))
				return err
			}

			// 初始化 JWT
			j, err := jwt.New(cfg.SignatureSecretKey, cfg.TokenExpiry.Std())
			if err != nil {
				l.Error("error initializing JWT", zap.Error(err))
				return err
			}

			// 准备 handler app
			st := store.New(db)
			handlerApp := handlers.NewApp(l, st, auth.New(l, st, h, j), j)

			// 添加 API 文档
			var docsJSON []byte
			if cfg.DocsEnabled() {
				if docsJSON, err = apidocs.Document().MarshalJSON(); err != nil {
					l.Error("error initializing api docs", zap.Error(err))
					docsJSON = nil
				}
			}

			var docsOpts []apidocs.Opts
			if cfg.APIDocsToken != "" {
				docsOpts = append(docsOpts, apidocs.WithAuthorizer(apidocs.TokenAuthorizer(cfg.APIDocsToken)))
			}

			// 准备 echo 服务
			e := handlers.NewServer(l, handlerApp, docsJSON, docsOpts...)

			addr := cfg.Listen
			if listen != "" {
				addr = listen
			}

			// 启动 echo 服务
			errCh := make(chan error, 1)
			go func() {
				l.Info("starting server", zap.String("listen", addr))
				errCh <- e.Start(addr)
			}()

			select {
			case err := <-errCh:
				if !errors.Is(err, http.ErrServerClosed) {
					l.Error("server stopped", zap.Error(err))
					return err
				}
				return nil
			case <-ctx.Context.Done():
			}

			// 优雅关闭
			l.Info("shutting down the server")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if err := e.Shutdown(shutdownCtx); err != nil {
				l.Error("error shutting down the server", zap.Error(err))
				return err
			}

			return nil
		},
	}
}
