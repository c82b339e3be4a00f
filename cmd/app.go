package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/urfave/cli/v2"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"food_order_api/internal/api/dto"
	"food_order_api/internal/config"
	"food_order_api/internal/logger"
	"food_order_api/internal/middleware"
	"food_order_api/internal/model"
	"food_order_api/internal/service"
	"food_order_api/internal/validation"
	"food_order_api/pkg/database"
)

const serviceName = "food-order-api"

// newApp 命令行入口，默认执行 serve
func newApp() *cli.App {
	return &cli.App{
		Name:  serviceName,
		Usage: "food ordering HTTP API",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "path to config file (yaml)",
				EnvVars: []string{config.EnvPrefix + "_CONFIG"},
			},
		},
		Action: runServe,
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "migrate the database and start the HTTP server",
				Action: runServe,
			},
			{
				Name:   "migrate",
				Usage:  "create or update database tables",
				Action: runMigrate,
			},
			{
				Name:  "create-staff",
				Usage: "create a staff account",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "username", Required: true},
					&cli.StringFlag{Name: "email", Required: true},
					&cli.StringFlag{Name: "password", Required: true, EnvVars: []string{config.EnvPrefix + "_STAFF_PASSWORD"}},
					&cli.StringFlag{Name: "first-name"},
					&cli.StringFlag{Name: "last-name"},
				},
				Action: runCreateStaff,
			},
		},
	}
}

// ==================== 命令 ====================

func runServe(c *cli.Context) error {
	ctx, stop := signal.NotifyContext(c.Context, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	app, err := bootstrap(ctx, c.String("config"))
	if err != nil {
		return err
	}
	defer app.Close()

	if err := database.Migrate(app.DB, model.All()...); err != nil {
		return err
	}

	deps := initDependencies(app)
	return startServer(ctx, app, deps)
}

func runMigrate(c *cli.Context) error {
	app, err := bootstrap(c.Context, c.String("config"))
	if err != nil {
		return err
	}
	defer app.Close()

	if err := database.Migrate(app.DB, model.All()...); err != nil {
		return err
	}
	app.Log.Info("migration finished")
	return nil
}

func runCreateStaff(c *cli.Context) error {
	app, err := bootstrap(c.Context, c.String("config"))
	if err != nil {
		return err
	}
	defer app.Close()

	if err := database.Migrate(app.DB, model.All()...); err != nil {
		return err
	}

	deps := initDependencies(app)
	user, err := deps.Services.User.Register(c.Context, model.RoleStaff, &dto.RegisterRequest{
		Username:  c.String("username"),
		Email:     c.String("email"),
		Password:  c.String("password"),
		FirstName: c.String("first-name"),
		LastName:  c.String("last-name"),
	})
	if err != nil {
		var verr *service.ValidationError
		if errors.As(err, &verr) {
			return fmt.Errorf("create staff: %v", verr.Fields)
		}
		return fmt.Errorf("create staff: %w", err)
	}

	fmt.Fprintf(c.App.Writer, "staff user %q created (id=%d)\n", user.Username, user.ID)
	return nil
}

// ==================== 启动 ====================

// App 进程级资源
type App struct {
	Config  *config.Config
	Log     *zap.Logger
	DB      *gorm.DB
	closeDB func()
}

// Close 释放资源
func (a *App) Close() {
	if a.closeDB != nil {
		a.closeDB()
	}
	_ = a.Log.Sync()
}

// bootstrap 加载配置、日志、数据库，并安装全局组件
func bootstrap(ctx context.Context, configPath string) (*App, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}

	log, err := logger.New(cfg.Log, serviceName)
	if err != nil {
		return nil, err
	}

	middleware.SetJWTConfig(&middleware.JWTConfig{
		SecretKey:       cfg.JWT.Secret,
		AccessTokenTTL:  cfg.JWT.AccessTTL,
		RefreshTokenTTL: cfg.JWT.RefreshTTL,
		Issuer:          cfg.JWT.Issuer,
	})
	validation.Install()
	gin.SetMode(cfg.Server.Mode)

	db, closeDB, err := database.InitDB(ctx, database.Options{
		DSN:             cfg.Database.DSN(),
		MaxConns:        int32(cfg.Database.MaxConns),
		MinConns:        int32(cfg.Database.MinConns),
		ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
		LogLevel:        cfg.Database.LogLevel,
		Logger:          log,
	})
	if err != nil {
		return nil, err
	}

	if err := middleware.RegisterAuditCallbacks(db); err != nil {
		closeDB()
		return nil, fmt.Errorf("register audit callbacks: %w", err)
	}

	return &App{Config: cfg, Log: log, DB: db, closeDB: closeDB}, nil
}

// startServer 启动 HTTP 服务，收到退出信号后优雅关闭
func startServer(ctx context.Context, app *App, deps *Dependencies) error {
	srv := &http.Server{
		Addr:    app.Config.Server.Addr(),
		Handler: deps.Router,
	}

	errCh := make(chan error, 1)
	go func() {
		app.Log.Info("server started", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("listen: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	app.Log.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), app.Config.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	app.Log.Info("server exited")
	return nil
}

