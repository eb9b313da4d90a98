package internal

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
)

const defaultAddress = ":8080"

// serve runs the notifydesk handler until SIGINT, SIGTERM or cancellation of
// the base context. Startup hooks (the job workers first) run before the
// listener opens. Shutdown hooks run after connections drain, and also when
// the start fails part way, so that workers and the database pool are always
// released.
func serve(h http.Handler, addr string, cfg *runConfig) error {
	if addr == "" {
		addr = defaultAddress
	}
	log := cfg.logger
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}

	base := cfg.baseCtx
	if base == nil {
		base = context.Background()
	}
	ctx, stop := signal.NotifyContext(base, os.Interrupt, syscall.SIGTERM)
	defer stop()

	ln, err := start(ctx, addr, cfg.startupHooks)
	if err != nil {
		return errors.Join(err, release(context.WithoutCancel(ctx), log, cfg))
	}

	srv := &http.Server{
		Handler:           h,
		ReadTimeout:       defaultReadTimeout,
		WriteTimeout:      defaultWriteTimeout,
		IdleTimeout:       defaultIdleTimeout,
		ReadHeaderTimeout: defaultReadHeaderTimeout,
		MaxHeaderBytes:    defaultMaxHeaderBytes,
		BaseContext:       func(net.Listener) context.Context { return context.WithoutCancel(ctx) },
	}

	served := make(chan error, 1)
	go func() {
		log.Info("notifydesk listening", slog.String("address", ln.Addr().String()))
		served <- srv.Serve(ln)
	}()

	select {
	case err := <-served:
		return errors.Join(fmt.Errorf("serve: %w", err), release(context.WithoutCancel(ctx), log, cfg))
	case <-ctx.Done():
	}

	log.Info("draining connections", slog.Duration("timeout", cfg.shutdownTimeout))
	return release(context.WithoutCancel(ctx), log, cfg, srv)
}

// start runs the startup hooks in order and opens the listener. The first
// failure aborts it.
func start(ctx context.Context, addr string, hooks []func(context.Context) error) (net.Listener, error) {
	for _, hook := range hooks {
		if err := hook(ctx); err != nil {
			return nil, fmt.Errorf("startup hook: %w", err)
		}
	}
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("listen on %s: %w", addr, err)
	}
	return ln, nil
}

// release drains srv, if any, and then runs every shutdown hook, all within
// one shutdown timeout.
func release(ctx context.Context, log *slog.Logger, cfg *runConfig, srv ...*http.Server) error {
	ctx, cancel := context.WithTimeout(ctx, cfg.shutdownTimeout)
	defer cancel()

	var errs []error
	for _, s := range srv {
		if err := s.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("drain: %w", err))
		}
	}
	for _, hook := range cfg.shutdownHooks {
		if err := hook(ctx); err != nil {
			log.Error("shutdown hook failed", slog.String("error", err.Error()))
			errs = append(errs, err)
		}
	}

	if err := errors.Join(errs...); err != nil {
		log.Error("notifydesk stopped with errors", slog.Int("errors", len(errs)))
		return err
	}
	log.Info("notifydesk stopped")
	return nil
}
