package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/urfave/cli/v2"

	"github.com/kbukum/synchttp/bridge"
	"github.com/kbukum/synchttp/component"
	"github.com/kbukum/synchttp/config"
	"github.com/kbukum/synchttp/errors"
	"github.com/kbukum/synchttp/interceptor"
	"github.com/kbukum/synchttp/logger"
	"github.com/kbukum/synchttp/request"
	"github.com/kbukum/synchttp/version"
)

func main() {
	if err := newApp().Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(exitCode(err))
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:      "syncreq",
		Version:   version.Get().String(),
		Usage:     "send one HTTP request and print the response",
		ArgsUsage: "<url>",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "method", Aliases: []string{"X"}, Value: "GET", Usage: "GET, POST, PUT, DELETE or UPLOAD"},
			&cli.StringSliceFlag{Name: "param", Aliases: []string{"p"}, Usage: "request parameter as key=value"},
			&cli.StringSliceFlag{Name: "header", Aliases: []string{"H"}, Usage: "header as name:value"},
			&cli.StringSliceFlag{Name: "file", Aliases: []string{"F"}, Usage: "multipart file part as key=path"},
			&cli.BoolFlag{Name: "query", Usage: "encode parameters into the query string"},
			&cli.StringFlag{Name: "upload-method", Usage: "wire method for uploads (POST or PUT)"},
			&cli.IntFlag{Name: "retries", Usage: "total attempts for retryable failures"},
			&cli.StringFlag{Name: "bearer", EnvVars: []string{"SYNCREQ_TOKEN"}, Usage: "bearer token"},
			&cli.DurationFlag{Name: "timeout", Usage: "override the dispatch timeout"},
			&cli.StringFlag{Name: "config", Aliases: []string{"c"}, Usage: "config file path"},
			&cli.StringFlag{Name: "env-file", Usage: "env file path"},
		},
		Action: run,
	}
}

func run(cctx *cli.Context) error {
	target := cctx.Args().First()
	if target == "" {
		return cli.Exit("need to provide a URL as an argument", 2)
	}

	opts := []config.LoaderOption{config.WithEnvPrefix("SYNCREQ")}
	if p := cctx.String("config"); p != "" {
		opts = append(opts, config.WithConfigFile(p))
	}
	if p := cctx.String("env-file"); p != "" {
		opts = append(opts, config.WithEnvFile(p))
	}
	var cfg bridge.Config
	if err := config.Load("syncreq", &cfg, opts...); err != nil {
		return cli.Exit(err.Error(), 2)
	}
	if d := cctx.Duration("timeout"); d > 0 {
		cfg.Timeout = d
	}

	method := request.Method(strings.ToUpper(cctx.String("method")))
	reqOpts, err := requestOptions(cctx)
	if err != nil {
		return cli.Exit(err.Error(), 2)
	}
	req, err := request.New(method, target, reqOpts...)
	if err != nil {
		return cli.Exit(err.Error(), 2)
	}

	log := logger.New(&cfg.Logging, "syncreq")
	client := bridge.NewComponent(cfg, bridge.WithInterceptor(buildInterceptor(cctx)))
	registry := component.NewRegistry(log)
	if err := registry.Register(client); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cctx.Context, os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := registry.StartAll(ctx); err != nil {
		return err
	}
	defer func() {
		if err := registry.StopAll(context.Background()); err != nil {
			log.Error("shutdown failed", logger.Fields(logger.FieldError, err.Error()))
		}
	}()

	res, err := client.Client().Dispatch(ctx, req)
	if err != nil {
		if e, ok := errors.As(err); ok && len(e.Body) > 0 {
			fmt.Fprintf(cctx.App.ErrWriter, "%s\n", e.Body)
		}
		return err
	}
	fmt.Fprintf(cctx.App.ErrWriter, "HTTP %d\n", res.StatusCode)
	fmt.Fprintf(cctx.App.Writer, "%s\n", res.Body)
	return nil
}

func requestOptions(cctx *cli.Context) ([]request.Option, error) {
	var opts []request.Option
	for _, kv := range cctx.StringSlice("param") {
		k, v, err := splitPair(kv, "=")
		if err != nil {
			return nil, fmt.Errorf("param: %w", err)
		}
		opts = append(opts, request.WithParam(k, v))
	}
	for _, kv := range cctx.StringSlice("header") {
		k, v, err := splitPair(kv, ":")
		if err != nil {
			return nil, fmt.Errorf("header: %w", err)
		}
		opts = append(opts, request.WithHeader(k, strings.TrimSpace(v)))
	}
	for _, kv := range cctx.StringSlice("file") {
		k, path, err := splitPair(kv, "=")
		if err != nil {
			return nil, fmt.Errorf("file: %w", err)
		}
		opts = append(opts, request.WithPart(request.FilePart(k, path)))
	}
	if cctx.Bool("query") {
		opts = append(opts, request.WithEncoding(request.EncodingQuery))
	}
	if m := cctx.String("upload-method"); m != "" {
		opts = append(opts, request.WithUploadMethod(strings.ToUpper(m)))
	}
	return opts, nil
}

func buildInterceptor(cctx *cli.Context) interceptor.Interceptor {
	ic := interceptor.Default()
	ic.Adapt = interceptor.RequestID()
	if token := cctx.String("bearer"); token != "" {
		ic.Adapt = interceptor.Chain(ic.Adapt, interceptor.Bearer(token))
	}
	if n := cctx.Int("retries"); n > 1 {
		ic.Retry = interceptor.RetryUpTo(n)
	}
	return ic
}

func splitPair(s, sep string) (string, string, error) {
	k, v, ok := strings.Cut(s, sep)
	if !ok || k == "" {
		return "", "", fmt.Errorf("expected key%svalue, got %q", sep, s)
	}
	return k, v, nil
}

// exitCode maps error kinds to distinct process exit codes.
func exitCode(err error) int {
	if ec, ok := err.(cli.ExitCoder); ok {
		return ec.ExitCode()
	}
	switch errors.KindOf(err) {
	case errors.KindValidation:
		return 2
	case errors.KindTimeout, errors.KindCanceled:
		return 3
	default:
		return 1
	}
}
