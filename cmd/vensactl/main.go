package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/robertdoneill/vensa-go/internal/api"
	"github.com/robertdoneill/vensa-go/internal/client"
	"github.com/robertdoneill/vensa-go/internal/config"
	"github.com/robertdoneill/vensa-go/internal/credentials"
	"github.com/robertdoneill/vensa-go/internal/session"
)

const (
	envLocal = "local"
	envDev   = "dev"
	envProd  = "prod"
)

const usage = `usage: vensactl [-config path] <command> [flags]

commands:
  login          -username <name> (пароль запрашивается с stdin)
  logout
  whoami
  control-tests  [-search s] [-ordering o]
  workpapers     [-control-test id]
  exceptions     [-control-test id]
  remediations   [-exception id]
  evidence-upload -workpaper id -title t -file path
`

func main() {
	var configPath string
	flag.StringVar(&configPath, "config", "", "path to config file")
	flag.Usage = func() { fmt.Fprint(os.Stderr, usage) }
	flag.Parse()

	if flag.NArg() < 1 {
		flag.Usage()
		os.Exit(2)
	}

	cfg := config.MustLoad(configPath)

	log := setupLogger(cfg.Env)
	slog.SetDefault(log)

	rootCtx, rootCancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer rootCancel()

	credPath, err := cfg.Credentials.ResolvePath()
	if err != nil {
		log.Error("credentials_path_failed", slog.String("err", err.Error()))
		os.Exit(1)
	}

	store := credentials.NewFileStore(credPath)

	// Отдельный клиент без Authorizer для самих /token/* вызовов.
	authClient := client.New(cfg.API.BaseURL,
		client.WithTimeout(cfg.API.Timeout),
		client.WithUserAgent(cfg.API.AppName),
	)

	sess := session.New(store, authClient, session.WithLogoutHook(func() {
		fmt.Fprintln(os.Stderr, "signed out; run `vensactl login` to sign in again")
	}))

	apiClient := client.New(cfg.API.BaseURL,
		client.WithTimeout(cfg.API.Timeout),
		client.WithUserAgent(cfg.API.AppName),
		client.WithAuthorizer(sess),
	)

	services := api.New(apiClient)
	state := session.NewState(sess, services.Users)

	if err := run(rootCtx, flag.Args(), state, services); err != nil {
		log.Error("command_failed", slog.String("cmd", flag.Arg(0)), slog.String("err", err.Error()))
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, state *session.State, services *api.API) error {
	cmd, rest := args[0], args[1:]

	// login/logout не требуют стартовой проверки; остальные команды
	// сериализуются после неё.
	switch cmd {
	case "login":
		return cmdLogin(ctx, rest, state)
	case "logout":
		state.Logout(ctx)
		return nil
	}

	if err := state.Bootstrap(ctx); err != nil {
		return err
	}

	switch cmd {
	case "whoami":
		return cmdWhoami(state)
	case "control-tests":
		return cmdControlTests(ctx, rest, services)
	case "workpapers":
		return cmdWorkpapers(ctx, rest, services)
	case "exceptions":
		return cmdExceptions(ctx, rest, services)
	case "remediations":
		return cmdRemediations(ctx, rest, services)
	case "evidence-upload":
		return cmdEvidenceUpload(ctx, rest, services)
	default:
		return fmt.Errorf("unknown command %q", cmd)
	}
}

func cmdLogin(ctx context.Context, args []string, state *session.State) error {
	fs := flag.NewFlagSet("login", flag.ExitOnError)
	username := fs.String("username", "", "username")
	_ = fs.Parse(args)

	if *username == "" {
		return fmt.Errorf("login: -username is required")
	}

	fmt.Fprint(os.Stderr, "password: ")
	reader := bufio.NewReader(os.Stdin)
	password, err := reader.ReadString('\n')
	if err != nil {
		return fmt.Errorf("login: read password: %w", err)
	}

	if err := state.Login(ctx, *username, strings.TrimSpace(password)); err != nil {
		return err
	}

	snap := state.Snapshot()
	fmt.Printf("signed in as %s\n", snap.User.Username)

	return nil
}

func cmdWhoami(state *session.State) error {
	snap := state.Snapshot()
	if !snap.IsAuthenticated || snap.User == nil {
		fmt.Println("not signed in")
		return nil
	}

	fmt.Printf("%s <%s> (%s %s)\n", snap.User.Username, snap.User.Email, snap.User.FirstName, snap.User.LastName)

	return nil
}

func cmdControlTests(ctx context.Context, args []string, services *api.API) error {
	fs := flag.NewFlagSet("control-tests", flag.ExitOnError)
	search := fs.String("search", "", "search query")
	ordering := fs.String("ordering", "", "ordering field")
	_ = fs.Parse(args)

	tests, err := services.ControlTests.List(ctx, &api.ListOptions{Search: *search, Ordering: *ordering})
	if err != nil {
		return err
	}

	for _, t := range tests {
		fmt.Printf("%d\t%s\t%s\n", t.ID, t.Status, t.Name)
	}

	return nil
}

func cmdWorkpapers(ctx context.Context, args []string, services *api.API) error {
	fs := flag.NewFlagSet("workpapers", flag.ExitOnError)
	controlTest := fs.Int64("control-test", 0, "filter by control test id")
	_ = fs.Parse(args)

	papers, err := services.Workpapers.List(ctx, *controlTest, nil)
	if err != nil {
		return err
	}

	for _, p := range papers {
		fmt.Printf("%d\t%s\t%s\n", p.ID, p.Status, p.Title)
	}

	return nil
}

func cmdExceptions(ctx context.Context, args []string, services *api.API) error {
	fs := flag.NewFlagSet("exceptions", flag.ExitOnError)
	controlTest := fs.Int64("control-test", 0, "filter by control test id")
	_ = fs.Parse(args)

	exceptions, err := services.Exceptions.List(ctx, *controlTest, nil)
	if err != nil {
		return err
	}

	for _, e := range exceptions {
		fmt.Printf("%d\t%s\t%s\t%s\n", e.ID, e.Severity, e.Status, e.Summary)
	}

	return nil
}

func cmdRemediations(ctx context.Context, args []string, services *api.API) error {
	fs := flag.NewFlagSet("remediations", flag.ExitOnError)
	exception := fs.Int64("exception", 0, "filter by exception id")
	_ = fs.Parse(args)

	plans, err := services.Remediations.List(ctx, *exception, nil)
	if err != nil {
		return err
	}

	for _, p := range plans {
		fmt.Printf("%d\t%s\t%s\n", p.ID, p.Status, p.Action)
	}

	return nil
}

func cmdEvidenceUpload(ctx context.Context, args []string, services *api.API) error {
	fs := flag.NewFlagSet("evidence-upload", flag.ExitOnError)
	workpaper := fs.Int64("workpaper", 0, "workpaper id")
	title := fs.String("title", "", "evidence title")
	file := fs.String("file", "", "path to file")
	_ = fs.Parse(args)

	if *workpaper == 0 || *file == "" {
		return fmt.Errorf("evidence-upload: -workpaper and -file are required")
	}

	f, err := os.Open(*file)
	if err != nil {
		return fmt.Errorf("evidence-upload: %w", err)
	}
	defer func() { _ = f.Close() }()

	name := *title
	if name == "" {
		name = filepath.Base(*file)
	}

	ev, err := services.Evidence.Upload(ctx, *workpaper, name, filepath.Base(*file), f)
	if err != nil {
		return err
	}

	fmt.Printf("uploaded evidence %d: %s\n", ev.ID, ev.File)

	return nil
}

func setupLogger(env string) *slog.Logger {
	switch env {
	case envLocal:
		return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
	case envDev:
		return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
	case envProd:
		return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	default:
		return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
	}
}
