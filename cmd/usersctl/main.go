// usersctl - консольный клиент сервиса пользователей.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/maynagashev/userservice/internal/api"
)

const (
	defaultServerURL = "http://localhost:5000"
	envServerURL     = "USERS_SERVER_URL"
	envToken         = "USERS_TOKEN"
)

// Переменные для версии и даты сборки, устанавливаются через ldflags.
var (
	version = "dev"
	//nolint:gochecknoglobals // Устанавливается через ldflags при сборке
	buildDate = "unknown"
)

var errUsage = errors.New("неверное использование")

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	if err := run(ctx, os.Args[1:], os.Stdout, os.Getenv, api.NewHTTPClient); err != nil {
		slog.Error("Команда завершилась с ошибкой", "error", err)
		stop()
		os.Exit(1) //nolint:gocritic // stop вызван явно перед выходом
	}
}

// run разбирает глобальные флаги, выбирает подкоманду и выполняет ее.
func run(
	ctx context.Context,
	args []string,
	stdout io.Writer,
	getenv func(string) string,
	newClient func(baseURL string) api.Client,
) error {
	fs := flag.NewFlagSet("usersctl", flag.ContinueOnError)
	fs.SetOutput(stdout)
	serverURL := fs.String("server-url", envOr(getenv, envServerURL, defaultServerURL),
		"URL сервера (env: "+envServerURL+")")
	token := fs.String("token", getenv(envToken), "Токен доступа (env: "+envToken+")")
	versionFlag := fs.Bool("version", false, "Показать версию и дату сборки")
	fs.Usage = func() {
		_, _ = fmt.Fprintln(fs.Output(), "Использование: usersctl [флаги] <ping|register|login|logout|get|list> [аргументы]")
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		return errUsage
	}
	if *versionFlag {
		_, _ = fmt.Fprintf(stdout, "usersctl %s (%s)\n", version, buildDate)
		return nil
	}
	if fs.NArg() == 0 {
		fs.Usage()
		return errUsage
	}

	client := newClient(*serverURL)
	if *token != "" {
		client.SetAuthToken(*token)
	}
	slog.Debug("Выполнение команды", "command", fs.Arg(0), "server", *serverURL)

	cmdArgs := fs.Args()[1:]
	switch fs.Arg(0) {
	case "ping":
		if err := client.Ping(ctx); err != nil {
			return err
		}
		_, _ = fmt.Fprintln(stdout, "pong!")
		return nil
	case "register":
		return runRegister(ctx, client, cmdArgs, stdout)
	case "login":
		return runLogin(ctx, client, cmdArgs, stdout)
	case "logout":
		if err := client.Logout(ctx); err != nil {
			return err
		}
		_, _ = fmt.Fprintln(stdout, "Successfully logged out.")
		return nil
	case "get":
		return runGet(ctx, client, cmdArgs, stdout)
	case "list":
		users, err := client.ListUsers(ctx)
		if err != nil {
			return err
		}
		return printJSON(stdout, users)
	default:
		fs.Usage()
		return fmt.Errorf("%w: неизвестная команда %q", errUsage, fs.Arg(0))
	}
}

func runRegister(ctx context.Context, client api.Client, args []string, stdout io.Writer) error {
	fs := flag.NewFlagSet("register", flag.ContinueOnError)
	fs.SetOutput(stdout)
	username := fs.String("username", "", "Имя пользователя")
	email := fs.String("email", "", "Email")
	password := fs.String("password", "", "Пароль")
	if err := fs.Parse(args); err != nil {
		return errUsage
	}

	user, err := client.Register(ctx, *username, *email, *password)
	if err != nil {
		return err
	}
	slog.Info("Пользователь зарегистрирован", "id", user.ID, "username", user.Username)
	_, _ = fmt.Fprintln(stdout, client.AuthToken())
	return nil
}

func runLogin(ctx context.Context, client api.Client, args []string, stdout io.Writer) error {
	fs := flag.NewFlagSet("login", flag.ContinueOnError)
	fs.SetOutput(stdout)
	email := fs.String("email", "", "Email")
	password := fs.String("password", "", "Пароль")
	if err := fs.Parse(args); err != nil {
		return errUsage
	}

	token, err := client.Login(ctx, *email, *password)
	if err != nil {
		return err
	}
	_, _ = fmt.Fprintln(stdout, token)
	return nil
}

func runGet(ctx context.Context, client api.Client, args []string, stdout io.Writer) error {
	if len(args) != 1 {
		return fmt.Errorf("%w: ожидается ровно один ID пользователя", errUsage)
	}
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return fmt.Errorf("%w: ID должен быть целым числом", errUsage)
	}

	user, err := client.GetUser(ctx, id)
	if err != nil {
		return err
	}
	return printJSON(stdout, user)
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func envOr(getenv func(string) string, key, fallback string) string {
	if v := getenv(key); v != "" {
		return v
	}
	return fallback
}
