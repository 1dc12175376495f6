package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/lmittmann/tint"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/cemck/siddy/internal/api"
	"github.com/cemck/siddy/internal/bot"
	"github.com/cemck/siddy/internal/config"
	"github.com/cemck/siddy/internal/dialog"
	"github.com/cemck/siddy/internal/naming"
	"github.com/cemck/siddy/internal/store"
	"github.com/cemck/siddy/internal/telegram"
)

var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the bot (foreground)",
	RunE: func(cmd *cobra.Command, args []string) error {
		envFile, _ := cmd.Flags().GetString("env")
		return runServer(envFile)
	},
}

var stopCmd = &cobra.Command{
	Use:   "stop",
	Short: "Stop the running bot",
	RunE: func(cmd *cobra.Command, args []string) error {
		return stopServer()
	},
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show bot status",
	RunE: func(cmd *cobra.Command, args []string) error {
		return showStatus()
	},
}

func init() {
	startCmd.Flags().String("env", ".env", "path to an env file with SIDDY_* variables")
}

var logLevels = map[string]slog.Level{
	"debug": slog.LevelDebug,
	"info":  slog.LevelInfo,
	"warn":  slog.LevelWarn,
	"error": slog.LevelError,
}

func pidFilePath(voiceDir string) string {
	return filepath.Join(filepath.Dir(voiceDir), "siddy.pid")
}

func writePIDFile(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, []byte(strconv.Itoa(os.Getpid())), 0o644)
}

func readPIDFile(path string) (int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, err
	}
	return strconv.Atoi(strings.TrimSpace(string(data)))
}

func removePIDFile(path string) {
	os.Remove(path)
}

func runServer(envFile string) error {
	fmt.Fprintf(os.Stderr, "siddy version %s\n", version)

	// Secrets may come from a local .env in development; absence is fine.
	godotenv.Load(envFile)

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	level, ok := logLevels[strings.ToLower(cfg.Log.Level)]
	if !ok {
		level = slog.LevelInfo
	}
	slog.SetDefault(slog.New(tint.NewHandler(os.Stderr, &tint.Options{Level: level})))

	// Refuse to double-start: probe the admin API first.
	pidPath := pidFilePath(cfg.Storage.VoiceDir)
	healthURL := fmt.Sprintf("http://127.0.0.1:%d/health", cfg.Server.Port)
	healthClient := &http.Client{Timeout: 2 * time.Second}
	if resp, err := healthClient.Get(healthURL); err == nil {
		resp.Body.Close()
		if pid, pidErr := readPIDFile(pidPath); pidErr == nil {
			printWarning("siddy is already running (PID %d)", pid)
			return fmt.Errorf("server already running (PID %d)", pid)
		}
		printWarning("siddy is already running on port %d", cfg.Server.Port)
		return fmt.Errorf("server already running on port %d", cfg.Server.Port)
	}
	if err := writePIDFile(pidPath); err != nil {
		return fmt.Errorf("writing PID file: %w", err)
	}
	defer removePIDFile(pidPath)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	voices, err := store.Open(cfg.Storage.VoiceDir)
	if err != nil {
		return fmt.Errorf("opening voice store: %w", err)
	}
	slog.Info("voice store ready", "dir", voices.Dir(), "voices", len(voices.List()))

	gw := telegram.NewWithBaseURL(cfg.Telegram.Token, cfg.Telegram.BaseURL)
	machine := dialog.NewMachine(naming.NewPolicy(voices), voices, gw)
	router := bot.NewRouter(gw, voices, machine)
	poller := bot.NewPoller(gw, router, cfg.Telegram.PollTimeout)

	apiToken, err := config.GetAPIToken(config.NewBackend())
	if err != nil {
		return fmt.Errorf("getting API token: %w", err)
	}

	srv := &http.Server{
		Addr:    fmt.Sprintf("127.0.0.1:%d", cfg.Server.Port),
		Handler: api.NewHandler(api.Deps{Store: voices, Token: apiToken}),
	}

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		slog.Info("bot polling for updates")
		poller.Run(ctx)
		return nil
	})

	g.Go(func() error {
		slog.Info("admin api listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("admin api: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-ctx.Done()
		fmt.Fprintln(os.Stderr, "shutting down...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

func stopServer() error {
	godotenv.Load(".env")

	cfg, err := config.Load()
	if err != nil {
		printError("could not load config: %v", err)
		return err
	}

	pidPath := pidFilePath(cfg.Storage.VoiceDir)
	pid, err := readPIDFile(pidPath)
	if err != nil {
		printError("siddy is not running (no PID file)")
		return fmt.Errorf("not running: %w", err)
	}

	process, err := os.FindProcess(pid)
	if err != nil {
		printError("could not find process %d", pid)
		return err
	}

	if err := process.Signal(syscall.SIGTERM); err != nil {
		printError("could not stop siddy (PID %d): %v", pid, err)
		removePIDFile(pidPath)
		return err
	}

	printSuccess("Sent stop signal to siddy (PID %d)", pid)
	return nil
}

func showStatus() error {
	godotenv.Load(".env")

	cfg, err := config.Load()
	if err != nil {
		printError("config error: %v", err)
		return nil
	}

	serverURL := fmt.Sprintf("http://127.0.0.1:%d", cfg.Server.Port)
	client := &http.Client{Timeout: 2 * time.Second}

	resp, err := client.Get(serverURL + "/health")
	running := false
	if err != nil {
		printStatus("Bot", "stopped")
	} else {
		resp.Body.Close()
		if resp.StatusCode == http.StatusOK {
			running = true
			printStatus("Bot", "running on port %d", cfg.Server.Port)
		} else {
			printStatus("Bot", "error (HTTP %d)", resp.StatusCode)
		}
	}

	if running {
		if c, err := newAPIClient(); err == nil {
			if voices, err := c.listVoices(context.Background()); err == nil {
				printStatus("Voices", "%d saved", len(voices))
			}
		}
	}

	printStatus("Gateway", "%s", cfg.Telegram.BaseURL)
	printStatus("Voice dir", "%s", cfg.Storage.VoiceDir)
	return nil
}
