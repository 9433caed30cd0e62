// Command ftpget downloads a single file from an FTP server.
//
//	ftpget [flags] ftp://[user[:password]@]host[:port]/remote-path local-path
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"os"
	"os/signal"

	"github.com/fatih/color"
	"github.com/mitchellh/go-homedir"
	"github.com/spf13/cobra"
	"golang.org/x/net/proxy"

	ftp "github.com/gonzalop/ftpget"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := newRootCmd(os.Stderr).ExecuteContext(ctx)
	stop()

	if err != nil {
		_, _ = color.New(color.FgRed).Fprintf(os.Stderr, "error: %s\n", describeError(err))
		os.Exit(1)
	}
}

func newRootCmd(stderr io.Writer) *cobra.Command {
	var (
		flags      config
		configPath string
	)

	cmd := &cobra.Command{
		Use:           "ftpget <url> <local-path>",
		Short:         "Download a file over FTP",
		Long:          "Download one file from ftp://[user[:password]@]host[:port]/remote-path using passive mode.",
		Args:          cobra.ExactArgs(2),
		SilenceErrors: true,
		SilenceUsage:  true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(configPath)
			if err != nil {
				return err
			}
			cfg.merge(cmd.Flags(), &flags)
			return run(cmd.Context(), cfg, args[0], args[1], stderr)
		},
	}

	bindFlags(cmd.Flags(), &flags, &configPath)
	return cmd
}

// run validates the arguments and performs the download. The target is
// parsed before anything touches the network.
func run(ctx context.Context, cfg config, rawURL, localPath string, stderr io.Writer) error {
	target, err := ftp.ParseTarget(rawURL)
	if err != nil {
		return err
	}

	localPath, err = homedir.Expand(localPath)
	if err != nil {
		return fmt.Errorf("failed to expand local path: %w", err)
	}

	opts, err := clientOptions(cfg, stderr)
	if err != nil {
		return err
	}

	var bar *progressBar
	if cfg.Progress {
		bar = newProgressBar(stderr)
		opts = append(opts, ftp.WithProgress(bar.update))
	}

	err = ftp.Fetch(ctx, target, localPath, opts...)
	if bar != nil {
		bar.finish()
	}
	if err != nil {
		return err
	}

	if cfg.Verbose > 0 {
		_, _ = color.New(color.FgGreen).Fprintf(stderr, "downloaded %s to %s\n", target, localPath)
	}
	return nil
}

// clientOptions translates cfg into library options.
func clientOptions(cfg config, stderr io.Writer) ([]ftp.Option, error) {
	opts := []ftp.Option{
		ftp.WithLogger(newLogger(cfg.Verbose, stderr)),
		ftp.WithTimeout(cfg.Timeout),
		ftp.WithBandwidthLimit(cfg.Limit),
	}

	if cfg.Strict {
		opts = append(opts, ftp.WithCompletionReply())
	}

	if cfg.Proxy != "" {
		dialer, err := newProxyDialer(cfg.Proxy)
		if err != nil {
			return nil, err
		}
		opts = append(opts, ftp.WithDialer(dialer))
	}

	return opts, nil
}

// describeError renders err for the exit message, saying whether a server
// refusal is worth retrying.
func describeError(err error) string {
	var pe *ftp.ProtocolError
	if errors.As(err, &pe) {
		switch {
		case pe.IsTemporary():
			return err.Error() + " (temporary server failure, try again later)"
		case pe.IsPermanent():
			return err.Error() + " (rejected by server, retrying will not help)"
		}
	}
	return err.Error()
}

// newLogger maps the -v count to a level: none, warnings, everything.
func newLogger(verbose int, w io.Writer) *slog.Logger {
	var level slog.Level
	switch {
	case verbose <= 0:
		return slog.New(slog.DiscardHandler)
	case verbose == 1:
		level = slog.LevelWarn
	default:
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// newProxyDialer builds a dialer that tunnels both FTP connections through
// the proxy at rawURL.
func newProxyDialer(rawURL string) (ftp.Dialer, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("invalid proxy URL: %w", err)
	}

	d, err := proxy.FromURL(u, proxy.Direct)
	if err != nil {
		return nil, fmt.Errorf("unsupported proxy: %w", err)
	}

	cd, ok := d.(proxy.ContextDialer)
	if !ok {
		return nil, fmt.Errorf("proxy %s does not support cancellation", u.Redacted())
	}
	return cd, nil
}
