package main

import (
	"fmt"
	"net"
	"os"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/alex-user-go/sheltersignal/internal/dashboard"
)

var (
	proxyURL     string
	style        string
	fetchTimeout time.Duration
)

var lookupCmd = &cobra.Command{
	Use:     "lookup [address]",
	Short:   "Print the property dashboard for one address",
	Example: `  sheltersignal lookup "5500 Grand Lake Dr, San Antonio, TX 78244"`,
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		renderer, err := newRenderer()
		if err != nil {
			return err
		}
		client := dashboard.NewClient(resolveProxyURL(), fetchTimeout)

		data, err := client.FetchProperty(cmd.Context(), args[0])
		state := dashboard.StateOf(data, err)
		fmt.Fprintln(cmd.OutOrStdout(), renderer.Render(state))

		if failed, ok := state.(dashboard.Failed); ok {
			return fmt.Errorf("lookup failed: %s", failed.Message)
		}
		return nil
	},
}

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Open the interactive property search screen",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		renderer, err := newRenderer()
		if err != nil {
			return err
		}
		client := dashboard.NewClient(resolveProxyURL(), fetchTimeout)
		return dashboard.Run(cmd.Context(), client, renderer, fetchTimeout)
	},
}

func init() {
	for _, c := range []*cobra.Command{lookupCmd, tuiCmd} {
		c.Flags().StringVar(&proxyURL, "proxy-url", "", "proxy base URL (default derived from proxy.addr)")
		c.Flags().StringVar(&style, "style", dashboard.StyleAuto, "markdown style: auto, dark, light or ascii")
		c.Flags().DurationVar(&fetchTimeout, "timeout", 20*time.Second, "request timeout")
	}
}

func newRenderer() (*dashboard.Renderer, error) {
	width := 0
	if term.IsTerminal(int(os.Stdout.Fd())) {
		if w, _, err := term.GetSize(int(os.Stdout.Fd())); err == nil {
			width = w
		}
	}
	return dashboard.NewRenderer(width, style)
}

// resolveProxyURL returns --proxy-url, or a localhost URL for the configured proxy address.
func resolveProxyURL() string {
	if proxyURL != "" {
		return proxyURL
	}
	host, port, err := net.SplitHostPort(cfg.Proxy.Addr)
	if err != nil {
		return "http://localhost:3001"
	}
	if host == "" || host == "0.0.0.0" || host == "::" {
		host = "localhost"
	}
	return "http://" + net.JoinHostPort(host, port)
}
